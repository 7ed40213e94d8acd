package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed layout.yaml
var defaultLayout []byte

// FieldSpec is one plotted measurement of a sensor type.
type FieldSpec struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
}

// SensorType groups the sensors a time-series dashboard can plot together.
type SensorType struct {
	Name   string      `yaml:"name"`
	Fields []FieldSpec `yaml:"fields"`
}

// SeriesSpec selects one series out of a grouped payload and styles it.
type SeriesSpec struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	Color string `yaml:"color"`
}

// Zone is a farm area with its sensors and value bins.
type Zone struct {
	Name            string    `yaml:"name"`
	Sensors         []string  `yaml:"sensors"`
	TemperatureBins []float64 `yaml:"temperature_bins"`
	HumidityBins    []float64 `yaml:"humidity_bins"`
}

// Tile is one summary tile of the overview page.
type Tile struct {
	Zone     string `yaml:"zone"`
	SensorID string `yaml:"sensor_id"`
}

// Layout describes what the dashboards show.
type Layout struct {
	SensorTypes    []SensorType `yaml:"sensor_types"`
	Zones          []Zone       `yaml:"zones"`
	Stratification struct {
		Vertical   []SeriesSpec `yaml:"vertical"`
		Horizontal []SeriesSpec `yaml:"horizontal"`
		Days       int          `yaml:"days"`
	} `yaml:"stratification"`
	Tiles []Tile `yaml:"tiles"`
	Ramps struct {
		TimeSeries  string `yaml:"timeseries"`
		Temperature string `yaml:"temperature"`
		Humidity    string `yaml:"humidity"`
	} `yaml:"ramps"`
	Predictions struct {
		SensorID string `yaml:"sensor_id"`
	} `yaml:"predictions"`
}

// LoadLayout reads the layout from path, or the built-in layout when path is empty.
func LoadLayout(path string) (Layout, error) {
	data := defaultLayout
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return Layout{}, fmt.Errorf("read layout: %w", err)
		}
	}
	return ParseLayout(data)
}

// ParseLayout decodes and checks a YAML layout.
func ParseLayout(data []byte) (Layout, error) {
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("parse layout: %w", err)
	}
	if len(layout.SensorTypes) == 0 {
		return Layout{}, fmt.Errorf("layout: at least one sensor type is required")
	}
	for _, st := range layout.SensorTypes {
		if len(st.Fields) == 0 {
			return Layout{}, fmt.Errorf("layout: sensor type %q has no fields", st.Name)
		}
	}
	for _, z := range layout.Zones {
		if len(z.TemperatureBins) > 0 && len(z.TemperatureBins) < 2 {
			return Layout{}, fmt.Errorf("layout: zone %q needs at least two temperature bin edges", z.Name)
		}
		if len(z.HumidityBins) > 0 && len(z.HumidityBins) < 2 {
			return Layout{}, fmt.Errorf("layout: zone %q needs at least two humidity bin edges", z.Name)
		}
	}
	for _, t := range layout.Tiles {
		if _, ok := layout.Zone(t.Zone); !ok {
			return Layout{}, fmt.Errorf("layout: tile for sensor %q names unknown zone %q", t.SensorID, t.Zone)
		}
	}
	return layout, nil
}

// SensorType returns the named sensor type, or the first one when name is empty.
func (l Layout) SensorType(name string) (SensorType, bool) {
	if name == "" {
		return l.SensorTypes[0], true
	}
	for _, st := range l.SensorTypes {
		if st.Name == name {
			return st, true
		}
	}
	return SensorType{}, false
}

// Zone returns the named zone.
func (l Layout) Zone(name string) (Zone, bool) {
	for _, z := range l.Zones {
		if z.Name == name {
			return z, true
		}
	}
	return Zone{}, false
}
