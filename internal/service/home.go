package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"cropdash/internal/chartdata"
	"cropdash/internal/charts"
	"cropdash/internal/config"
	"cropdash/internal/models"
	"cropdash/internal/navigation"
	"cropdash/internal/repository"
)

// TileWindow is the trailing window the summary tiles average over.
const TileWindow = time.Hour

// HomeData is the data behind the overview page.
type HomeData struct {
	Days            int                  `json:"days"`
	TemperatureBins []models.ZoneBins    `json:"temperature_bins"`
	HumidityBins    []models.ZoneBins    `json:"humidity_bins"`
	Vertical        models.GroupedSeries `json:"vertical"`
	Horizontal      models.GroupedSeries `json:"horizontal"`
}

// Home builds the overview: per-zone temperature doughnuts, stacked
// temperature and humidity bars, and the vertical and horizontal
// stratification lines over the last state.Days days.
func (s *DashboardService) Home(ctx context.Context, state navigation.PageState) (Dashboard, error) {
	if state.Days <= 0 {
		state.Days = s.layout.Stratification.Days
	}
	stop := s.now()
	start := stop.AddDate(0, 0, -state.Days)

	var ids []string
	for _, z := range s.layout.Zones {
		ids = append(ids, z.Sensors...)
	}
	for _, spec := range slices.Concat(s.layout.Stratification.Vertical, s.layout.Stratification.Horizontal) {
		ids = append(ids, spec.ID)
	}
	ids = dedupe(ids)
	fields := []string{models.FieldTemperature, models.FieldHumidity}

	groups, err := s.repo.QueryReadings(ctx, repository.ReadingsQuery{
		SensorIDs: ids,
		Fields:    fields,
		Start:     start,
		Stop:      stop,
		Window:    chartdata.MeanWindow,
	})
	if err != nil {
		return Dashboard{}, fmt.Errorf("query readings: %w", err)
	}

	data := HomeData{Days: state.Days}
	if data.TemperatureBins, err = s.zoneBins(groups, models.FieldTemperature); err != nil {
		return Dashboard{}, err
	}
	if data.HumidityBins, err = s.zoneBins(groups, models.FieldHumidity); err != nil {
		return Dashboard{}, err
	}
	data.Vertical = pick(groups, s.layout.Stratification.Vertical)
	data.Horizontal = pick(groups, s.layout.Stratification.Horizontal)

	d := Dashboard{Title: "Farm overview", State: state, Data: &data}
	tempRamp := s.ramp(s.layout.Ramps.Temperature)
	for _, zb := range data.TemperatureBins {
		opts := s.options("round_"+zb.Zone, zb.Zone, "")
		d.Charts = append(d.Charts, charts.Round(opts, zb, tempRamp))
	}
	d.Charts = append(d.Charts,
		charts.HorizontalBar(s.options("bar_temperature", "Temperature", ""), data.TemperatureBins, tempRamp),
		charts.HorizontalBar(s.options("bar_humidity", "Humidity", ""), data.HumidityBins, s.ramp(s.layout.Ramps.Humidity)),
	)

	for _, strat := range []struct {
		id, title string
		groups    models.GroupedSeries
		specs     []config.SeriesSpec
	}{
		{"vertical", "Vertical stratification", data.Vertical, s.layout.Stratification.Vertical},
		{"horizontal", "Horizontal stratification", data.Horizontal, s.layout.Stratification.Horizontal},
	} {
		line, err := charts.TimeSeries(s.options("strat_"+strat.id, strat.title, "Temperature (°C)"), charts.TimeSeriesInput{
			Groups: strat.groups,
			Field:  models.FieldTemperature,
			Series: seriesSpecs(strat.specs),
			Limits: limitsPtr(strat.groups, models.FieldTemperature),
			XMin:   &start,
		})
		if err != nil {
			return Dashboard{}, fmt.Errorf("chart %s: %w", strat.id, err)
		}
		d.Charts = append(d.Charts, line)
	}
	return d, nil
}

// zoneBins counts each zone's samples into the zone's bins. Zones without
// bins for field are left out.
func (s *DashboardService) zoneBins(groups models.GroupedSeries, field string) ([]models.ZoneBins, error) {
	var out []models.ZoneBins
	for _, z := range s.layout.Zones {
		edges := z.TemperatureBins
		if field == models.FieldHumidity {
			edges = z.HumidityBins
		}
		if len(edges) == 0 {
			continue
		}
		var samples models.Series
		for _, id := range z.Sensors {
			samples = append(samples, groups[id]...)
		}
		labels, counts, err := chartdata.BinCounts(samples, field, edges)
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", z.Name, err)
		}
		zb := models.ZoneBins{Zone: z.Name}
		for i, label := range labels {
			zb.Values = append(zb.Values, models.BinCount{Bin: label, Cnt: counts[i]})
		}
		out = append(out, zb)
	}
	return out, nil
}

// HourlyTiles averages the last hour of each tile's sensor.
func (s *DashboardService) HourlyTiles(ctx context.Context) ([]models.HourlyTile, error) {
	ids := make([]string, len(s.layout.Tiles))
	for i, t := range s.layout.Tiles {
		ids[i] = t.SensorID
	}
	if len(ids) == 0 {
		return []models.HourlyTile{}, nil
	}
	latest, err := s.repo.QueryLatest(ctx, repository.LatestQuery{
		SensorIDs: dedupe(ids),
		Fields:    []string{models.FieldTemperature, models.FieldHumidity},
		Window:    TileWindow,
	})
	if err != nil {
		return nil, fmt.Errorf("query latest: %w", err)
	}
	tiles := make([]models.HourlyTile, len(s.layout.Tiles))
	for i, t := range s.layout.Tiles {
		sample := latest[t.SensorID]
		tiles[i] = models.HourlyTile{
			Zone:        t.Zone,
			SensorID:    models.SensorID(t.SensorID),
			Temperature: sample.Temperature,
			Humidity:    sample.Humidity,
		}
	}
	return tiles, nil
}

func pick(groups models.GroupedSeries, specs []config.SeriesSpec) models.GroupedSeries {
	out := models.GroupedSeries{}
	for _, spec := range specs {
		if series, ok := groups[spec.ID]; ok {
			out[spec.ID] = series
		}
	}
	return out
}

func seriesSpecs(specs []config.SeriesSpec) []charts.SeriesSpec {
	out := make([]charts.SeriesSpec, len(specs))
	for i, spec := range specs {
		out[i] = charts.SeriesSpec{Key: spec.ID, Label: spec.Label, Color: spec.Color}
	}
	return out
}
