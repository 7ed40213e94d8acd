package models

import "math"

// Measurement field names as they appear in backend payloads.
const (
	FieldTemperature     = "temperature"
	FieldHumidity        = "humidity"
	FieldVPD             = "vpd"
	FieldPredictionValue = "prediction_value"
	FieldPredictionIndex = "prediction_index"
)

// Sample is one timestamped record of a series. Absent measurements stay nil.
type Sample struct {
	Timestamp       Timestamp `json:"timestamp"`
	Temperature     *float64  `json:"temperature,omitempty"`
	Humidity        *float64  `json:"humidity,omitempty"`
	VPD             *float64  `json:"vpd,omitempty"`
	PredictionValue *float64  `json:"prediction_value,omitempty"`
	PredictionIndex *float64  `json:"prediction_index,omitempty"`
}

// Field returns the named measurement, or false when it is absent or unknown.
func (s Sample) Field(name string) (float64, bool) {
	var v *float64
	switch name {
	case FieldTemperature:
		v = s.Temperature
	case FieldHumidity:
		v = s.Humidity
	case FieldVPD:
		v = s.VPD
	case FieldPredictionValue:
		v = s.PredictionValue
	case FieldPredictionIndex:
		v = s.PredictionIndex
	}
	if v == nil {
		return math.NaN(), false
	}
	return *v, true
}

// Set stores value under the named measurement. Unknown names are ignored.
func (s *Sample) Set(name string, value float64) {
	v := value
	switch name {
	case FieldTemperature:
		s.Temperature = &v
	case FieldHumidity:
		s.Humidity = &v
	case FieldVPD:
		s.VPD = &v
	case FieldPredictionValue:
		s.PredictionValue = &v
	case FieldPredictionIndex:
		s.PredictionIndex = &v
	}
}

// Series is an ordered sequence of samples for one entity.
type Series []Sample

// GroupedSeries maps a grouping key (sensor id, zone, "mean") to its series.
type GroupedSeries map[string]Series

// MeanKey is the grouping key of the cross-sensor average series.
const MeanKey = "mean"

// SensorSeries is the backend's `[{sensor_id, Values: [...]}]` record.
type SensorSeries struct {
	SensorID SensorID `json:"sensor_id"`
	Zone     string   `json:"zone,omitempty"`
	Region   string   `json:"region,omitempty"`
	Values   Series   `json:"Values"`
}

// GroupBySensor keys the records by sensor id. Records of the same sensor
// are concatenated in order.
func GroupBySensor(records []SensorSeries) GroupedSeries {
	out := GroupedSeries{}
	for _, r := range records {
		key := r.SensorID.String()
		out[key] = append(out[key], r.Values...)
	}
	return out
}
