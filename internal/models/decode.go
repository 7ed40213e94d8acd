package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

var (
	errMissingTimestamp = errors.New("timestamp is required")
	errMissingSensorID  = errors.New("sensor_id is required")
	errMissingZone      = errors.New("zone is required")
	errMissingMeasure   = errors.New("measure_name is required")
)

// DecodeSensorSeries decodes a `[{sensor_id, Values: [...]}]` payload.
func DecodeSensorSeries(data []byte) ([]SensorSeries, error) {
	var out []SensorSeries
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, newDecodeError("sensor_series", "", err)
	}
	for i, s := range out {
		if s.SensorID == "" {
			return nil, newDecodeError("sensor_series", fmt.Sprintf("[%d].sensor_id", i), errMissingSensorID)
		}
		if err := checkSeries(s.Values); err != nil {
			return nil, newDecodeError("sensor_series", fmt.Sprintf("[%d].Values%s", i, err.field), err.err)
		}
	}
	return out, nil
}

// DecodeGroupedSeries decodes a `{key: [samples]}` payload.
func DecodeGroupedSeries(data []byte) (GroupedSeries, error) {
	var out GroupedSeries
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, newDecodeError("grouped_series", "", err)
	}
	for key, series := range out {
		if err := checkSeries(series); err != nil {
			return nil, newDecodeError("grouped_series", key+err.field, err.err)
		}
	}
	return out, nil
}

// DecodePredictionRuns decodes the prediction payload.
func DecodePredictionRuns(data []byte) ([]PredictionRun, error) {
	var out []PredictionRun
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, newDecodeError("prediction_runs", "", err)
	}
	for i, run := range out {
		if run.SensorID == "" {
			return nil, newDecodeError("prediction_runs", fmt.Sprintf("[%d].sensor_id", i), errMissingSensorID)
		}
		if run.MeasureName == "" {
			return nil, newDecodeError("prediction_runs", fmt.Sprintf("[%d].measure_name", i), errMissingMeasure)
		}
		if err := checkSeries(run.Values); err != nil {
			return nil, newDecodeError("prediction_runs", fmt.Sprintf("[%d].Values%s", i, err.field), err.err)
		}
		for j, v := range run.Values {
			if v.PredictionValue == nil {
				return nil, newDecodeError("prediction_runs", fmt.Sprintf("[%d].Values[%d].prediction_value", i, j), errors.New("prediction_value is required"))
			}
		}
	}
	return out, nil
}

// DecodeZoneBins decodes the per-zone bin count payload.
func DecodeZoneBins(data []byte) ([]ZoneBins, error) {
	var out []ZoneBins
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, newDecodeError("zone_bins", "", err)
	}
	for i, z := range out {
		if z.Zone == "" {
			return nil, newDecodeError("zone_bins", fmt.Sprintf("[%d].zone", i), errMissingZone)
		}
	}
	return out, nil
}

// DecodeBatchDetails decodes one crop batch record.
func DecodeBatchDetails(data []byte) (BatchDetails, error) {
	var out BatchDetails
	if err := json.Unmarshal(data, &out); err != nil {
		return BatchDetails{}, newDecodeError("batch_details", "", err)
	}
	if out.BatchID == "" {
		return BatchDetails{}, newDecodeError("batch_details", "batch_id", errors.New("batch_id is required"))
	}
	if err := checkSeries(out.Values); err != nil {
		return BatchDetails{}, newDecodeError("batch_details", "Values"+err.field, err.err)
	}
	return out, nil
}

// DecodeCropTable decodes the parallel axes payload. Null cells are dropped;
// any other non-numeric cell is rejected.
func DecodeCropTable(data []byte) (CropTable, error) {
	var raw struct {
		Axes map[string]string                     `json:"axes"`
		Data map[string]map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return CropTable{}, newDecodeError("crop_table", "", err)
	}
	table := CropTable{Axes: raw.Axes, Data: make(map[string]map[string]float64, len(raw.Data))}
	for column := range raw.Axes {
		if _, ok := raw.Data[column]; !ok {
			return CropTable{}, newDecodeError("crop_table", "data."+column, errors.New("axis column has no data"))
		}
	}
	for column, cells := range raw.Data {
		values := make(map[string]float64, len(cells))
		for row, cell := range cells {
			if string(cell) == "null" {
				continue
			}
			var v float64
			if err := json.Unmarshal(cell, &v); err != nil {
				if _, isAxis := raw.Axes[column]; isAxis {
					return CropTable{}, newDecodeError("crop_table", fmt.Sprintf("data.%s.%s", column, row), err)
				}
				continue
			}
			values[row] = v
		}
		table.Data[column] = values
	}
	return table, nil
}

type seriesError struct {
	field string
	err   error
}

func checkSeries(series Series) *seriesError {
	for j, s := range series {
		if s.Timestamp.IsZero() {
			return &seriesError{field: fmt.Sprintf("[%d].timestamp", j), err: errMissingTimestamp}
		}
	}
	return nil
}

// sortedKeys orders numeric keys numerically and the rest lexically after them.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := strconv.ParseFloat(keys[i], 64)
		b, errB := strconv.ParseFloat(keys[j], 64)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return keys[i] < keys[j]
	})
	return keys
}

// SortedKeys returns the keys of groups ordered like sortedKeys.
func (g GroupedSeries) SortedKeys() []string {
	return sortedKeys(g)
}
