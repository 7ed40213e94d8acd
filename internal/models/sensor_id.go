package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// SensorID is a sensor identifier. The backend emits it as a number, grouping keys
// carry it as a string; both decode to the same value.
type SensorID string

func (id *SensorID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("sensor_id is null")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = SensorID(s)
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid sensor_id %s: %w", data, err)
	}
	*id = SensorID(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

func (id SensorID) String() string {
	return string(id)
}
