package models

// SensorData is one ingested reading. Field is the measurement name, Value its value.
type SensorData struct {
	Location  string  `json:"location_id"`
	DeviceID  string  `json:"device_id"`
	SensorID  string  `json:"sensor_id"`
	Zone      string  `json:"zone"`
	Field     string  `json:"field"`
	Value     float64 `json:"value"`
	Timestamp string  `json:"timestamp"`
}

// SensorKey is the sensor the reading is tagged with, the device when no sensor is named.
func (d SensorData) SensorKey() string {
	if d.SensorID != "" {
		return d.SensorID
	}
	return d.DeviceID
}
