package models

// CropTable is the column-oriented batch table behind the parallel axes plot.
// Data maps column name to row key to value; Axes maps column name to axis label.
type CropTable struct {
	Axes map[string]string             `json:"axes"`
	Data map[string]map[string]float64 `json:"data"`
}

// Rows returns the row keys present in column, in a stable order.
func (t CropTable) Rows(column string) []string {
	return sortedKeys(t.Data[column])
}

// BatchDetails is the growth record of one crop batch.
type BatchDetails struct {
	BatchID  string   `json:"batch_id"`
	CropType string   `json:"crop_type"`
	SensorID SensorID `json:"sensor_id"`
	Values   Series   `json:"Values"`
}
