package models

// BinCount is the number of samples falling into one labelled value bin.
type BinCount struct {
	Bin string  `json:"bin"`
	Cnt float64 `json:"cnt"`
}

// ZoneBins holds the bin counts of one farm zone.
type ZoneBins struct {
	Zone   string     `json:"zone"`
	Values []BinCount `json:"Values"`
}

// HourlyTile is the latest hourly reading of a zone shown in the summary tiles.
type HourlyTile struct {
	Zone        string   `json:"zone"`
	SensorID    SensorID `json:"sensor_id"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}
