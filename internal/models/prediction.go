package models

// ScenarioType distinguishes the business-as-usual run from parameter sweeps.
type ScenarioType string

const (
	ScenarioBAU  ScenarioType = "BAU"
	ScenarioTest ScenarioType = "Test"
)

// PredictionRun is one model run for a sensor and measure, with its scenario parameters.
type PredictionRun struct {
	SensorID           SensorID     `json:"sensor_id"`
	MeasureName        string       `json:"measure_name"`
	RunID              int64        `json:"run_id"`
	ScenarioType       ScenarioType `json:"scenario_type,omitempty"`
	VentilationRate    float64      `json:"ventilation_rate,omitempty"`
	NumDehumidifiers   float64      `json:"num_dehumidifiers,omitempty"`
	LightingShift      float64      `json:"lighting_shift,omitempty"`
	LightingOnDuration float64      `json:"lighting_on_duration,omitempty"`
	Values             Series       `json:"Values"`
}

// Measure names the GES model publishes.
const (
	MeasureMeanTemperature  = "Mean Temperature (Degree Celcius)"
	MeasureUpperTemperature = "Upper Bound Temperature (Degree Celcius)"
	MeasureLowerTemperature = "Lower Bound Temperature (Degree Celcius)"
	MeasureMeanHumidity     = "Mean Relative Humidity (Percent)"
	MeasureUpperHumidity    = "Upper Bound Relative Humidity (Percent)"
	MeasureLowerHumidity    = "Lower Bound Relative Humidity (Percent)"
)

// ScenarioQuery selects a prediction run by exact match.
type ScenarioQuery struct {
	MeasureName      string
	ScenarioType     ScenarioType
	VentilationRate  float64
	NumDehumidifiers float64
	LightingShift    float64
}
