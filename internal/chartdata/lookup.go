package chartdata

import "cropdash/internal/models"

// FindRun returns the first run whose measure, scenario type and scenario
// parameters all equal the query.
func FindRun(runs []models.PredictionRun, q models.ScenarioQuery) (models.PredictionRun, bool) {
	for _, run := range runs {
		if run.MeasureName == q.MeasureName &&
			run.ScenarioType == q.ScenarioType &&
			run.VentilationRate == q.VentilationRate &&
			run.NumDehumidifiers == q.NumDehumidifiers &&
			run.LightingShift == q.LightingShift {
			return run, true
		}
	}
	return models.PredictionRun{}, false
}

// FindMeasure returns the first run for sensorID with the given measure, ignoring scenarios.
func FindMeasure(runs []models.PredictionRun, sensorID models.SensorID, measure string) (models.PredictionRun, bool) {
	for _, run := range runs {
		if run.SensorID == sensorID && run.MeasureName == measure {
			return run, true
		}
	}
	return models.PredictionRun{}, false
}
