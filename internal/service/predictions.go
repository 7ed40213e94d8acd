package service

import (
	"context"
	"fmt"
	"time"

	"cropdash/internal/chartdata"
	"cropdash/internal/charts"
	"cropdash/internal/models"
	"cropdash/internal/repository"
)

// Scenario holds the parameters of a GES test scenario.
type Scenario struct {
	VentilationRate  float64 `json:"ventilation_rate"`
	NumDehumidifiers float64 `json:"num_dehumidifiers"`
	LightingShift    float64 `json:"lighting_shift"`
}

type predictedMeasure struct {
	field              string
	title              string
	upper, mean, lower string
}

var predictedMeasures = []predictedMeasure{
	{
		field: models.FieldTemperature,
		title: "Temperature (°C)",
		upper: models.MeasureUpperTemperature,
		mean:  models.MeasureMeanTemperature,
		lower: models.MeasureLowerTemperature,
	},
	{
		field: models.FieldHumidity,
		title: "Relative humidity (%)",
		upper: models.MeasureUpperHumidity,
		mean:  models.MeasureMeanHumidity,
		lower: models.MeasureLowerHumidity,
	},
}

// PredictionData is the data behind a prediction page.
type PredictionData struct {
	SensorID models.SensorID        `json:"sensor_id"`
	Scenario *Scenario              `json:"scenario,omitempty"`
	Runs     []models.PredictionRun `json:"runs"`
}

// Predictions charts the GES model's temperature and humidity bounds for the
// configured sensor against its observed readings. A scenario adds the
// matching test run to each chart.
func (s *DashboardService) Predictions(ctx context.Context, scenario *Scenario) (Dashboard, error) {
	if err := s.requireBackend(); err != nil {
		return Dashboard{}, err
	}
	runs, err := s.backend.PredictionRuns(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("prediction runs: %w", err)
	}
	return s.predictionDashboard(ctx, "GES model predictions", runs, scenario)
}

// Arima charts the ARIMA forecast the same way, without scenarios.
func (s *DashboardService) Arima(ctx context.Context) (Dashboard, error) {
	if err := s.requireBackend(); err != nil {
		return Dashboard{}, err
	}
	runs, err := s.backend.ArimaRuns(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("arima runs: %w", err)
	}
	return s.predictionDashboard(ctx, "ARIMA forecast", runs, nil)
}

func (s *DashboardService) predictionDashboard(ctx context.Context, title string, runs []models.PredictionRun, scenario *Scenario) (Dashboard, error) {
	sensorID := models.SensorID(s.layout.Predictions.SensorID)
	baseline := baselineRuns(runs)
	data := PredictionData{SensorID: sensorID, Scenario: scenario}
	d := Dashboard{Title: title, Data: &data}

	for _, m := range predictedMeasures {
		in := charts.PredictionInput{ObservedField: m.field}
		var ok [3]bool
		in.Upper, ok[0] = chartdata.FindMeasure(baseline, sensorID, m.upper)
		in.Mean, ok[1] = chartdata.FindMeasure(baseline, sensorID, m.mean)
		in.Lower, ok[2] = chartdata.FindMeasure(baseline, sensorID, m.lower)
		if ok != [3]bool{true, true, true} {
			s.logger.Warn().Str("sensor_id", sensorID.String()).Str("measure", m.mean).Msg("incomplete prediction runs, chart skipped")
			continue
		}
		data.Runs = append(data.Runs, in.Upper, in.Mean, in.Lower)

		if scenario != nil {
			run, found := chartdata.FindRun(runs, models.ScenarioQuery{
				MeasureName:      m.mean,
				ScenarioType:     models.ScenarioTest,
				VentilationRate:  scenario.VentilationRate,
				NumDehumidifiers: scenario.NumDehumidifiers,
				LightingShift:    scenario.LightingShift,
			})
			if !found {
				return Dashboard{}, fmt.Errorf("scenario for %s: %w", m.mean, models.ErrNotFound)
			}
			in.Scenario = &run
			in.ScenarioLabel = fmt.Sprintf("Scenario (ventilation %g, dehumidifiers %g, lighting shift %g)",
				scenario.VentilationRate, scenario.NumDehumidifiers, scenario.LightingShift)
			data.Runs = append(data.Runs, run)
		}

		observed, err := s.observed(ctx, sensorID, m.field, in.Mean.Values)
		if err != nil {
			return Dashboard{}, err
		}
		in.Observed = observed
		if limits, ok := charts.PredictionLimits(in); ok {
			in.Limits = &limits
		}

		line, err := charts.Prediction(s.options("prediction_"+m.field, m.title, m.title), in)
		if err != nil {
			return Dashboard{}, fmt.Errorf("chart %s: %w", m.field, err)
		}
		d.Charts = append(d.Charts, line)
	}
	if len(d.Charts) == 0 {
		return Dashboard{}, fmt.Errorf("prediction runs for sensor %s: %w", sensorID, models.ErrNotFound)
	}
	return d, nil
}

// observed reads the sensor over the span the prediction covers.
func (s *DashboardService) observed(ctx context.Context, sensorID models.SensorID, field string, span models.Series) (models.Series, error) {
	if len(span) == 0 {
		return nil, nil
	}
	start, stop := span[0].Timestamp.Time, span[0].Timestamp.Time
	for _, sample := range span[1:] {
		if sample.Timestamp.Before(start) {
			start = sample.Timestamp.Time
		}
		if sample.Timestamp.After(stop) {
			stop = sample.Timestamp.Time
		}
	}
	groups, err := s.repo.QueryReadings(ctx, repository.ReadingsQuery{
		SensorIDs: []string{sensorID.String()},
		Fields:    []string{field},
		Start:     start,
		Stop:      stop.Add(time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("query observed readings: %w", err)
	}
	return groups[sensorID.String()], nil
}

// baselineRuns drops test scenarios, keeping BAU and untyped runs.
func baselineRuns(runs []models.PredictionRun) []models.PredictionRun {
	out := make([]models.PredictionRun, 0, len(runs))
	for _, run := range runs {
		if run.ScenarioType == "" || run.ScenarioType == models.ScenarioBAU {
			out = append(out, run)
		}
	}
	return out
}
