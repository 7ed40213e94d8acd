package charts

import (
	"fmt"

	"cropdash/internal/chartdata"
	"cropdash/internal/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	boundColor    = "#ee978c"
	meanPredColor = "#ff0000"
	observedColor = "#a0a0a0"
	scenarioColor = "#8eb0ee"
)

// PredictionInput holds the runs of one prediction chart. Scenario and
// Observed are optional.
type PredictionInput struct {
	Upper, Mean, Lower models.PredictionRun
	Scenario           *models.PredictionRun
	ScenarioLabel      string
	Observed           models.Series
	ObservedField      string
	ObservedLabel      string
	Limits             *chartdata.Limits
}

// Prediction builds the bound, mean, scenario and observed lines of a model
// run. Run values are plotted in prediction_index order.
func Prediction(o Options, in PredictionInput) (*charts.Line, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(o.initialization()),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithLegendOpts(o.legend()),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(timeAxis(nil)),
		charts.WithYAxisOpts(o.yAxis(in.Limits)),
	)

	runs := []struct {
		label string
		run   models.PredictionRun
		style pointStyle
	}{
		{"Upper Bound", in.Upper, pointStyle{Color: boundColor, Width: 1, Dash: "dashed"}},
		{"Mean", in.Mean, pointStyle{Color: meanPredColor, Width: 2, Dash: "dashed"}},
		{"Lower Bound", in.Lower, pointStyle{Color: boundColor, Width: 1, Dash: "dashed"}},
	}
	for _, r := range runs {
		data, err := indexPoints(r.run.Values)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.label, err)
		}
		line.AddSeries(r.label, data, r.style.seriesOpts()...)
	}

	if in.Scenario != nil {
		data, err := indexPoints(in.Scenario.Values)
		if err != nil {
			return nil, fmt.Errorf("scenario: %w", err)
		}
		label := in.ScenarioLabel
		if label == "" {
			label = "Scenario"
		}
		line.AddSeries(label, data, pointStyle{Color: scenarioColor, Width: 2, Dash: "dashed"}.seriesOpts()...)
	}

	if len(in.Observed) > 0 {
		data, err := timePoints(in.Observed, in.ObservedField)
		if err != nil {
			return nil, fmt.Errorf("observed: %w", err)
		}
		label := in.ObservedLabel
		if label == "" {
			label = "Zensie"
		}
		line.AddSeries(label, data, pointStyle{Color: observedColor, Width: 2}.seriesOpts()...)
	}
	return line, nil
}

// PredictionLimits spans the bounds and the observed values together.
func PredictionLimits(in PredictionInput) (chartdata.Limits, bool) {
	groups := map[string]models.Series{
		"upper": in.Upper.Values,
		"lower": in.Lower.Values,
		"mean":  in.Mean.Values,
	}
	limits, ok := chartdata.AxisLimits(groups, models.FieldPredictionValue)
	if obs, found := chartdata.AxisLimits(map[string]models.Series{"observed": in.Observed}, in.ObservedField); found {
		if !ok {
			return obs, true
		}
		limits.Min = min(limits.Min, obs.Min)
		limits.Max = max(limits.Max, obs.Max)
		ok = true
	}
	return limits, ok
}
