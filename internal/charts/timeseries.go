package charts

import (
	"fmt"
	"time"

	"cropdash/internal/chartdata"
	"cropdash/internal/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const meanColor = "#111111"

// SeriesSpec picks one key of a grouped payload and styles it. An empty
// Label falls back to the key and an empty Color to the ramp.
type SeriesSpec struct {
	Key   string
	Label string
	Color string
}

// TimeSeriesInput is everything a time-series line chart is built from.
type TimeSeriesInput struct {
	Groups models.GroupedSeries
	Field  string
	// Series selects and orders the plotted keys. Nil plots every key,
	// the mean first.
	Series []SeriesSpec
	Ramp   []string
	Limits *chartdata.Limits
	XMin   *time.Time
}

// SeriesFor lists every key of groups in plotting order with no styling.
func SeriesFor(groups models.GroupedSeries) []SeriesSpec {
	keys := groups.SortedKeys()
	specs := make([]SeriesSpec, 0, len(keys))
	if _, ok := groups[models.MeanKey]; ok {
		specs = append(specs, SeriesSpec{Key: models.MeanKey})
	}
	for _, k := range keys {
		if k != models.MeanKey {
			specs = append(specs, SeriesSpec{Key: k})
		}
	}
	return specs
}

// TimeSeries builds a line chart with one dataset per selected key.
// Selected keys missing from the groups are skipped.
func TimeSeries(o Options, in TimeSeriesInput) (*charts.Line, error) {
	specs, ramp, n := in.plan()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(o.initialization()),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithLegendOpts(o.legend()),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(timeAxis(in.XMin)),
		charts.WithYAxisOpts(o.yAxis(in.Limits)),
	)

	i := 0
	for _, spec := range specs {
		series, ok := in.Groups[spec.Key]
		if !ok {
			continue
		}
		data, err := timePoints(series, in.Field)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", spec.Key, err)
		}
		style := pointStyle{Color: spec.Color, Width: 2, ShowPoint: true}
		if spec.Key == models.MeanKey {
			style = pointStyle{Color: meanColor, Width: 4}
		} else {
			if style.Color == "" {
				style.Color = chartdata.RampColour(ramp, i, n)
			}
			i++
		}
		label := spec.Label
		if label == "" {
			label = spec.Key
		}
		line.AddSeries(label, data, style.seriesOpts()...)
	}
	return line, nil
}

// plan resolves the plotted keys, the ramp, and how many keyed (non-mean)
// datasets share the ramp.
func (in TimeSeriesInput) plan() ([]SeriesSpec, []string, int) {
	specs := in.Series
	if specs == nil {
		specs = SeriesFor(in.Groups)
	}
	ramp := in.Ramp
	if ramp == nil {
		ramp = chartdata.RampRedBlue
	}
	n := 0
	for _, spec := range specs {
		if _, ok := in.Groups[spec.Key]; ok && spec.Key != models.MeanKey {
			n++
		}
	}
	return specs, ramp, n
}
