// Package charts turns shaped dashboard data into go-echarts chart
// configurations. Builders are pure: they never fetch data or touch the
// response, and each call returns a fresh chart.
package charts

import (
	"slices"
	"time"

	"cropdash/internal/chartdata"
	"cropdash/internal/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Options are the display settings shared by every builder.
type Options struct {
	ChartID    string
	Title      string
	YLabel     string
	ShowLegend bool
	Width      string
	Height     string
	AssetsHost string
}

func (o Options) initialization() opts.Initialization {
	cfg := opts.Initialization{
		PageTitle:  o.Title,
		ChartID:    o.ChartID,
		Width:      o.Width,
		Height:     o.Height,
		AssetsHost: o.AssetsHost,
	}
	if cfg.Width == "" {
		cfg.Width = "100%"
	}
	if cfg.Height == "" {
		cfg.Height = "400px"
	}
	return cfg
}

func (o Options) legend() opts.Legend {
	return opts.Legend{Show: opts.Bool(o.ShowLegend), Top: "top"}
}

func (o Options) yAxis(limits *chartdata.Limits) opts.YAxis {
	y := opts.YAxis{
		Name:         o.YLabel,
		NameLocation: "middle",
		NameGap:      45,
		Type:         "value",
	}
	if limits != nil {
		y.Min = limits.Min
		y.Max = limits.Max
	}
	return y
}

func timeAxis(from *time.Time) opts.XAxis {
	x := opts.XAxis{Type: "time"}
	if from != nil {
		x.Min = from.UnixMilli()
	}
	return x
}

// pointStyle mirrors the per-dataset styling of the dashboard line charts.
type pointStyle struct {
	Color     string
	Width     float32
	Dash      string
	ShowPoint bool
}

func (s pointStyle) seriesOpts() []charts.SeriesOpts {
	return []charts.SeriesOpts{
		charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color, Width: s.Width, Type: s.Dash}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(s.ShowPoint)}),
	}
}

// timePoints orders series by time and pairs timestamps with field values.
// Samples lacking the field become gaps.
func timePoints(series models.Series, field string) ([]opts.LineData, error) {
	ordered := slices.Clone(series)
	slices.SortStableFunc(ordered, func(a, b models.Sample) int {
		return a.Timestamp.Compare(b.Timestamp.Time)
	})
	xs := make([]int64, len(ordered))
	ys := make([]any, len(ordered))
	for i, s := range ordered {
		xs[i] = s.Timestamp.UnixMilli()
		if v, ok := s.Field(field); ok {
			ys[i] = v
		}
	}
	return lineData(xs, ys)
}

// indexPoints orders series by prediction_index and pairs timestamps with
// prediction values.
func indexPoints(series models.Series) ([]opts.LineData, error) {
	ordered := slices.Clone(series)
	chartdata.SortByNumeric(ordered, models.FieldPredictionIndex)
	xs := make([]int64, len(ordered))
	ys := make([]any, len(ordered))
	for i, s := range ordered {
		xs[i] = s.Timestamp.UnixMilli()
		if v, ok := s.Field(models.FieldPredictionValue); ok {
			ys[i] = v
		}
	}
	return lineData(xs, ys)
}

func lineData(xs []int64, ys []any) ([]opts.LineData, error) {
	pairs, err := chartdata.Zip(xs, ys)
	if err != nil {
		return nil, err
	}
	data := make([]opts.LineData, len(pairs))
	for i, p := range pairs {
		data[i] = opts.LineData{Value: []any{p.X, p.Y}}
	}
	return data, nil
}
