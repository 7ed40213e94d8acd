package charts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"cropdash/internal/chartdata"
	"cropdash/internal/models"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoPoints is returned when a static chart would have no data to draw.
var ErrNoPoints = errors.New("charts: nothing to draw")

// StaticTimeSeries renders the same datasets as TimeSeries to SVG, for
// clients without a browser. Samples lacking the field are dropped.
func StaticTimeSeries(w io.Writer, o Options, in TimeSeriesInput) error {
	specs, ramp, n := in.plan()

	var (
		series []chart.Series
		xs     bounds
		ys     bounds
	)
	i := 0
	for _, spec := range specs {
		samples, ok := in.Groups[spec.Key]
		if !ok {
			continue
		}
		ts := chart.TimeSeries{Name: spec.Label}
		if ts.Name == "" {
			ts.Name = spec.Key
		}
		ordered := slices.Clone(samples)
		slices.SortStableFunc(ordered, func(a, b models.Sample) int {
			return a.Timestamp.Compare(b.Timestamp.Time)
		})
		for _, s := range ordered {
			v, ok := s.Field(in.Field)
			if !ok || math.IsNaN(v) {
				continue
			}
			ts.XValues = append(ts.XValues, s.Timestamp.Time)
			ts.YValues = append(ts.YValues, v)
			xs.add(chart.TimeToFloat64(s.Timestamp.Time))
			ys.add(v)
		}
		if len(ts.XValues) == 0 {
			continue
		}
		colour := spec.Color
		width := 2.0
		if spec.Key == models.MeanKey {
			colour, width = meanColor, 4
		} else {
			if colour == "" {
				colour = chartdata.RampColour(ramp, i, n)
			}
			i++
		}
		c, err := parseColour(colour)
		if err != nil {
			return err
		}
		ts.Style = chart.Style{StrokeColor: c, StrokeWidth: width}
		series = append(series, ts)
	}
	if len(series) == 0 {
		return ErrNoPoints
	}

	graph := chart.Chart{
		Title:  o.Title,
		XAxis:  chart.XAxis{ValueFormatter: chart.TimeHourValueFormatter},
		YAxis:  chart.YAxis{Name: o.YLabel},
		Series: series,
	}
	if xs.min == xs.max {
		graph.XAxis.Range = xs.padded(float64(time.Hour))
	}
	if in.Limits != nil {
		ys = bounds{min: in.Limits.Min, max: in.Limits.Max, seen: true}
	}
	if in.Limits != nil || ys.min == ys.max {
		graph.YAxis.Range = ys.padded(1)
	}
	if o.ShowLegend {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}
	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	return nil
}

// bounds tracks the extent of the plotted values on one axis.
type bounds struct {
	min, max float64
	seen     bool
}

func (b *bounds) add(v float64) {
	if !b.seen {
		b.min, b.max, b.seen = v, v, true
		return
	}
	b.min = math.Min(b.min, v)
	b.max = math.Max(b.max, v)
}

// padded returns the range, widened by pad on both sides when it has no width.
// go-chart cannot lay out an axis of zero width.
func (b bounds) padded(pad float64) *chart.ContinuousRange {
	if b.max > b.min {
		return &chart.ContinuousRange{Min: b.min, Max: b.max}
	}
	return &chart.ContinuousRange{Min: b.min - pad, Max: b.max + pad}
}

// parseColour accepts "#rrggbb" and "rgba(r,g,b,a)".
func parseColour(s string) (drawing.Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return drawing.ColorFromHex(strings.TrimPrefix(s, "#")), nil
	}
	inner, ok := strings.CutPrefix(s, "rgba(")
	if !ok {
		return drawing.Color{}, fmt.Errorf("unsupported colour %q", s)
	}
	parts := strings.Split(strings.TrimSuffix(inner, ")"), ",")
	if len(parts) != 4 {
		return drawing.Color{}, fmt.Errorf("unsupported colour %q", s)
	}
	var rgb [3]uint8
	for i := range rgb {
		n, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 8)
		if err != nil {
			return drawing.Color{}, fmt.Errorf("colour %q: %w", s, err)
		}
		rgb[i] = uint8(n)
	}
	alpha, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil {
		return drawing.Color{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return drawing.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: uint8(math.Round(alpha * 255))}, nil
}
