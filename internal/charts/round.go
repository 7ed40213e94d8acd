package charts

import (
	"cropdash/internal/chartdata"
	"cropdash/internal/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Round builds the doughnut of one zone's bin counts. Bin i takes ramp[i],
// clamped to the last ramp colour.
func Round(o Options, zone models.ZoneBins, ramp []string) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(o.initialization()),
		charts.WithTitleOpts(opts.Title{Title: zone.Zone}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)

	items := make([]opts.PieData, len(zone.Values))
	for i, b := range zone.Values {
		items[i] = opts.PieData{
			Name:      b.Bin,
			Value:     b.Cnt,
			ItemStyle: &opts.ItemStyle{Color: chartdata.RampColour(ramp, i, len(ramp))},
		}
	}
	pie.AddSeries(zone.Zone, items, charts.WithPieChartOpts(opts.PieChart{Radius: []string{"45%", "75%"}}))
	return pie
}

// HorizontalBar builds one stacked horizontal bar per zone with a dataset
// per bin. Bins are taken from the first zone; zones lacking a bin count 0.
func HorizontalBar(o Options, zones []models.ZoneBins, ramp []string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(o.initialization()),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithLegendOpts(o.legend()),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	names := make([]string, len(zones))
	for i, z := range zones {
		names[i] = z.Zone
	}
	bar.SetXAxis(names)

	var bins []string
	if len(zones) > 0 {
		for _, b := range zones[0].Values {
			bins = append(bins, b.Bin)
		}
	}
	for i, bin := range bins {
		data := make([]opts.BarData, len(zones))
		for j, z := range zones {
			data[j] = opts.BarData{Value: binCount(z, bin)}
		}
		bar.AddSeries(bin, data,
			charts.WithBarChartOpts(opts.BarChart{Stack: "bins"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: chartdata.RampColour(ramp, i, len(ramp))}),
		)
	}
	bar.XYReversal()
	return bar
}

func binCount(z models.ZoneBins, bin string) float64 {
	for _, b := range z.Values {
		if b.Bin == bin {
			return b.Cnt
		}
	}
	return 0
}
