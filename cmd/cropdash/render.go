package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"cropdash/internal/chartdata"
	"cropdash/internal/charts"
	"cropdash/internal/models"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	output     string
	field      string
	title      string
	yLabel     string
	ramp       string
	assetsHost string
	svg        bool
	bins       bool
}

func newRenderCmd() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render [readings.json]",
		Short: "Render a chart page from a readings or bin counts file",
		Long: `render reads readings, either a JSON object mapping sensor ids (or "mean")
to lists of samples or the backend's [{sensor_id, Values}] list, and writes the
time-series chart for one field as an HTML page or SVG.

With --bins the file holds per-zone bin counts [{zone, Values: [{bin, cnt}]}]
and the page shows one doughnut per zone and the stacked zone comparison.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&f.field, "field", "temperature", "Sample field to plot")
	cmd.Flags().StringVar(&f.title, "title", "", "Chart title (default: the field name)")
	cmd.Flags().StringVar(&f.yLabel, "y-label", "", "Y axis title")
	cmd.Flags().StringVar(&f.ramp, "ramp", "redblue", "Colour ramp: redblue, blue, redbluegrey, bluegrey")
	cmd.Flags().StringVar(&f.assetsHost, "assets-host", "", "Host serving the echarts scripts")
	cmd.Flags().BoolVar(&f.svg, "svg", false, "Write a static SVG instead of an HTML page")
	cmd.Flags().BoolVar(&f.bins, "bins", false, "Read per-zone bin counts instead of readings")
	cmd.MarkFlagsMutuallyExclusive("svg", "bins")
	return cmd
}

func render(path string, f renderFlags) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	ramp, ok := chartdata.Ramps[f.ramp]
	if !ok {
		return fmt.Errorf("unknown ramp %q", f.ramp)
	}

	title := f.title
	if title == "" {
		title = f.field
		if f.bins {
			title = "Zones"
		}
	}
	o := charts.Options{
		ChartID:    "render",
		Title:      title,
		YLabel:     f.yLabel,
		ShowLegend: true,
		AssetsHost: f.assetsHost,
	}

	var w io.Writer = os.Stdout
	if f.output != "" {
		file, err := os.Create(f.output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", f.output, err)
		}
		defer file.Close()
		w = file
	}

	if f.bins {
		zones, err := models.DecodeZoneBins(data)
		if err != nil {
			return err
		}
		return renderBins(w, o, zones, ramp)
	}

	groups, err := decodeReadings(data)
	if err != nil {
		return err
	}
	in := charts.TimeSeriesInput{Groups: groups, Field: f.field, Ramp: ramp}
	if limits, ok := chartdata.AxisLimits(groups, f.field); ok {
		in.Limits = &limits
	}
	if f.svg {
		return charts.StaticTimeSeries(w, o, in)
	}
	line, err := charts.TimeSeries(o, in)
	if err != nil {
		return err
	}
	return charts.Page(w, title, f.assetsHost, line)
}

// decodeReadings accepts a grouped object or a [{sensor_id, Values}] list.
func decodeReadings(data []byte) (models.GroupedSeries, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		records, err := models.DecodeSensorSeries(trimmed)
		if err != nil {
			return nil, err
		}
		return models.GroupBySensor(records), nil
	}
	return models.DecodeGroupedSeries(data)
}

func renderBins(w io.Writer, o charts.Options, zones []models.ZoneBins, ramp []string) error {
	cs := make([]components.Charter, 0, len(zones)+1)
	for i, z := range zones {
		zo := o
		zo.ChartID = fmt.Sprintf("round%d", i)
		zo.Title = z.Zone
		zo.ShowLegend = false
		cs = append(cs, charts.Round(zo, z, ramp))
	}
	bo := o
	bo.ChartID = "zones"
	cs = append(cs, charts.HorizontalBar(bo, zones, ramp))
	return charts.Page(w, o.Title, o.AssetsHost, cs...)
}
