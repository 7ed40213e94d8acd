package charts

import (
	"slices"
	"sort"
	"strconv"

	"cropdash/internal/chartdata"
	"cropdash/internal/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var jet = []string{"#00007f", "#0000ff", "#007fff", "#00ffff", "#7fff7f", "#ffff00", "#ff7f00", "#ff0000", "#7f0000"}

// Axes returns the table's columns ordered by label.
func Axes(table models.CropTable) []string {
	cols := make([]string, 0, len(table.Axes))
	for c := range table.Axes {
		cols = append(cols, c)
	}
	sort.Slice(cols, func(i, j int) bool {
		if table.Axes[cols[i]] != table.Axes[cols[j]] {
			return table.Axes[cols[i]] < table.Axes[cols[j]]
		}
		return cols[i] < cols[j]
	})
	return cols
}

// ParallelAxes builds a parallel coordinates chart with one line per row,
// coloured by colourAxis. A colour column that is not an axis is appended as
// one. Rows come from the first axis column; absent cells are left empty.
func ParallelAxes(o Options, table models.CropTable, colourAxis string) *charts.Parallel {
	cols := Axes(table)
	if colourAxis != "" && !slices.Contains(cols, colourAxis) {
		cols = append(cols, colourAxis)
	}

	axes := make([]opts.ParallelAxis, len(cols))
	colourDim := -1
	for i, c := range cols {
		name := table.Axes[c]
		if name == "" {
			name = c
		}
		axes[i] = opts.ParallelAxis{Dim: i, Name: name}
		if c == colourAxis {
			colourDim = i
		}
	}

	par := charts.NewParallel()
	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(o.initialization()),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithParallelAxisList(axes),
	}
	if colourDim >= 0 {
		vm := opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Dimension:  strconv.Itoa(colourDim),
			InRange:    &opts.VisualMapInRange{Color: jet},
		}
		if limits, ok := ColourLimits(table, colourAxis); ok {
			vm.Min = float32(limits.Min)
			vm.Max = float32(limits.Max)
		}
		global = append(global, charts.WithVisualMapOpts(vm))
	}
	par.SetGlobalOptions(global...)

	var rows []string
	if len(cols) > 0 {
		rows = table.Rows(cols[0])
	}
	data := make([]opts.ParallelData, len(rows))
	for i, row := range rows {
		values := make([]any, len(cols))
		for j, c := range cols {
			if v, ok := table.Data[c][row]; ok {
				values[j] = v
			}
		}
		data[i] = opts.ParallelData{Name: row, Value: values}
	}
	par.AddSeries("batches", data)
	return par
}

// ColourLimits is the range of the colour column, if it holds any values.
func ColourLimits(table models.CropTable, colourAxis string) (chartdata.Limits, bool) {
	values := make([]float64, 0, len(table.Data[colourAxis]))
	for _, v := range table.Data[colourAxis] {
		values = append(values, v)
	}
	if len(values) == 0 {
		return chartdata.Limits{}, false
	}
	return chartdata.Limits{Min: slices.Min(values), Max: slices.Max(values)}, true
}
