package service

import (
	"context"
	"fmt"

	"cropdash/internal/chartdata"
	"cropdash/internal/charts"
	"cropdash/internal/models"
	"cropdash/internal/navigation"
)

// ParallelData is the data behind the parallel axes page.
type ParallelData struct {
	Table        models.CropTable  `json:"table"`
	ColourAxis   string            `json:"colour_axis"`
	ColourLimits *chartdata.Limits `json:"colour_limits,omitempty"`
}

// ParallelAxes charts the crop batch table, coloured by state.ColourAxis or
// the first axis when none is chosen.
func (s *DashboardService) ParallelAxes(ctx context.Context, state navigation.PageState) (Dashboard, error) {
	if err := s.requireBackend(); err != nil {
		return Dashboard{}, err
	}
	table, err := s.backend.CropTable(ctx, state.Start, state.End, state.CropType)
	if err != nil {
		return Dashboard{}, fmt.Errorf("crop table: %w", err)
	}

	colour := state.ColourAxis
	if colour == "" {
		if axes := charts.Axes(table); len(axes) > 0 {
			colour = axes[0]
		}
	} else if _, ok := table.Data[colour]; !ok {
		return Dashboard{}, models.NewValidationError(navigation.ParamColourAxis, fmt.Sprintf("Unknown colour axis %q.", colour))
	}
	state.ColourAxis = colour

	data := ParallelData{Table: table, ColourAxis: colour}
	if limits, ok := charts.ColourLimits(table, colour); ok {
		data.ColourLimits = &limits
	}
	title := "Crop batches"
	if state.CropType != "" {
		title += ": " + state.CropType
	}
	par := charts.ParallelAxes(s.options("parallel_axes", title, ""), table, colour)
	return Dashboard{Title: title, State: state, Charts: []Chart{par}, Data: &data}, nil
}

// BatchData is the data behind a batch page.
type BatchData struct {
	Batch   models.BatchDetails                     `json:"batch"`
	Summary map[string]map[string]chartdata.Summary `json:"summary"`
}

// Batch charts the growing conditions recorded for one crop batch.
func (s *DashboardService) Batch(ctx context.Context, batchID string) (Dashboard, error) {
	if err := s.requireBackend(); err != nil {
		return Dashboard{}, err
	}
	if batchID == "" {
		return Dashboard{}, models.NewValidationError("batch_id", "Please select a batch.")
	}
	batch, err := s.backend.BatchDetails(ctx, batchID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("batch %s: %w", batchID, err)
	}

	key := batch.SensorID.String()
	if key == "" {
		key = batch.BatchID
	}
	groups := models.GroupedSeries{key: batch.Values}
	data := BatchData{Batch: batch, Summary: map[string]map[string]chartdata.Summary{}}
	d := Dashboard{Title: fmt.Sprintf("Batch %s (%s)", batch.BatchID, batch.CropType), Data: &data}

	for _, f := range []struct{ name, label string }{
		{models.FieldTemperature, "Temperature (°C)"},
		{models.FieldHumidity, "Humidity (%)"},
	} {
		limits := limitsPtr(groups, f.name)
		if limits == nil {
			continue
		}
		data.Summary[f.name] = summarise(groups, f.name)
		line, err := charts.TimeSeries(s.options("batch_"+f.name, f.label, f.label), charts.TimeSeriesInput{
			Groups: groups,
			Field:  f.name,
			Ramp:   s.ramp(s.layout.Ramps.TimeSeries),
			Limits: limits,
		})
		if err != nil {
			return Dashboard{}, fmt.Errorf("chart %s: %w", f.name, err)
		}
		d.Charts = append(d.Charts, line)
	}
	return d, nil
}
