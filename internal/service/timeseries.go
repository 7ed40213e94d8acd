package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cropdash/internal/chartdata"
	"cropdash/internal/charts"
	"cropdash/internal/config"
	"cropdash/internal/models"
	"cropdash/internal/navigation"
)

// Panel is one plotted field of the time-series dashboard.
type Panel struct {
	Field   string                       `json:"field"`
	Label   string                       `json:"label"`
	Limits  *chartdata.Limits            `json:"limits,omitempty"`
	Summary map[string]chartdata.Summary `json:"summary"`
}

// TimeSeriesData is the data behind the time-series dashboard.
type TimeSeriesData struct {
	SensorType  string               `json:"sensor_type"`
	SensorTypes []string             `json:"sensor_types"`
	Series      models.GroupedSeries `json:"series"`
	Panels      []Panel              `json:"panels"`
}

func (s *DashboardService) sensorType(name string) (config.SensorType, error) {
	st, ok := s.layout.SensorType(name)
	if !ok {
		return config.SensorType{}, models.NewValidationError(navigation.ParamSensorType, fmt.Sprintf("Unknown sensor type %q.", name))
	}
	return st, nil
}

// TimeSeries builds the time-series dashboard: one line chart per field of
// the sensor type. An empty selection yields the page without charts.
func (s *DashboardService) TimeSeries(ctx context.Context, state navigation.PageState) (Dashboard, error) {
	st, err := s.sensorType(state.SensorType)
	if err != nil {
		return Dashboard{}, err
	}
	state.SensorType = st.Name

	data := TimeSeriesData{SensorType: st.Name}
	for _, t := range s.layout.SensorTypes {
		data.SensorTypes = append(data.SensorTypes, t.Name)
	}
	d := Dashboard{Title: "Time series: " + st.Name, State: state, Data: &data}
	if state.Empty() {
		return d, nil
	}
	if err := state.Validate(); err != nil {
		return Dashboard{}, err
	}

	groups, err := s.readings(ctx, state.SensorIDs, fieldNames(st.Fields), state.Start, state.Stop(), 0)
	if err != nil {
		return Dashboard{}, err
	}
	data.Series = groups

	for _, f := range st.Fields {
		panel := Panel{Field: f.Name, Label: f.Label, Limits: limitsPtr(groups, f.Name), Summary: summarise(groups, f.Name)}
		data.Panels = append(data.Panels, panel)

		line, err := charts.TimeSeries(s.options("timeseries_"+f.Name, f.Label, f.Label), charts.TimeSeriesInput{
			Groups: groups,
			Field:  f.Name,
			Ramp:   s.ramp(s.layout.Ramps.TimeSeries),
			Limits: panel.Limits,
		})
		if err != nil {
			return Dashboard{}, fmt.Errorf("chart %s: %w", f.Name, err)
		}
		d.Charts = append(d.Charts, line)
	}
	s.logger.Debug().
		Strs("sensor_ids", state.SensorIDs).
		Str("sensor_type", st.Name).
		Int("series", len(groups)).
		Msg("time-series dashboard built")
	return d, nil
}

// TimeSeriesSVG renders one field of the selection as a static SVG. An
// empty field renders the sensor type's first field.
func (s *DashboardService) TimeSeriesSVG(ctx context.Context, state navigation.PageState, field string, w io.Writer) error {
	st, err := s.sensorType(state.SensorType)
	if err != nil {
		return err
	}
	if err := state.Validate(); err != nil {
		return err
	}
	spec := st.Fields[0]
	if field != "" {
		found := false
		for _, f := range st.Fields {
			if f.Name == field {
				spec, found = f, true
			}
		}
		if !found {
			return models.NewValidationError("field", fmt.Sprintf("Sensor type %q has no field %q.", st.Name, field))
		}
	}

	groups, err := s.readings(ctx, state.SensorIDs, []string{spec.Name}, state.Start, state.Stop(), 0)
	if err != nil {
		return err
	}
	err = charts.StaticTimeSeries(w, s.options("", spec.Label, spec.Label), charts.TimeSeriesInput{
		Groups: groups,
		Field:  spec.Name,
		Ramp:   s.ramp(s.layout.Ramps.TimeSeries),
		Limits: limitsPtr(groups, spec.Name),
	})
	if errors.Is(err, charts.ErrNoPoints) {
		return fmt.Errorf("no %s readings for the selection: %w", spec.Name, models.ErrNotFound)
	}
	return err
}
