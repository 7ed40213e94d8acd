// Package service assembles dashboards from stored readings and backend payloads.
package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"cropdash/internal/chartdata"
	"cropdash/internal/charts"
	"cropdash/internal/config"
	"cropdash/internal/models"
	"cropdash/internal/navigation"
	"cropdash/internal/repository"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/rs/zerolog"
)

// Chart is a chart that can be put on a page or exported as options.
type Chart interface {
	components.Charter
	charts.Configurable
}

// Dashboard is one page: its charts plus the data behind them.
type Dashboard struct {
	Title  string
	State  navigation.PageState
	Charts []Chart
	Data   any
}

// Charters lists the charts for page rendering.
func (d Dashboard) Charters() []components.Charter {
	out := make([]components.Charter, len(d.Charts))
	for i, c := range d.Charts {
		out[i] = c
	}
	return out
}

// Options exports every chart's option object.
func (d Dashboard) Options() []map[string]interface{} {
	out := make([]map[string]interface{}, len(d.Charts))
	for i, c := range d.Charts {
		out[i] = charts.OptionsJSON(c)
	}
	return out
}

// DashboardService builds the dashboards.
type DashboardService struct {
	repo       repository.Repository
	backend    repository.Backend
	layout     config.Layout
	assetsHost string
	now        func() time.Time
	logger     zerolog.Logger
}

// NewDashboardService creates a DashboardService. backend may be nil, in
// which case the prediction and crop pages are unavailable.
func NewDashboardService(repo repository.Repository, backend repository.Backend, layout config.Layout, logger zerolog.Logger) *DashboardService {
	return &DashboardService{
		repo:    repo,
		backend: backend,
		layout:  layout,
		now:     time.Now,
		logger:  logger,
	}
}

// SetAssetsHost points rendered pages at a different copy of the chart library.
func (s *DashboardService) SetAssetsHost(host string) {
	s.assetsHost = host
}

// AssetsHost is where rendered pages load the chart library from.
func (s *DashboardService) AssetsHost() string {
	return s.assetsHost
}

// Layout returns the dashboard layout in use.
func (s *DashboardService) Layout() config.Layout {
	return s.layout
}

func (s *DashboardService) requireBackend() error {
	if s.backend == nil {
		return fmt.Errorf("backend payloads: %w", models.ErrUnavailable)
	}
	return nil
}

func (s *DashboardService) ramp(name string) []string {
	if r, ok := chartdata.Ramps[name]; ok {
		return r
	}
	return chartdata.RampRedBlue
}

func (s *DashboardService) options(id, title, yLabel string) charts.Options {
	return charts.Options{
		ChartID:    id,
		Title:      title,
		YLabel:     yLabel,
		ShowLegend: true,
		AssetsHost: s.assetsHost,
	}
}

// readings fetches the selected sensors and adds the cross-sensor mean when
// more than one sensor is selected.
func (s *DashboardService) readings(ctx context.Context, sensorIDs, fields []string, start, stop time.Time, window time.Duration) (models.GroupedSeries, error) {
	groups, err := s.repo.QueryReadings(ctx, repository.ReadingsQuery{
		SensorIDs: sensorIDs,
		Fields:    fields,
		Start:     start,
		Stop:      stop,
		Window:    window,
	})
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	if len(sensorIDs) > 1 && len(groups) > 0 {
		groups[models.MeanKey] = chartdata.MeanSeries(groups, fields, chartdata.MeanWindow)
	}
	return groups, nil
}

func fieldNames(specs []config.FieldSpec) []string {
	out := make([]string, len(specs))
	for i, f := range specs {
		out[i] = f.Name
	}
	return out
}

// summarise describes field for every key of groups.
func summarise(groups models.GroupedSeries, field string) map[string]chartdata.Summary {
	out := map[string]chartdata.Summary{}
	for key, series := range groups {
		if sum, ok := chartdata.Describe(chartdata.Values(series, field)); ok {
			out[key] = sum
		}
	}
	return out
}

func limitsPtr(groups models.GroupedSeries, field string) *chartdata.Limits {
	if l, ok := chartdata.AxisLimits(groups, field); ok {
		return &l
	}
	return nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
