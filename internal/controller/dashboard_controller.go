package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"cropdash/internal/charts"
	"cropdash/internal/models"
	"cropdash/internal/navigation"
	"cropdash/internal/service"
	"cropdash/internal/utils"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Response formats of the dashboard pages.
const (
	FormatHTML = "html"
	FormatJSON = "json"
	FormatSVG  = "svg"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// DashboardController handles the dashboard HTTP requests.
type DashboardController struct {
	service *service.DashboardService
	health  HealthCheck
	info    map[string]any
}

// NewDashboardController creates a new DashboardController. health may be
// nil; info is reported as is by the health endpoint.
func NewDashboardController(svc *service.DashboardService, health HealthCheck, info map[string]any) *DashboardController {
	return &DashboardController{service: svc, health: health, info: info}
}

// pagePayload is the JSON form of a dashboard page.
type pagePayload struct {
	Title   string                   `json:"title"`
	Links   map[string]string        `json:"links,omitempty"`
	Data    any                      `json:"data"`
	Options []map[string]interface{} `json:"options"`
}

func (c *DashboardController) render(w http.ResponseWriter, r *http.Request, d service.Dashboard, links map[string]string) {
	switch format := r.URL.Query().Get(navigation.ParamFormat); format {
	case "", FormatHTML:
		var buf bytes.Buffer
		if err := charts.Page(&buf, d.Title, c.service.AssetsHost(), d.Charters()...); err != nil {
			utils.RespondWithServiceError(w, r, fmt.Errorf("render page: %w", err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write page")
		}
	case FormatJSON:
		utils.RespondWithJSON(w, r, http.StatusOK, pagePayload{Title: d.Title, Links: links, Data: d.Data, Options: d.Options()})
	default:
		utils.RespondWithError(w, r, models.NewAPIError(models.ErrorCodeInvalidFormat,
			fmt.Sprintf("Unsupported format %q.", format), nil, http.StatusBadRequest))
	}
}

// TimeSeries serves the time-series dashboard as a page, JSON or SVG.
func (c *DashboardController) TimeSeries(w http.ResponseWriter, r *http.Request) {
	state, err := navigation.ParseTimeSeriesState(r.URL.Query())
	if err != nil {
		utils.RespondWithServiceError(w, r, err)
		return
	}

	if r.URL.Query().Get(navigation.ParamFormat) == FormatSVG {
		var buf bytes.Buffer
		if err := c.service.TimeSeriesSVG(r.Context(), state, r.URL.Query().Get("field"), &buf); err != nil {
			utils.RespondWithServiceError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
		return
	}

	d, err := c.service.TimeSeries(r.Context(), state)
	if err != nil {
		utils.RespondWithServiceError(w, r, err)
		return
	}
	links := map[string]string{"self": navigation.TimeSeriesURL(d.State)}
	for _, st := range c.service.Layout().SensorTypes {
		links[st.Name] = navigation.SensorTypeURL(st.Name)
	}
	c.render(w, r, d, links)
}

// Download sends the selected readings as CSV, or as a workbook with format=xlsx.
func (c *DashboardController) Download(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.RespondWithError(w, r, models.NewAPIError(models.ErrorCodeBadRequest, "Invalid form data", nil, http.StatusBadRequest))
		return
	}
	state, err := navigation.ParseRequestForm(r.Form)
	if err != nil {
		utils.RespondWithServiceError(w, r, err)
		return
	}
	file, err := c.service.Export(r.Context(), state, r.Form.Get(navigation.ParamFormat))
	if err != nil {
		utils.RespondWithServiceError(w, r, err)
		return
	}
	utils.RespondWithFile(w, r, file.Name, file.ContentType, file.Body)
}

// Request turns a submitted selection into a redirect to the dashboard URL.
func (c *DashboardController) Request(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.RespondWithError(w, r, models.NewAPIError(models.ErrorCodeBadRequest, "Invalid form data", nil, http.StatusBadRequest))
		return
	}
	state, err := navigation.ParseRequestForm(r.Form)
	if err != nil {
		utils.RespondWithServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, navigation.TimeSeriesURL(state), http.StatusSeeOther)
}

// SensorType redirects to the dashboard for another sensor type, dropping
// the rest of the selection.
func (c *DashboardController) SensorType(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get(navigation.ParamSensorType)
	if _, ok := c.service.Layout().SensorType(name); !ok || name == "" {
		utils.RespondWithServiceError(w, r, models.NewValidationError(navigation.ParamSensorType, "Please select a sensor type."))
		return
	}
	http.Redirect(w, r, navigation.SensorTypeURL(name), http.StatusSeeOther)
}

// Home serves the overview page.
func (c *DashboardController) Home(w http.ResponseWriter, r *http.Request) {
	state, err := navigation.ParseHomeState(r.URL.Query(), c.service.Layout().Stratification.Days)
	if err != nil {
		utils.RespondWithServiceError(w, r, err)
		return
	}
	d, err := c.service.Home(r.Context(), state)
	if err != nil {
		utils.RespondWithServiceError(w, r, err)
		return
	}
	c.render(w, r, d, nil)
}

// HomeTiles serves the hourly summary tiles.
func (c *DashboardController) HomeTiles(w http.ResponseWriter, r *http.Request) {
	tiles, err := c.service.HourlyTiles(r.Context())
	if err != nil {
		utils.RespondWithServiceError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, r, http.StatusOK, tiles)
}

// Sensors lists the sensors the time-series dashboard can select.
func (c *DashboardController) Sensors(w http.ResponseWriter, r *http.Request) {
	sensors, err := c.service.Sensors(r.Context())
	if err != nil {
		utils.RespondWithServiceError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, r, http.StatusOK, map[string]any{"sensors": sensors})
}

// Predictions serves the GES prediction page. Any of ventilation_rate,
// num_dehumidifiers or lighting_shift selects a test scenario; the others default to 0.
func (c *DashboardController) Predictions(w http.ResponseWriter, r *http.Request) {
	scenario, err := parseScenario(r)
	if err != nil {
		utils.RespondWithServiceError(w, r, err)
		return
	}
	d, err := c.service.Predictions(r.Context(), scenario)
	if err != nil {
		utils.RespondWithServiceError(w, r, err)
		return
	}
	c.render(w, r, d, nil)
}

// Arima serves the ARIMA forecast page.
func (c *DashboardController) Arima(w http.ResponseWriter, r *http.Request) {
	d, err := c.service.Arima(r.Context())
	if err != nil {
		utils.RespondWithServiceError(w, r, err)
		return
	}
	c.render(w, r, d, nil)
}

// ParallelAxes serves the crop batch parallel axes page.
func (c *DashboardController) ParallelAxes(w http.ResponseWriter, r *http.Request) {
	state, err := navigation.ParseParallelState(r.URL.Query())
	if err != nil {
		utils.RespondWithServiceError(w, r, err)
		return
	}
	d, err := c.service.ParallelAxes(r.Context(), state)
	if err != nil {
		utils.RespondWithServiceError(w, r, err)
		return
	}
	c.render(w, r, d, map[string]string{"self": navigation.ParallelAxesURL(d.State)})
}

// Batch serves one crop batch.
func (c *DashboardController) Batch(w http.ResponseWriter, r *http.Request) {
	d, err := c.service.Batch(r.Context(), mux.Vars(r)["batch_id"])
	if err != nil {
		utils.RespondWithServiceError(w, r, err)
		return
	}
	c.render(w, r, d, nil)
}

// IngestSensorData stores readings posted as one object or an array. The
// whole batch is validated before anything is written.
func (c *DashboardController) IngestSensorData(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondWithError(w, r, models.NewAPIError(models.ErrorCodeBadRequest, fmt.Sprintf("error reading request body: %v", err), nil, http.StatusBadRequest))
		return
	}
	defer r.Body.Close()

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var one models.SensorData
		if err := json.Unmarshal(trimmed, &one); err != nil {
			utils.RespondWithError(w, r, models.NewAPIError(models.ErrorCodeBadRequest, fmt.Sprintf("error unmarshalling JSON: %v", err), nil, http.StatusBadRequest))
			return
		}
		if err := c.service.IngestSensorData(r.Context(), one); err != nil {
			utils.RespondWithServiceError(w, r, err)
			return
		}
		utils.RespondWithJSON(w, r, http.StatusCreated, map[string]any{"message": "Data received and written to InfluxDB", "count": 1})
		return
	}
	var batch []models.SensorData
	if err := json.Unmarshal(trimmed, &batch); err != nil {
		utils.RespondWithError(w, r, models.NewAPIError(models.ErrorCodeBadRequest, fmt.Sprintf("error unmarshalling JSON: %v", err), nil, http.StatusBadRequest))
		return
	}

	written, err := c.service.IngestBatch(r.Context(), batch)
	if err != nil {
		apiErr := models.ToAPIError(err)
		if apiErr.Details == nil {
			apiErr.Details = map[string]int{"written": written, "count": len(batch)}
		}
		utils.RespondWithError(w, r, apiErr)
		return
	}
	utils.RespondWithJSON(w, r, http.StatusCreated, map[string]any{"message": "Data received and written to InfluxDB", "count": len(batch)})
}

// Health reports liveness and the detected integrations.
func (c *DashboardController) Health(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{"status": "ok"}
	for k, v := range c.info {
		payload[k] = v
	}
	if c.health != nil {
		if err := c.health(r.Context()); err != nil {
			payload["status"] = "degraded"
			payload["error"] = err.Error()
			utils.RespondWithJSON(w, r, http.StatusServiceUnavailable, payload)
			return
		}
	}
	utils.RespondWithJSON(w, r, http.StatusOK, payload)
}

func parseScenario(r *http.Request) (*service.Scenario, error) {
	q := r.URL.Query()
	var scenario service.Scenario
	found := false
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"ventilation_rate", &scenario.VentilationRate},
		{"num_dehumidifiers", &scenario.NumDehumidifiers},
		{"lighting_shift", &scenario.LightingShift},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, models.NewValidationError(p.name, fmt.Sprintf("%s must be a number.", p.name))
		}
		*p.dst = v
		found = true
	}
	if !found {
		return nil, nil
	}
	return &scenario, nil
}
