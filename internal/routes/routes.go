package routes

import (
	"fmt"
	"net/http"

	"cropdash/internal/controller"
	"cropdash/internal/models"
	"cropdash/internal/navigation"
	"cropdash/internal/utils"

	"github.com/gorilla/mux"
)

// Middlewares are the optional guards wired from the detected integrations.
type Middlewares struct {
	// Auth guards the dashboards; nil leaves them public.
	Auth func(http.Handler) http.Handler
	// Ingest guards sensor ingestion; nil disables the endpoint.
	Ingest func(http.Handler) http.Handler
}

// RegisterRoutes registers all application routes.
func RegisterRoutes(router *mux.Router, c *controller.DashboardController, mw Middlewares) {
	router.HandleFunc("/health", c.Health).Methods(http.MethodGet)

	ingest := http.Handler(http.HandlerFunc(c.IngestSensorData))
	if mw.Ingest != nil {
		ingest = mw.Ingest(ingest)
	} else {
		ingest = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			utils.RespondWithServiceError(w, r, fmt.Errorf("sensor ingestion: %w", models.ErrUnavailable))
		})
	}
	router.Handle("/influxdb/sensordata", ingest).Methods(http.MethodPost)

	dashboards := router.NewRoute().Subrouter()
	if mw.Auth != nil {
		dashboards.Use(mw.Auth)
	}
	dashboards.HandleFunc(navigation.TimeSeriesPath, c.TimeSeries).Methods(http.MethodGet)
	dashboards.HandleFunc(navigation.TimeSeriesPath, c.Download).Methods(http.MethodPost)
	dashboards.HandleFunc(navigation.RequestPath, c.Request).Methods(http.MethodPost)
	dashboards.HandleFunc(navigation.SensorTypePath, c.SensorType).Methods(http.MethodGet)
	dashboards.HandleFunc(navigation.SensorsPath, c.Sensors).Methods(http.MethodGet)
	dashboards.HandleFunc("/home", c.Home).Methods(http.MethodGet)
	dashboards.HandleFunc("/home/tiles", c.HomeTiles).Methods(http.MethodGet)
	dashboards.HandleFunc("/predictions/ges", c.Predictions).Methods(http.MethodGet)
	dashboards.HandleFunc("/predictions/arima", c.Arima).Methods(http.MethodGet)
	dashboards.HandleFunc(navigation.ParallelAxesPath, c.ParallelAxes).Methods(http.MethodGet)
	dashboards.HandleFunc("/crops/batch/{batch_id}", c.Batch).Methods(http.MethodGet)

	for _, r := range []*mux.Router{router, dashboards} {
		r.NotFoundHandler = http.HandlerFunc(notFound)
		r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithError(w, r, models.NewAPIError(models.ErrorCodeNotFound, "Resource not found", nil, http.StatusNotFound))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithError(w, r, models.NewAPIError(models.ErrorCodeMethodNotAllowed, "Method not allowed", nil, http.StatusMethodNotAllowed))
}
