package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cropdash/internal/config"
	"cropdash/internal/controller"
	"cropdash/internal/middleware"
	"cropdash/internal/repository"
	"cropdash/internal/routes"
	"cropdash/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCmd(logger zerolog.Logger) *cobra.Command {
	var assetsHost string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), logger, assetsHost)
		},
	}
	cmd.Flags().StringVar(&assetsHost, "assets-host", "", "Host serving the echarts scripts (default: go-echarts CDN)")
	return cmd
}

func serve(ctx context.Context, logger zerolog.Logger, assetsHost string) error {
	cfg, err := config.LoadConfig(logger)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	logger = logger.Level(cfg.LogLevel)

	layout, err := config.LoadLayout(cfg.LayoutFile)
	if err != nil {
		return fmt.Errorf("loading layout: %w", err)
	}

	repo := repository.NewInfluxDBRepository(cfg.InfluxDBURL, cfg.InfluxDBToken, cfg.InfluxDBOrg, cfg.InfluxDBBucket, logger)
	defer repo.Close()

	var (
		cache     repository.PayloadCache = repository.NoCache{}
		cachePing config.Pinger
		redis     *repository.RedisCache
	)
	if cfg.RedisAddr != "" {
		redis = repository.NewRedisCache(cfg.RedisAddr)
		defer redis.Close()
		cachePing = redis.Ping
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	integrations := config.DetectIntegrations(pingCtx, cfg, cachePing)
	cancel()
	logger.Info().Str("integrations", integrations.String()).Msg("integrations detected")

	if integrations.Has(config.IntegrationCache) {
		cache = redis
	} else if redis != nil {
		logger.Warn().Str("addr", cfg.RedisAddr).Msg("redis unreachable, upstream payloads will not be cached")
	}

	var backend repository.Backend
	if integrations.Has(config.IntegrationUpstream) {
		backend = repository.NewUpstream(cfg.UpstreamURL, cache, cfg.CacheTTL, logger)
	}

	svc := service.NewDashboardService(repo, backend, layout, logger)
	svc.SetAssetsHost(assetsHost)
	ctrl := controller.NewDashboardController(svc, repo.Ping, map[string]any{
		"integrations": integrations.String(),
	})

	var mw routes.Middlewares
	if integrations.Has(config.IntegrationAuth) {
		mw.Auth, err = middleware.EnsureValidToken(cfg.Auth0Issuer, cfg.Auth0Audience)
		if err != nil {
			return fmt.Errorf("setting up token validation: %w", err)
		}
	}
	if integrations.Has(config.IntegrationIngest) {
		mw.Ingest = middleware.DeviceToken(cfg.IngestToken)
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, ctrl, mw)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", middleware.DeviceTokenHeader},
		AllowCredentials: true,
	})
	handler := c.Handler(middleware.RequestLogger(logger)(router))

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Msg("server is running")
	if err := http.ListenAndServe(addr, handler); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
