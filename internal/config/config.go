package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds the application's configuration.
type Config struct {
	InfluxDBURL    string
	InfluxDBToken  string
	InfluxDBOrg    string
	InfluxDBBucket string
	Port           string

	UpstreamURL string
	RedisAddr   string
	CacheTTL    time.Duration

	Auth0Issuer   string
	Auth0Audience string
	IngestToken   string

	CORSOrigins []string
	LayoutFile  string
	LogLevel    zerolog.Level
}

// LoadConfig loads the configuration from environment variables, reading a .env
// file first when one exists.
func LoadConfig(logger zerolog.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("no .env file found, relying on system environment variables")
	}

	cfg := Config{
		InfluxDBURL:    os.Getenv("INFLUXDB_URL"),
		InfluxDBToken:  os.Getenv("INFLUXDB_TOKEN"),
		InfluxDBOrg:    os.Getenv("INFLUXDB_ORG"),
		InfluxDBBucket: envOr("INFLUXDB_BUCKET", "farm"),
		Port:           envOr("PORT", "8000"),
		UpstreamURL:    strings.TrimRight(os.Getenv("UPSTREAM_URL"), "/"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		Auth0Issuer:    os.Getenv("AUTH0_ISSUER"),
		Auth0Audience:  os.Getenv("AUTH0_AUDIENCE"),
		IngestToken:    os.Getenv("INGEST_TOKEN"),
		LayoutFile:     os.Getenv("LAYOUT_FILE"),
		CacheTTL:       5 * time.Minute,
		LogLevel:       zerolog.InfoLevel,
	}
	if cfg.InfluxDBURL == "" || cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		return Config{}, fmt.Errorf("InfluxDB configuration is incomplete. Please set INFLUXDB_URL, INFLUXDB_TOKEN, and INFLUXDB_ORG environment variables")
	}

	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CACHE_TTL %q: %w", v, err)
		}
		cfg.CacheTTL = ttl
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := zerolog.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
		cfg.LogLevel = level
	}
	for _, origin := range strings.Split(envOr("CORS_ORIGINS", "http://localhost:5173"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}
	if (cfg.Auth0Issuer == "") != (cfg.Auth0Audience == "") {
		return Config{}, fmt.Errorf("AUTH0_ISSUER and AUTH0_AUDIENCE must be set together")
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
