package config

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayout(t *testing.T) {
	layout, err := LoadLayout("")
	require.NoError(t, err)

	st, ok := layout.SensorType("")
	require.True(t, ok)
	assert.Equal(t, "Aranet T&RH", st.Name)

	_, ok = layout.SensorType("Aranet CO2")
	assert.True(t, ok)
	_, ok = layout.SensorType("Zensie")
	assert.False(t, ok)

	zone, ok := layout.Zone("FrontFarm")
	require.True(t, ok)
	assert.Equal(t, []float64{0, 18, 21, 25, 144}, zone.TemperatureBins)

	assert.Len(t, layout.Stratification.Vertical, 2)
	assert.Equal(t, "23", layout.Stratification.Vertical[0].ID)
	assert.Equal(t, "redbluegrey", layout.Ramps.Temperature)
}

func TestParseLayoutRejectsSingleBinEdge(t *testing.T) {
	_, err := ParseLayout([]byte(`
sensor_types: [{name: x}]
zones: [{name: z, temperature_bins: [1.0]}]
`))
	assert.Error(t, err)
}

func TestParseLayoutRejectsTileOutsideZones(t *testing.T) {
	_, err := ParseLayout([]byte(`
sensor_types: [{name: x, fields: [{name: temperature}]}]
zones: [{name: MidFarm, sensors: ["18"]}]
tiles: [{zone: Basement, sensor_id: "18"}]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown zone "Basement"`)
}

func TestParseLayoutRequiresSensorTypes(t *testing.T) {
	_, err := ParseLayout([]byte(`zones: []`))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("INFLUXDB_URL", "http://localhost:8086")
	t.Setenv("INFLUXDB_TOKEN", "token")
	t.Setenv("INFLUXDB_ORG", "farm")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "farm", cfg.InfluxDBBucket)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "1m30s", cfg.CacheTTL.String())
}

func TestLoadConfigIncomplete(t *testing.T) {
	t.Setenv("INFLUXDB_URL", "")
	t.Setenv("INFLUXDB_TOKEN", "")
	t.Setenv("INFLUXDB_ORG", "")

	_, err := LoadConfig(zerolog.Nop())
	assert.Error(t, err)
}

func TestDetectIntegrations(t *testing.T) {
	cfg := Config{UpstreamURL: "http://backend", RedisAddr: "localhost:6379"}

	set := DetectIntegrations(context.Background(), cfg, func(context.Context) error { return nil })
	assert.True(t, set.Has(IntegrationUpstream))
	assert.True(t, set.Has(IntegrationCache))
	assert.False(t, set.Has(IntegrationAuth))
	assert.Equal(t, "cache,upstream", set.String())

	set = DetectIntegrations(context.Background(), cfg, func(context.Context) error { return errors.New("refused") })
	assert.False(t, set.Has(IntegrationCache))
}
