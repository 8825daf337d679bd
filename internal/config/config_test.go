package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breezy/breezy/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.False(t, cfg.OTel.Enabled)
	assert.Equal(t, "localhost:4317", cfg.OTel.ExporterOTLPEndpoint)
	assert.Equal(t, config.DevSigningKey, cfg.JWT.SigningKey)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, 5, cfg.Weather.ForecastDays)
	assert.Equal(t, 5*time.Minute, cfg.Weather.CacheTTL)
	assert.Equal(t, "Colombo", cfg.Session.DefaultQuery)
	assert.Equal(t, 5*time.Second, cfg.Session.LocateTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Refresh.Interval)
	assert.Equal(t, "UTC", cfg.Calendar.TZ)
	assert.Zero(t, cfg.Synth.Seed)
	assert.False(t, cfg.PubSub.Enabled())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("JWT_SIGNING_KEY", "secret")
	t.Setenv("WEATHER_API_KEY", "abc123")
	t.Setenv("WEATHER_CACHE_TTL", "90s")
	t.Setenv("REFRESH_INTERVAL", "0")
	t.Setenv("PUBSUB_PROJECT_ID", "proj")
	t.Setenv("PUBSUB_SUBSCRIPTION", "sub")
	t.Setenv("CALENDAR_TZ", "Asia/Colombo")
	t.Setenv("SYNTH_SEED", "42")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSOrigins)
	assert.True(t, cfg.OTel.Enabled)
	assert.Equal(t, "secret", cfg.JWT.SigningKey)
	assert.Equal(t, "abc123", cfg.Weather.APIKey)
	assert.Equal(t, 90*time.Second, cfg.Weather.CacheTTL)
	assert.Zero(t, cfg.Refresh.Interval)
	assert.True(t, cfg.PubSub.Enabled())
	assert.Equal(t, "Asia/Colombo", cfg.Calendar.TZ)
	assert.Equal(t, uint64(42), cfg.Synth.Seed)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breezy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: 7000
session:
  default_query: Paris
weather:
  forecast_days: 3
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.App.Port)
	assert.Equal(t, "Paris", cfg.Session.DefaultQuery)
	assert.Equal(t, 3, cfg.Weather.ForecastDays)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breezy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  port: 7000\n"), 0o600))
	t.Setenv("APP_PORT", "7001")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.App.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_ProductionRequiresSigningKey(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := config.Load("")
	assert.ErrorIs(t, err, config.ErrMissingSigningKey)
}

func TestLoad_Validation(t *testing.T) {
	t.Setenv("WEATHER_FORECAST_DAYS", "30")
	_, err := config.Load("")
	assert.ErrorContains(t, err, "forecast_days")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BREEZY_DOTENV_TEST=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("BREEZY_DOTENV_TEST") })

	require.NoError(t, config.LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("BREEZY_DOTENV_TEST"))
}
