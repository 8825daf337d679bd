// Package config loads Breezy settings from the environment, optional .env
// files and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full service configuration. Every key is also readable from
// the environment with dots replaced by underscores, so app.port is APP_PORT.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	OTel     OTelConfig     `mapstructure:"otel"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Weather  WeatherConfig  `mapstructure:"weather"`
	Session  SessionConfig  `mapstructure:"session"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Synth    SynthConfig    `mapstructure:"synth"`
}

type AppConfig struct {
	Port        int      `mapstructure:"port"`
	Env         string   `mapstructure:"env"`
	RequireTLS  bool     `mapstructure:"require_tls"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type OTelConfig struct {
	Enabled              bool    `mapstructure:"enabled"`
	ExporterOTLPEndpoint string  `mapstructure:"exporter_otlp_endpoint"`
	SampleRatio          float64 `mapstructure:"sample_ratio"`
}

type JWTConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	Issuer     string        `mapstructure:"issuer"`
	Audience   string        `mapstructure:"audience"`
	Expiry     time.Duration `mapstructure:"expiry"`
}

type WeatherConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	ForecastDays    int           `mapstructure:"forecast_days"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	StaleIfErrorTTL time.Duration `mapstructure:"stale_if_error_ttl"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      uint64        `mapstructure:"max_retries"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst"`
	AirQuality      bool          `mapstructure:"air_quality"`
}

type SessionConfig struct {
	DefaultQuery  string        `mapstructure:"default_query"`
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	LocateTimeout time.Duration `mapstructure:"locate_timeout"`
}

type RefreshConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type PubSubConfig struct {
	ProjectID    string `mapstructure:"project_id"`
	Subscription string `mapstructure:"subscription"`
}

// Enabled reports whether both the project and the subscription are set.
func (c PubSubConfig) Enabled() bool {
	return c.ProjectID != "" && c.Subscription != ""
}

type CalendarConfig struct {
	TZ string `mapstructure:"tz"`
}

type SynthConfig struct {
	Seed uint64 `mapstructure:"seed"`
}

// DevSigningKey is used when JWT_SIGNING_KEY is unset outside production.
const DevSigningKey = "local-dev-signing-key-change-in-production"

// ErrMissingSigningKey is returned in production without JWT_SIGNING_KEY.
var ErrMissingSigningKey = errors.New("JWT_SIGNING_KEY is required in production")

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.env", "development")
	v.SetDefault("app.require_tls", false)
	v.SetDefault("app.cors_origins", []string{})

	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.exporter_otlp_endpoint", "localhost:4317")
	v.SetDefault("otel.sample_ratio", 1.0)

	v.SetDefault("jwt.signing_key", "")
	v.SetDefault("jwt.issuer", "breezy")
	v.SetDefault("jwt.audience", "breezy-dashboard")
	v.SetDefault("jwt.expiry", "24h")

	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.base_url", "https://api.weatherapi.com/v1")
	v.SetDefault("weather.forecast_days", 5)
	v.SetDefault("weather.cache_ttl", "5m")
	v.SetDefault("weather.stale_if_error_ttl", "0s")
	v.SetDefault("weather.timeout", "10s")
	v.SetDefault("weather.max_retries", 2)
	v.SetDefault("weather.rate_limit", 5.0)
	v.SetDefault("weather.rate_burst", 10)
	v.SetDefault("weather.air_quality", false)

	v.SetDefault("session.default_query", "Colombo")
	v.SetDefault("session.idle_ttl", "24h")
	v.SetDefault("session.locate_timeout", "5s")

	v.SetDefault("refresh.interval", "15m")
	v.SetDefault("refresh.concurrency", 3)
	v.SetDefault("refresh.timeout", "30s")

	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.subscription", "")

	v.SetDefault("calendar.tz", "UTC")
	v.SetDefault("synth.seed", 0)
}

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from defaults, the optional YAML file at
// configPath and the environment, in increasing precedence.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

func (c *Config) validate() error {
	if c.JWT.SigningKey == "" {
		if c.IsProduction() {
			return ErrMissingSigningKey
		}
		c.JWT.SigningKey = DevSigningKey
	}
	if c.OTel.SampleRatio < 0 || c.OTel.SampleRatio > 1 {
		return fmt.Errorf("otel.sample_ratio must be within [0, 1], got %v", c.OTel.SampleRatio)
	}
	if c.Weather.ForecastDays < 1 || c.Weather.ForecastDays > 14 {
		return fmt.Errorf("weather.forecast_days must be within [1, 14], got %d", c.Weather.ForecastDays)
	}
	return nil
}
