package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/breezy/breezy/internal/config"
	"github.com/breezy/breezy/internal/forecast"
	"github.com/breezy/breezy/internal/provider/resilience"
	"github.com/breezy/breezy/internal/weather"
	"github.com/breezy/breezy/internal/weather/weatherapi"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if !cfg.IsProduction() {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()
}

// weatherDeps is the provider side of the app: the resilient transport, its
// health registry and the caching weather service on top.
type weatherDeps struct {
	registry *resilience.Registry
	service  *weather.Service
}

func newWeather(cfg *config.Config, logger zerolog.Logger, metrics weather.MetricsRecorder) (*weatherDeps, error) {
	if cfg.Weather.APIKey == "" {
		return nil, fmt.Errorf("WEATHER_API_KEY is required")
	}

	registry := resilience.NewRegistry()

	cb := resilience.DefaultCircuitBreakerConfig(weatherapi.ProviderName)
	cb.OnStateChange = resilience.LogStateChanges(logger)

	var limiter *rate.Limiter
	if cfg.Weather.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Weather.RateLimit), max(cfg.Weather.RateBurst, 1))
	}

	httpClient := resilience.NewClient(resilience.ClientConfig{
		Name:           weatherapi.ProviderName,
		Timeout:        cfg.Weather.Timeout,
		MaxRetries:     cfg.Weather.MaxRetries,
		CircuitBreaker: &cb,
		Limiter:        limiter,
		Registry:       registry,
	})

	provider := weatherapi.NewClient(weatherapi.ClientConfig{
		APIKey:     cfg.Weather.APIKey,
		BaseURL:    cfg.Weather.BaseURL,
		HTTPClient: httpClient,
		Logger:     logger.With().Str("provider", weatherapi.ProviderName).Logger(),
		AirQuality: cfg.Weather.AirQuality,
	})

	service := weather.NewService(weather.ServiceConfig{
		Provider:        provider,
		Logger:          logger,
		Metrics:         metrics,
		ForecastDays:    cfg.Weather.ForecastDays,
		CacheTTL:        cfg.Weather.CacheTTL,
		StaleIfErrorTTL: cfg.Weather.StaleIfErrorTTL,
	})

	return &weatherDeps{registry: registry, service: service}, nil
}

func newSynthesizer(cfg *config.Config, seed uint64) (*forecast.Synthesizer, error) {
	cal, err := forecast.LoadCalendar(cfg.Calendar.TZ)
	if err != nil {
		return nil, fmt.Errorf("loading calendar %q: %w", cfg.Calendar.TZ, err)
	}
	return forecast.NewSynthesizer(forecast.SynthesizerConfig{
		Seed:     seed,
		Calendar: cal,
	}), nil
}
