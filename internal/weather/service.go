package weather

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Provider defines the interface for weather data providers.
type Provider interface {
	// GetCurrent fetches current conditions for a location query.
	GetCurrent(ctx context.Context, query string) (*Snapshot, error)

	// GetForecast fetches a forecast of the given number of days.
	GetForecast(ctx context.Context, query string, days int) (*Forecast, error)

	// Name returns the provider name for logging.
	Name() string
}

// MetricsRecorder receives provider call and cache outcomes.
type MetricsRecorder interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

type nopRecorder struct{}

func (nopRecorder) RecordRequest(string, string, time.Duration, error) {}
func (nopRecorder) RecordCacheHit(string, string)                      {}
func (nopRecorder) RecordCacheMiss(string, string)                     {}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the weather data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// Metrics records provider latency and cache hits (optional).
	Metrics MetricsRecorder

	// ForecastDays is the number of days requested from the provider (default: 5).
	ForecastDays int

	// CacheTTL is how long provider responses are reused (default: 5 minutes).
	// A negative value disables caching.
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale data on provider errors.
	// Zero disables stale serving so failures reach the caller.
	StaleIfErrorTTL time.Duration

	// FetchTimeout bounds a shared provider call (default: 30s). The call
	// outlives any single caller, so the caller's own deadline does not
	// apply to it.
	FetchTimeout time.Duration
}

// Service fronts a Provider with a per-query cache. Concurrent requests
// for the same query share one provider call, so a refresh sweep over many
// sessions on one city costs a single lookup.
type Service struct {
	provider     Provider
	logger       zerolog.Logger
	metrics      MetricsRecorder
	forecastDays int
	staleFor     time.Duration
	fetchTimeout time.Duration

	current  *ttlCache[*Snapshot]
	forecast *ttlCache[*Forecast]
	inflight singleflight.Group
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = 5
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopRecorder{}
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}

	return &Service{
		provider:     cfg.Provider,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		forecastDays: cfg.ForecastDays,
		staleFor:     cfg.StaleIfErrorTTL,
		fetchTimeout: cfg.FetchTimeout,
		current:      newTTLCache[*Snapshot](cfg.CacheTTL, cfg.StaleIfErrorTTL),
		forecast:     newTTLCache[*Forecast](cfg.CacheTTL, cfg.StaleIfErrorTTL),
	}
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// GetCurrent returns current conditions for a location query.
func (s *Service) GetCurrent(ctx context.Context, query string) (*Snapshot, error) {
	return lookup(ctx, s, "current", query, s.current, s.provider.GetCurrent)
}

// GetForecast returns the provider forecast for a location query.
func (s *Service) GetForecast(ctx context.Context, query string) (*Forecast, error) {
	return lookup(ctx, s, "forecast", query, s.forecast, func(ctx context.Context, q string) (*Forecast, error) {
		return s.provider.GetForecast(ctx, q, s.forecastDays)
	})
}

// lookup serves query from cache, joins an in-flight fetch for it, or asks
// the provider. On provider failure an entry younger than StaleIfErrorTTL
// is served instead of the error. A caller that gives up stops waiting but
// leaves the shared fetch running for the others.
func lookup[T any](
	ctx context.Context,
	s *Service,
	op, query string,
	cache *ttlCache[T],
	fetch func(context.Context, string) (T, error),
) (T, error) {
	var zero T
	key, err := normalizeQuery(query)
	if err != nil {
		return zero, err
	}
	name := s.provider.Name()

	if cache.enabled() {
		if v, ok := cache.fresh(key); ok {
			s.metrics.RecordCacheHit(name, op)
			return v, nil
		}
		s.metrics.RecordCacheMiss(name, op)
	}

	flight := s.inflight.DoChan(op+"\x00"+key, func() (any, error) {
		s.logger.Debug().Str("query", key).Str("provider", name).Str("operation", op).Msg("fetching from provider")

		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()

		start := time.Now()
		v, err := fetch(fctx, strings.TrimSpace(query))
		s.metrics.RecordRequest(name, op, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		if cache.enabled() {
			if removed := cache.put(key, v); removed > 0 {
				s.logger.Debug().Int("expired_entries", removed).Str("operation", op).Msg("swept weather cache")
			}
		}
		return v, nil
	})

	var res singleflight.Result
	select {
	case res = <-flight:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	if res.Err == nil {
		return res.Val.(T), nil
	}
	err = res.Err

	s.logger.Error().Err(err).Str("query", key).Str("operation", op).Msg("provider lookup failed")
	if s.staleFor > 0 {
		if stale, ok := cache.within(key, s.staleFor); ok {
			s.logger.Warn().Str("query", key).Str("operation", op).Msg("serving stale weather after provider error")
			return stale, nil
		}
	}
	return zero, err
}

// InvalidateCache clears all cached data.
func (s *Service) InvalidateCache() {
	s.current.reset()
	s.forecast.reset()
}

// CacheStats returns cache occupancy.
func (s *Service) CacheStats() CacheStats {
	stats := CacheStats{Provider: s.provider.Name()}
	stats.CurrentEntries, stats.CurrentFreshEntries = s.current.counts()
	stats.ForecastEntries, stats.ForecastFreshEntries = s.forecast.counts()
	return stats
}

// CacheStats contains cache statistics.
type CacheStats struct {
	CurrentEntries       int    `json:"currentEntries"`
	CurrentFreshEntries  int    `json:"currentFreshEntries"`
	ForecastEntries      int    `json:"forecastEntries"`
	ForecastFreshEntries int    `json:"forecastFreshEntries"`
	Provider             string `json:"provider"`
}

// normalizeQuery trims and lower-cases a location query for cache keys.
func normalizeQuery(query string) (string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", ErrInvalidQuery
	}
	return q, nil
}

// CoordinatesQuery formats a lat/lon pair the way the provider accepts it.
func CoordinatesQuery(lat, lon float64) (string, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return "", ErrInvalidCoordinates
	}
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64), nil
}
