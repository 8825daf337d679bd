// Package resilience wraps outbound provider calls with a circuit breaker,
// bounded retries, outbound rate limiting and per-provider health tracking.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// CircuitBreakerConfig configures the breaker in front of one provider.
// Zero values fall back to DefaultCircuitBreakerConfig.
type CircuitBreakerConfig struct {
	Name string

	// MaxRequests is how many probes a half-open breaker lets through.
	MaxRequests uint32

	// Interval clears the closed-state counts periodically. Zero never
	// clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	ReadyToTrip   func(counts gobreaker.Counts) bool
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultCircuitBreakerConfig opens after five calls at a 50% failure rate
// and probes again after a minute.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:        name,
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: DefaultReadyToTrip,
	}
}

// DefaultReadyToTrip trips once at least 5 requests have been seen and half
// or more of them failed.
func DefaultReadyToTrip(counts gobreaker.Counts) bool {
	return counts.Requests >= 5 && counts.TotalFailures*2 >= counts.Requests
}

// LogStateChanges returns an OnStateChange hook that logs transitions,
// opening at warn.
func LogStateChanges(logger zerolog.Logger) func(string, gobreaker.State, gobreaker.State) {
	return func(name string, from, to gobreaker.State) {
		ev := logger.Info()
		if to == gobreaker.StateOpen {
			ev = logger.Warn()
		}
		ev.Str("provider", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("circuit breaker state changed")
	}
}

// countsAsSuccess keeps callers abandoning a request from tripping the
// breaker against a healthy provider.
func countsAsSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// NewCircuitBreaker builds a gobreaker breaker from cfg.
func NewCircuitBreaker[T any](cfg CircuitBreakerConfig) *gobreaker.CircuitBreaker[T] {
	def := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.ReadyToTrip == nil {
		cfg.ReadyToTrip = def.ReadyToTrip
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:          cfg.Name,
		MaxRequests:   cfg.MaxRequests,
		Interval:      cfg.Interval,
		Timeout:       cfg.Timeout,
		ReadyToTrip:   cfg.ReadyToTrip,
		OnStateChange: cfg.OnStateChange,
		IsSuccessful:  countsAsSuccess,
	})
}
