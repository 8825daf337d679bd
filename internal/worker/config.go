// Package worker runs background jobs that keep live dashboard sessions
// current.
package worker

import (
	"time"
)

// RefreshConfig holds configuration for the session refresh job.
type RefreshConfig struct {
	// Concurrency is the number of sessions refreshed at once.
	// Default: 3
	Concurrency int

	// Timeout bounds each session refresh.
	// Default: 30 seconds
	Timeout time.Duration

	// SweepIdle evicts idle sessions before refreshing.
	// Default: true
	SweepIdle bool

	// ProbeQuery is fetched by the health check job.
	// Default: "Colombo"
	ProbeQuery string
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Concurrency: 3,
		Timeout:     30 * time.Second,
		SweepIdle:   true,
		ProbeQuery:  "Colombo",
	}
}

// withDefaults fills zero fields from DefaultRefreshConfig. SweepIdle is
// left as given.
func (c RefreshConfig) withDefaults() RefreshConfig {
	def := DefaultRefreshConfig()
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.ProbeQuery == "" {
		c.ProbeQuery = def.ProbeQuery
	}
	return c
}
