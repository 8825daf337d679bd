package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/breezy/breezy/internal/session"
	"github.com/breezy/breezy/internal/weather"
)

const tracerName = "github.com/breezy/breezy/internal/worker"

// Sessions is the slice of the session service the refresh job needs.
// *session.Service satisfies it.
type Sessions interface {
	Sessions(ctx context.Context) ([]*session.State, error)
	Refresh(ctx context.Context, id string) (*session.State, error)
	Sweep(ctx context.Context) (int, error)
}

// Probe fetches current conditions for the health check job.
// *weather.Service satisfies it.
type Probe interface {
	GetCurrent(ctx context.Context, query string) (*weather.Snapshot, error)
}

// RefreshJob re-fetches the last query of every live session.
type RefreshJob struct {
	config   RefreshConfig
	logger   zerolog.Logger
	sessions Sessions
	probe    Probe

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalRuns       int64
	TotalRefreshed  int64
	TotalFailed     int64
	TotalEvicted    int64
	LastRun         *RefreshResult
	LastRefreshAt   time.Time
	TotalDuration   time.Duration
	LastRunDuration time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config   RefreshConfig
	Logger   zerolog.Logger
	Sessions Sessions

	// Probe is optional; without it the health check only lists sessions.
	Probe Probe
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	return &RefreshJob{
		config:   cfg.Config.withDefaults(),
		logger:   cfg.Logger,
		sessions: cfg.Sessions,
		probe:    cfg.Probe,
		metrics:  &RefreshMetrics{},
	}
}

// RefreshResult contains the result of one refresh run.
type RefreshResult struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	SessionsTotal int
	// QueriesTotal counts distinct queries, compared case-insensitively.
	// Sessions sharing a query hit the weather cache after the first.
	QueriesTotal int
	Refreshed    int
	Failed       int
	// Skipped counts sessions deleted, already loading, or re-fetched by
	// their owner while the run was in flight.
	Skipped int
	Evicted int
	Errors  []RefreshError
}

// RefreshError represents an error during refresh.
type RefreshError struct {
	SessionID string
	Query     string
	Error     string
}

// Run sweeps idle sessions, then refreshes the rest with a bounded pool.
func (j *RefreshJob) Run(ctx context.Context) (*RefreshResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "worker.session_refresh")
	defer span.End()

	startTime := time.Now()
	result := &RefreshResult{StartTime: startTime}

	if j.config.SweepIdle {
		n, err := j.sessions.Sweep(ctx)
		if err != nil {
			j.logger.Warn().Err(err).Msg("idle session sweep failed")
		}
		result.Evicted = n
	}

	states, err := j.sessions.Sessions(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing sessions")
		return nil, err
	}
	result.SessionsTotal = len(states)
	result.QueriesTotal = distinctQueries(states)

	j.logger.Info().
		Int("sessions", result.SessionsTotal).
		Int("queries", result.QueriesTotal).
		Int("concurrency", j.config.Concurrency).
		Msg("starting session refresh job")

	work := make(chan *session.State, len(states))
	results := make(chan itemResult, len(states))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, work, results)
		}()
	}

	for _, st := range states {
		work <- st
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	for ir := range results {
		switch {
		case ir.skipped:
			result.Skipped++
		case ir.err != nil:
			result.Failed++
			result.Errors = append(result.Errors, RefreshError{
				SessionID: ir.id,
				Query:     ir.query,
				Error:     ir.err.Error(),
			})
		default:
			result.Refreshed++
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	span.SetAttributes(
		attribute.Int("refresh.sessions", result.SessionsTotal),
		attribute.Int("refresh.queries", result.QueriesTotal),
		attribute.Int("refresh.refreshed", result.Refreshed),
		attribute.Int("refresh.failed", result.Failed),
		attribute.Int("refresh.skipped", result.Skipped),
		attribute.Int("refresh.evicted", result.Evicted),
	)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("refreshed", result.Refreshed).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Int("evicted", result.Evicted).
		Msg("session refresh job completed")

	return result, nil
}

type itemResult struct {
	id      string
	query   string
	skipped bool
	err     error
}

func (j *RefreshJob) refreshWorker(ctx context.Context, work <-chan *session.State, results chan<- itemResult) {
	for st := range work {
		select {
		case <-ctx.Done():
			results <- itemResult{id: st.ID, query: st.Query, err: ctx.Err()}
		default:
			results <- j.refreshSession(ctx, st)
		}
	}
}

func (j *RefreshJob) refreshSession(ctx context.Context, st *session.State) itemResult {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	res := itemResult{id: st.ID, query: st.Query}
	_, err := j.sessions.Refresh(ctx, st.ID)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSuperseded):
		res.skipped = true
	default:
		j.logger.Debug().
			Err(err).
			Str("session_id", st.ID).
			Str("query", st.Query).
			Msg("session refresh failed")
		res.err = err
	}
	return res
}

// HealthCheck fetches the probe query to verify provider connectivity.
func (j *RefreshJob) HealthCheck(ctx context.Context) error {
	if j.probe == nil {
		_, err := j.sessions.Sessions(ctx)
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()
	_, err := j.probe.GetCurrent(ctx, j.config.ProbeQuery)
	return err
}

// Start runs the job every interval until ctx is done. A non-positive
// interval disables the loop.
func (j *RefreshJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info().Dur("interval", interval).Msg("session refresh loop started")
	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("session refresh loop stopped")
			return
		case <-ticker.C:
			if _, err := j.Run(ctx); err != nil {
				j.logger.Error().Err(err).Msg("session refresh run failed")
			}
		}
	}
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.TotalRefreshed += int64(result.Refreshed)
	j.metrics.TotalFailed += int64(result.Failed)
	j.metrics.TotalEvicted += int64(result.Evicted)
	j.metrics.LastRun = result
	j.metrics.LastRefreshAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// Stats is a point-in-time copy of the refresh metrics.
type Stats struct {
	TotalRuns       int64
	TotalRefreshed  int64
	TotalFailed     int64
	TotalEvicted    int64
	LastRefreshAt   time.Time
	LastRunDuration time.Duration

	// Last holds the counts of the latest run; nil before the first run.
	Last *RefreshResult
}

// Stats returns a copy of the current metrics.
func (j *RefreshJob) Stats() Stats {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	s := Stats{
		TotalRuns:       j.metrics.TotalRuns,
		TotalRefreshed:  j.metrics.TotalRefreshed,
		TotalFailed:     j.metrics.TotalFailed,
		TotalEvicted:    j.metrics.TotalEvicted,
		LastRefreshAt:   j.metrics.LastRefreshAt,
		LastRunDuration: j.metrics.LastRunDuration,
	}
	if j.metrics.LastRun != nil {
		last := *j.metrics.LastRun
		last.Errors = append([]RefreshError(nil), last.Errors...)
		s.Last = &last
	}
	return s
}

// MetricsSnapshot returns the current metrics as log-friendly fields.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	s := j.Stats()
	return map[string]interface{}{
		"total_runs":        s.TotalRuns,
		"total_refreshed":   s.TotalRefreshed,
		"total_failed":      s.TotalFailed,
		"total_evicted":     s.TotalEvicted,
		"last_refresh_at":   s.LastRefreshAt,
		"last_run_duration": s.LastRunDuration.String(),
	}
}

func distinctQueries(states []*session.State) int {
	seen := make(map[string]struct{}, len(states))
	for _, st := range states {
		if q := strings.ToLower(strings.TrimSpace(st.Query)); q != "" {
			seen[q] = struct{}{}
		}
	}
	return len(seen)
}
