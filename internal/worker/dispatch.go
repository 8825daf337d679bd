package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

// Message errors.
var (
	ErrUnknownJob       = errors.New("unknown job type")
	ErrMalformedMessage = errors.New("malformed job message")
)

// Built-in job types.
const (
	JobSessionRefresh = "session_refresh"
	JobHealthCheck    = "health_check"
)

// JobMessage is the JSON envelope published to the job subscription.
type JobMessage struct {
	JobType string `json:"job_type"`
}

// Job runs one unit of background work.
type Job func(ctx context.Context) error

// Dispatcher maps job types to jobs.
type Dispatcher struct {
	jobs   map[string]Job
	logger zerolog.Logger
}

// NewDispatcher returns a dispatcher with the session refresh and health
// check jobs of refresh registered.
func NewDispatcher(refresh *RefreshJob, logger zerolog.Logger) *Dispatcher {
	d := &Dispatcher{jobs: map[string]Job{}, logger: logger}
	d.Register(JobSessionRefresh, func(ctx context.Context) error { return runRefresh(ctx, refresh, logger) })
	d.Register(JobHealthCheck, func(ctx context.Context) error {
		if err := refresh.HealthCheck(ctx); err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		return nil
	})
	return d
}

// Register binds jobType to job, replacing any earlier binding.
func (d *Dispatcher) Register(jobType string, job Job) {
	d.jobs[jobType] = job
}

// JobTypes returns the registered job types in order.
func (d *Dispatcher) JobTypes() []string {
	return slices.Sorted(maps.Keys(d.jobs))
}

// Dispatch decodes a JobMessage and runs its job.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) error {
	var msg JobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	job, ok := d.jobs[msg.JobType]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, msg.JobType)
	}

	start := time.Now()
	if err := job(ctx); err != nil {
		return err
	}
	d.logger.Info().
		Str("job_type", msg.JobType).
		Dur("duration", time.Since(start)).
		Msg("job completed")
	return nil
}

// runRefresh fails the job when more sessions failed than refreshed so the
// message is redelivered.
func runRefresh(ctx context.Context, job *RefreshJob, logger zerolog.Logger) error {
	result, err := job.Run(ctx)
	if err != nil {
		return fmt.Errorf("running session refresh: %w", err)
	}

	logger.Info().
		Fields(job.MetricsSnapshot()).
		Int("sessions", result.SessionsTotal).
		Int("refreshed", result.Refreshed).
		Int("failed", result.Failed).
		Msg("session refresh completed")

	if result.Failed > result.Refreshed {
		return fmt.Errorf("too many refresh failures: %d/%d", result.Failed, result.SessionsTotal)
	}
	return nil
}
