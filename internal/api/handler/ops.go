// Package handler provides HTTP handlers for the Breezy API.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/breezy/breezy/internal/api/models"
	"github.com/breezy/breezy/internal/api/response"
	"github.com/breezy/breezy/internal/provider/resilience"
	"github.com/breezy/breezy/internal/session"
	"github.com/breezy/breezy/internal/weather"
	"github.com/breezy/breezy/internal/worker"
)

// CacheStatter reports weather cache occupancy. *weather.Service satisfies it.
type CacheStatter interface {
	CacheStats() weather.CacheStats
}

// SessionLister lists live sessions. *session.Service satisfies it.
type SessionLister interface {
	Sessions(ctx context.Context) ([]*session.State, error)
}

// RefreshStatter reports background refresh progress. *worker.RefreshJob
// satisfies it.
type RefreshStatter interface {
	Stats() worker.Stats
}

// OpsConfig holds the dependencies of OpsHandler. All but the build info
// are optional.
type OpsConfig struct {
	Version   string
	BuildTime string
	Registry  *resilience.Registry
	Cache     CacheStatter
	Sessions  SessionLister
	Refresh   RefreshStatter
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsConfig
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.cfg.Version,
			"buildTime": h.cfg.BuildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The service is
// not ready while any provider circuit is open.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.cfg.Registry != nil {
		if open := h.cfg.Registry.Open(); len(open) > 0 {
			response.ServiceUnavailable(w, r, fmt.Sprintf("provider %s circuit is open", strings.Join(open, ", ")))
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(time.Now()),
		Subsystems: []models.SubsystemStatus{},
		Providers:  []models.ProviderStatus{},
	}

	if h.cfg.Registry != nil {
		for _, ph := range h.cfg.Registry.Snapshot() {
			ps := toProviderStatus(ph)
			status.Providers = append(status.Providers, ps)
			status.Status = worse(status.Status, ps.Status)
		}
	}

	if h.cfg.Sessions != nil {
		sub := models.SubsystemStatus{Name: "sessions", Status: models.HealthStatusOK}
		states, err := h.cfg.Sessions.Sessions(r.Context())
		if err != nil {
			detail := err.Error()
			sub.Status, sub.Detail = models.HealthStatusFail, &detail
		} else {
			detail := fmt.Sprintf("%d live", len(states))
			sub.Detail = &detail
		}
		status.Subsystems = append(status.Subsystems, sub)
		status.Status = worse(status.Status, sub.Status)
	}

	if h.cfg.Cache != nil {
		cs := h.cfg.Cache.CacheStats()
		detail := fmt.Sprintf("%s: %d/%d current fresh, %d/%d forecast fresh",
			cs.Provider, cs.CurrentFreshEntries, cs.CurrentEntries,
			cs.ForecastFreshEntries, cs.ForecastEntries)
		status.Subsystems = append(status.Subsystems, models.SubsystemStatus{
			Name:   "weather-cache",
			Status: models.HealthStatusOK,
			Detail: &detail,
		})
	}

	if h.cfg.Refresh != nil {
		status.Refresh = toRefreshStatus(h.cfg.Refresh.Stats())
	}

	response.JSON(w, r, http.StatusOK, status)
}

func toProviderStatus(ph resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:            ph.Name,
		Status:              models.HealthStatusOK,
		CircuitState:        ph.CircuitState.String(),
		ConsecutiveFailures: ph.Counts.ConsecutiveFailures,
	}
	switch {
	case ph.IsUnhealthy():
		ps.Status = models.HealthStatusFail
	case ph.IsDegraded():
		ps.Status = models.HealthStatusDegraded
	}
	ps.LastSuccessAt = models.TimestampPtr(ph.LastSuccessAt)
	ps.LastFailureAt = models.TimestampPtr(ph.LastFailureAt)
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}
	return ps
}

func toRefreshStatus(s worker.Stats) *models.RefreshStatus {
	rs := &models.RefreshStatus{
		DurationMs: s.LastRunDuration.Milliseconds(),
		TotalRuns:  s.TotalRuns,
	}
	rs.LastRunAt = models.TimestampPtr(s.LastRefreshAt)
	if last := s.Last; last != nil {
		rs.SessionsTotal = last.SessionsTotal
		rs.QueriesTotal = last.QueriesTotal
		rs.Refreshed = last.Refreshed
		rs.Failed = last.Failed
		rs.SessionsEvicted = last.Evicted
	}
	return rs
}

// worse returns the more severe of two health states.
func worse(a, b models.HealthStatus) models.HealthStatus {
	rank := map[models.HealthStatus]int{
		models.HealthStatusOK:       0,
		models.HealthStatusDegraded: 1,
		models.HealthStatusFail:     2,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
