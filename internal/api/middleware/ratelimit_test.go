package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/breezy/breezy/internal/api/middleware"
)

type limitProbe struct {
	handler http.Handler
}

func newLimitProbe(mw func(http.Handler) http.Handler) limitProbe {
	return limitProbe{handler: middleware.RequestID(mw(okHandler()))}
}

func (p limitProbe) hit(ip, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/current", http.NoBody)
	req.RemoteAddr = ip
	if sessionID != "" {
		req = req.WithContext(middleware.WithSessionID(req.Context(), sessionID))
	}
	rec := httptest.NewRecorder()
	p.handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_ByIP(t *testing.T) {
	probe := newLimitProbe(middleware.RateLimit{Requests: 3, Window: time.Minute}.ByIP())

	for i := range 3 {
		assert.Equal(t, http.StatusOK, probe.hit("10.0.0.1:1234", "").Code, "request %d", i+1)
	}

	rec := probe.hit("10.0.0.1:1234", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, probe.hit("10.0.0.2:1234", "").Code, "other addresses keep their budget")
}

func TestRateLimit_BySession(t *testing.T) {
	probe := newLimitProbe(middleware.RateLimit{Requests: 2, Window: time.Minute}.BySession())

	// One session roaming across addresses shares a budget.
	assert.Equal(t, http.StatusOK, probe.hit("192.168.7.1:1", "sess-a").Code)
	assert.Equal(t, http.StatusOK, probe.hit("192.168.7.2:1", "sess-a").Code)
	assert.Equal(t, http.StatusTooManyRequests, probe.hit("192.168.7.3:1", "sess-a").Code)

	assert.Equal(t, http.StatusOK, probe.hit("192.168.7.1:1", "sess-b").Code)

	// Anonymous requests fall back to the address.
	assert.Equal(t, http.StatusOK, probe.hit("192.168.7.9:1", "").Code)
	assert.Equal(t, http.StatusOK, probe.hit("192.168.7.9:1", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, probe.hit("192.168.7.9:1", "").Code)
}

func TestRateLimit_ProblemResponse(t *testing.T) {
	probe := newLimitProbe(middleware.RateLimit{Requests: 1, Window: 10 * time.Second}.ByIP())

	probe.hit("203.0.113.1:1", "")
	rec := probe.hit("203.0.113.1:1", "")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "10", rec.Header().Get("Retry-After"))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	body := rec.Body.String()
	assert.Contains(t, body, "too-many-requests")
	assert.Contains(t, body, "Rate limit exceeded")
	assert.Contains(t, body, `"instance":"/v1/sessions/current"`)
	assert.Contains(t, body, `"retryAfter":10`)
}

func TestRateLimit_Budgets(t *testing.T) {
	assert.Equal(t, "10/1m0s", middleware.SessionCreateRateLimit.String())
	assert.Equal(t, "30/1m0s", middleware.LookupRateLimit.String())
	assert.Equal(t, "100/1m0s", middleware.StandardRateLimit.String())
}
