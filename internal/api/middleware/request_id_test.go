package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breezy/breezy/internal/api/middleware"
)

func TestRequestID_GeneratesNewID(t *testing.T) {
	var seen string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/ops/health", nil))

	assert.True(t, strings.HasPrefix(seen, "req_"), seen)
	assert.Equal(t, seen, w.Header().Get(middleware.RequestIDHeader))
}

func TestRequestID_ClientIDs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		keep bool
	}{
		{"plain", "abc-123_DEF.4", true},
		{"too long", strings.Repeat("a", 65), false},
		{"spaces", "abc 123", false},
		{"header injection", "abc\r\nSet-Cookie: x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(middleware.RequestIDHeader, tt.in)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			got := w.Header().Get(middleware.RequestIDHeader)
			if tt.keep {
				assert.Equal(t, tt.in, got)
			} else {
				assert.NotEqual(t, tt.in, got)
				assert.True(t, strings.HasPrefix(got, "req_"))
			}
		})
	}
}

func TestRequestID_UniqueIDs(t *testing.T) {
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		id := w.Header().Get(middleware.RequestIDHeader)
		require.False(t, ids[id], "duplicate request ID %s", id)
		ids[id] = true
	}
}

func TestWithRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, middleware.GetRequestID(req.Context()))

	ctx := middleware.WithRequestID(req.Context(), "refresh-1")
	assert.Equal(t, "refresh-1", middleware.GetRequestID(ctx))
}

func TestRecovery_WritesProblem(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := middleware.RequestID(middleware.Recovery(logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}),
	))

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/current", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-panic")
	req = req.WithContext(middleware.WithSessionID(req.Context(), "sess-1"))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, "req-panic", problem["traceId"])
	assert.Equal(t, "/v1/sessions/current", problem["instance"])

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "panic recovered", entry["message"])
	assert.Equal(t, "boom", entry["panic"])
	assert.Equal(t, "sess-1", entry["session_id"])
}

func TestRecovery_ReraisesAbortHandler(t *testing.T) {
	handler := middleware.Recovery(zerolog.Nop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}),
	)

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
