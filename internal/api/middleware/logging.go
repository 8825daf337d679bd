package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// logFieldsKey carries fields that inner middleware learn after the
// logger has wrapped the request.
type logFieldsKey struct{}

type logFields struct {
	sessionID string
}

func withLogFields(ctx context.Context) (context.Context, *logFields) {
	f := &logFields{}
	return context.WithValue(ctx, logFieldsKey{}, f), f
}

// annotateSession records the session on the enclosing request log line
// and on the request span.
func annotateSession(ctx context.Context, id string) {
	if f, ok := ctx.Value(logFieldsKey{}).(*logFields); ok {
		f.sessionID = id
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(sessionIDAttr, id))
}

// Logger writes one line per request once the handler returns. Trace and
// span IDs are included when a span is active so log lines join up with
// traces.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)
			ctx, fields := withLogFields(r.Context())

			next.ServeHTTP(rec, r.WithContext(ctx))

			event := levelFor(log, rec.status).
				Str("request_id", GetRequestID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Str("session_id", fields.sessionID).
				Int("status", rec.status).
				Int64("bytes", rec.written).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent())

			if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
				event = event.
					Str("trace_id", sc.TraceID().String()).
					Str("span_id", sc.SpanID().String())
			}
			event.Msg("request completed")
		})
	}
}

// levelFor logs server errors at error and client errors at warn.
func levelFor(log zerolog.Logger, status int) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return log.Error()
	case status >= http.StatusBadRequest:
		return log.Warn()
	}
	return log.Info()
}

// routePattern returns the matched chi route, or the raw path outside a
// chi router or before routing completed.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
