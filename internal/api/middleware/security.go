package middleware

import (
	"net/http"

	"github.com/breezy/breezy/internal/api/models"
)

// securityHeaders are set on every response. Responses carry per-session
// weather and location data, so nothing may be cached by intermediaries.
var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "geolocation=(), camera=(), microphone=()"},
	{"Cache-Control", "no-store"},
}

const hstsValue = "max-age=31536000; includeSubDomains"

// SecurityHeaders adds browser hardening headers to all responses.
// Strict-Transport-Security is only sent on HTTPS requests, where browsers
// honour it.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		if scheme(r) == "https" {
			h.Set("Strict-Transport-Security", hstsValue)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTLS returns middleware that rejects plain-HTTP requests when
// enabled. It checks the X-Forwarded-Proto header set by load balancers;
// requests without the header are allowed.
func RequireTLS(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			proto := r.Header.Get("X-Forwarded-Proto")
			if r.TLS == nil && proto != "" && proto != "https" {
				models.New(models.KindTLSRequired, GetRequestID(r.Context()), "This endpoint requires HTTPS").
					WithInstance(r.URL.Path).
					Write(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
