package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/breezy/breezy/internal/api/models"
)

// RateLimit is a fixed budget of requests per sliding window.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// Budgets per endpoint category.
var (
	// SessionCreateRateLimit covers session creation.
	SessionCreateRateLimit = RateLimit{Requests: 10, Window: time.Minute}

	// LookupRateLimit covers search and locate, which always reach the
	// weather provider.
	LookupRateLimit = RateLimit{Requests: 30, Window: time.Minute}

	// StandardRateLimit covers everything else.
	StandardRateLimit = RateLimit{Requests: 100, Window: time.Minute}
)

func (l RateLimit) String() string {
	return fmt.Sprintf("%d/%s", l.Requests, l.Window)
}

// ByIP limits each client address. chi's RealIP must run first for
// forwarded addresses to count.
func (l RateLimit) ByIP() func(http.Handler) http.Handler {
	return l.limiter(httprate.KeyByRealIP)
}

// BySession limits each authenticated session wherever it connects from,
// falling back to the client address before SessionAuth has run.
func (l RateLimit) BySession() func(http.Handler) http.Handler {
	return l.limiter(func(r *http.Request) (string, error) {
		if id := GetSessionID(r.Context()); id != "" {
			return "session:" + id, nil
		}
		return httprate.KeyByRealIP(r)
	})
}

func (l RateLimit) limiter(key httprate.KeyFunc) func(http.Handler) http.Handler {
	// httprate does not expose when the window resets, so the whole window
	// is advertised.
	retryAfter := int(l.Window / time.Second)

	return httprate.Limit(l.Requests, l.Window,
		httprate.WithKeyFuncs(key),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			models.New(models.KindTooManyRequests, GetRequestID(r.Context()),
				"Rate limit exceeded. Please try again later.").
				WithInstance(r.URL.Path).
				WithRetryAfter(retryAfter).
				Write(w)
		}),
	)
}
