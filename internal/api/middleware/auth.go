package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/breezy/breezy/internal/api/models"
	"github.com/breezy/breezy/internal/auth"
)

type sessionIDKey struct{}

// TokenValidator validates session tokens. *auth.JWTService satisfies it.
type TokenValidator interface {
	ValidateSessionToken(token string) (*auth.SessionClaims, error)
}

// challenge is a rejected credential: the detail for the problem body and
// the RFC 6750 error code for WWW-Authenticate, empty when no token was
// presented at all.
type challenge struct {
	detail string
	code   string
}

// SessionAuth requires a bearer session token and stores its session ID in
// the request context for handlers and BySession rate limits.
func SessionAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, rejected := bearerToken(r.Header.Get("Authorization"))
			if rejected != nil {
				unauthorized(w, r, *rejected)
				return
			}

			claims, err := tokens.ValidateSessionToken(token)
			if err != nil {
				unauthorized(w, r, tokenChallenge(err))
				return
			}

			annotateSession(r.Context(), claims.SessionID)
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), claims.SessionID)))
		})
	}
}

// bearerToken extracts the token from an Authorization header. The scheme
// is matched case-insensitively.
func bearerToken(header string) (string, *challenge) {
	if header == "" {
		return "", &challenge{detail: "missing authorization header"}
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", &challenge{detail: "invalid authorization header format", code: "invalid_request"}
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", &challenge{detail: "missing bearer token", code: "invalid_request"}
	}
	return token, nil
}

func tokenChallenge(err error) challenge {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return challenge{detail: "session token has expired", code: "invalid_token"}
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingSession):
		return challenge{detail: "invalid session token", code: "invalid_token"}
	default:
		return challenge{detail: "authentication failed", code: "invalid_token"}
	}
}

// unauthorized writes the 401 problem directly; the response package
// imports this one.
func unauthorized(w http.ResponseWriter, r *http.Request, c challenge) {
	header := `Bearer realm="breezy"`
	if c.code != "" {
		header += fmt.Sprintf(`, error=%q`, c.code)
	}
	w.Header().Set("WWW-Authenticate", header)

	models.New(models.KindUnauthorized, GetRequestID(r.Context()), c.detail).
		WithInstance(r.URL.Path).
		Write(w)
}

// WithSessionID returns a context carrying the authenticated session ID.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// GetSessionID returns the authenticated session ID, or "" before
// SessionAuth has run.
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}
