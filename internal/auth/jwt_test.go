package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breezy/breezy/internal/auth"
)

func newService(key, issuer, audience string) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey: key,
		Issuer:     issuer,
		Audience:   audience,
	})
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := newService("test-secret-key-for-testing-only", "breezy", "breezy-dashboard")

	token, expiresAt, err := svc.IssueSessionToken("sess-123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(auth.DefaultTokenExpiry), expiresAt, 5*time.Second)

	claims, err := svc.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-123", claims.SessionID)
	assert.Equal(t, "sess-123", claims.Subject)
	assert.Equal(t, "breezy", claims.Issuer)
}

func TestJWTService_RejectsEmptySession(t *testing.T) {
	svc := newService("k", "breezy", "breezy-dashboard")
	_, _, err := svc.IssueSessionToken("")
	assert.ErrorIs(t, err, auth.ErrMissingSession)
}

func TestJWTService_InvalidToken(t *testing.T) {
	svc := newService("test-secret-key-for-testing-only", "breezy", "breezy-dashboard")

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.valid.jwt"},
		{"invalid base64", "xxx.yyy.zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateSessionToken(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestJWTService_Mismatches(t *testing.T) {
	issuer := newService("key-one", "breezy", "breezy-dashboard")
	token, _, err := issuer.IssueSessionToken("sess-1")
	require.NoError(t, err)

	tests := []struct {
		name string
		svc  *auth.JWTService
	}{
		{"wrong signing key", newService("key-two", "breezy", "breezy-dashboard")},
		{"wrong issuer", newService("key-one", "other", "breezy-dashboard")},
		{"wrong audience", newService("key-one", "breezy", "other")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.ValidateSessionToken(token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestJWTService_Expired(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := issued
	svc := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "k",
		Issuer:     "breezy",
		Audience:   "breezy-dashboard",
		Expiry:     time.Hour,
		Now:        func() time.Time { return clock },
	})

	token, expiresAt, err := svc.IssueSessionToken("sess-1")
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), expiresAt)

	clock = issued.Add(2 * time.Hour)
	_, err = svc.ValidateSessionToken(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestJWTService_RejectsTokenWithoutSessionID(t *testing.T) {
	claims := auth.SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "breezy",
		Audience:  jwt.ClaimStrings{"breezy-dashboard"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = newService("k", "breezy", "breezy-dashboard").ValidateSessionToken(token)
	assert.ErrorIs(t, err, auth.ErrMissingSession)
}
