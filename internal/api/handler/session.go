package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/breezy/breezy/internal/api/middleware"
	"github.com/breezy/breezy/internal/api/models"
	"github.com/breezy/breezy/internal/api/response"
	"github.com/breezy/breezy/internal/session"
	"github.com/breezy/breezy/internal/weather"
)

// TokenIssuer signs session tokens. *auth.JWTService satisfies it.
type TokenIssuer interface {
	IssueSessionToken(sessionID string) (string, time.Time, error)
}

// SessionHandler handles session lifecycle and dashboard controls.
type SessionHandler struct {
	sessions *session.Service
	tokens   TokenIssuer
	logger   zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *session.Service, tokens TokenIssuer, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// Create handles POST /v1/sessions - start a session on the default location.
// A failed initial fetch is reported in the session's error field.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	st, err := h.sessions.Create(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create session")
		response.InternalError(w, r, "failed to create session")
		return
	}

	token, expiresAt, err := h.tokens.IssueSessionToken(st.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", st.ID).Msg("failed to issue session token")
		_ = h.sessions.Delete(r.Context(), st.ID)
		response.InternalError(w, r, "failed to issue session token")
		return
	}

	response.Created(w, r, "/v1/sessions/current", models.CreatedSession{
		Session:   toSession(st),
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: models.Timestamp(expiresAt),
	})
}

// Get handles GET /v1/sessions/current.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.sessions.Get(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toSession(st))
}

// Delete handles DELETE /v1/sessions/current.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), middleware.GetSessionID(r.Context())); err != nil {
		writeSessionError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

// Search handles POST /v1/sessions/current/search - load a new location.
func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "query", Message: "query is required", Code: "required"},
		})
		return
	}

	st, err := h.sessions.Fetch(r.Context(), middleware.GetSessionID(r.Context()), req.Query)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toSession(st))
}

// Locate handles POST /v1/sessions/current/locate. Coordinates in the body
// take precedence; an empty body locates the caller by IP address.
func (h *SessionHandler) Locate(w http.ResponseWriter, r *http.Request) {
	var req models.LocateRequest
	if err := decodeJSON(r, &req, true); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if fieldErrors := validateLocate(&req); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "validation failed", fieldErrors)
		return
	}

	var locator session.Locator
	if req.Lat != nil {
		locator = session.Coordinates{Lat: *req.Lat, Lon: *req.Lon}
	} else {
		locator = session.ClientIP(clientIP(r))
	}

	st, err := h.sessions.Locate(r.Context(), middleware.GetSessionID(r.Context()), locator)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toSession(st))
}

// ToggleUnit handles POST /v1/sessions/current/unit:toggle.
func (h *SessionHandler) ToggleUnit(w http.ResponseWriter, r *http.Request) {
	st, err := h.sessions.ToggleUnit(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toSession(st))
}

// SetUnit handles PUT /v1/sessions/current/unit.
func (h *SessionHandler) SetUnit(w http.ResponseWriter, r *http.Request) {
	var req models.UnitRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	unit, err := weather.ParseUnit(req.Unit)
	if err != nil {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "unit", Message: "unit must be celsius or fahrenheit", Code: "invalid"},
		})
		return
	}

	st, err := h.sessions.SetUnit(r.Context(), middleware.GetSessionID(r.Context()), unit)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toSession(st))
}

// ToggleTheme handles POST /v1/sessions/current/theme:toggle.
func (h *SessionHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	st, err := h.sessions.ToggleTheme(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toSession(st))
}

// SetTheme handles PUT /v1/sessions/current/theme.
func (h *SessionHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req models.ThemeRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	theme, err := weather.ParseTheme(req.Theme)
	if err != nil {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "theme", Message: "theme must be light or dark", Code: "invalid"},
		})
		return
	}

	st, err := h.sessions.SetTheme(r.Context(), middleware.GetSessionID(r.Context()), theme)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toSession(st))
}

func validateLocate(req *models.LocateRequest) []models.FieldError {
	var fieldErrors []models.FieldError
	if (req.Lat == nil) != (req.Lon == nil) {
		return append(fieldErrors, models.FieldError{
			Field:   "lat",
			Message: "lat and lon must be provided together",
			Code:    "required",
		})
	}
	if req.Lat == nil {
		return nil
	}
	if *req.Lat < -90 || *req.Lat > 90 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "lat",
			Message: "latitude must be between -90 and 90",
			Code:    "out_of_range",
		})
	}
	if *req.Lon < -180 || *req.Lon > 180 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "lon",
			Message: "longitude must be between -180 and 180",
			Code:    "out_of_range",
		})
	}
	return fieldErrors
}

// writeSessionError maps session and weather errors to problems.
func writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		response.NotFound(w, r, "session not found or expired")
	case errors.Is(err, session.ErrSuperseded):
		response.Conflict(w, r, "a newer request for this session replaced this one")
	case errors.Is(err, weather.ErrInvalidQuery), errors.Is(err, weather.ErrInvalidCoordinates):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, session.ErrLocationUnavailable):
		response.Unprocessable(w, r, session.MsgLocationUnavailable)
	case errors.Is(err, weather.ErrLocationNotFound):
		response.Unprocessable(w, r, session.Message(err))
	default:
		response.BadGateway(w, r, session.Message(err))
	}
}

// decodeJSON decodes the request body into v. With allowEmpty an absent
// body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// clientIP returns the caller's address without the port. RemoteAddr has
// already been rewritten by the RealIP middleware when proxied.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
