// Package response writes JSON bodies and Problem errors for API handlers.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/breezy/breezy/internal/api/middleware"
	"github.com/breezy/breezy/internal/api/models"
)

func correlate(w http.ResponseWriter, r *http.Request) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set(middleware.RequestIDHeader, requestID)
	}
}

// JSON writes data as a JSON body with the given status. A nil data writes
// headers only.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	correlate(w, r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Created writes a 201 with an optional Location header.
func Created(w http.ResponseWriter, r *http.Request, location string, data any) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	JSON(w, r, http.StatusCreated, data)
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter, r *http.Request) {
	correlate(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// Error writes problem with its Instance set to the request path.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.WithInstance(r.URL.Path).Write(w)
}

func problem(w http.ResponseWriter, r *http.Request, kind models.Kind, detail string) {
	Error(w, r, models.New(kind, middleware.GetRequestID(r.Context()), detail))
}

// BadRequest writes a 400 with optional field errors.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errors []models.FieldError) {
	Error(w, r, models.NewBadRequest(middleware.GetRequestID(r.Context()), detail, errors))
}

func Unauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	problem(w, r, models.KindUnauthorized, detail)
}

func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	problem(w, r, models.KindNotFound, detail)
}

func Conflict(w http.ResponseWriter, r *http.Request, detail string) {
	problem(w, r, models.KindConflict, detail)
}

// Unprocessable writes a 422 for well-formed requests that cannot be served,
// such as an unknown client position.
func Unprocessable(w http.ResponseWriter, r *http.Request, detail string) {
	problem(w, r, models.KindUnprocessable, detail)
}

func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	problem(w, r, models.KindInternal, detail)
}

// BadGateway writes a 502 for weather provider failures. Detail is shown to
// users as-is.
func BadGateway(w http.ResponseWriter, r *http.Request, detail string) {
	problem(w, r, models.KindUpstream, detail)
}

// ServiceUnavailable writes a 503 asking clients to retry after 30 seconds.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.New(models.KindUnavailable, middleware.GetRequestID(r.Context()), detail).WithRetryAfter(30))
}
