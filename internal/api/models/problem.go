package models

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Problem is an RFC 7807 error body, served as application/problem+json.
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail explains this occurrence. For provider failures it is the
	// message the dashboard shows verbatim.
	Detail string `json:"detail,omitempty"`

	// Instance is the request path that produced the problem.
	Instance string `json:"instance,omitempty"`

	// TraceID is the request ID, echoed in X-Request-Id.
	TraceID string `json:"traceId"`

	// RetryAfter, in seconds, is also sent as the Retry-After header.
	RetryAfter int `json:"retryAfter,omitempty"`

	// Errors contains structured field validation errors.
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Problem type URIs.
const (
	ProblemTypeValidation           = "https://breezy.dev/problems/validation-error"
	ProblemTypeUnauthorized         = "https://breezy.dev/problems/unauthorized"
	ProblemTypeForbidden            = "https://breezy.dev/problems/tls-required"
	ProblemTypeNotFound             = "https://breezy.dev/problems/not-found"
	ProblemTypeConflict             = "https://breezy.dev/problems/conflict"
	ProblemTypeUnsupportedMediaType = "https://breezy.dev/problems/unsupported-media-type"
	ProblemTypeUnprocessable        = "https://breezy.dev/problems/unprocessable"
	ProblemTypeTooManyRequests      = "https://breezy.dev/problems/too-many-requests"
	ProblemTypeInternal             = "https://breezy.dev/problems/internal-error"
	ProblemTypeUpstream             = "https://breezy.dev/problems/upstream-error"
	ProblemTypeUnavailable          = "https://breezy.dev/problems/service-unavailable"
)

// Kind pairs a problem type with its title and status.
type Kind struct {
	Type   string
	Title  string
	Status int
}

// Problem kinds served by the API.
var (
	KindValidation       = Kind{ProblemTypeValidation, "Validation error", http.StatusBadRequest}
	KindUnauthorized     = Kind{ProblemTypeUnauthorized, "Unauthorized", http.StatusUnauthorized}
	KindTLSRequired      = Kind{ProblemTypeForbidden, "TLS required", http.StatusForbidden}
	KindNotFound         = Kind{ProblemTypeNotFound, "Not found", http.StatusNotFound}
	KindConflict         = Kind{ProblemTypeConflict, "Conflict", http.StatusConflict}
	KindUnsupportedMedia = Kind{ProblemTypeUnsupportedMediaType, "Unsupported media type", http.StatusUnsupportedMediaType}
	KindUnprocessable    = Kind{ProblemTypeUnprocessable, "Unprocessable request", http.StatusUnprocessableEntity}
	KindTooManyRequests  = Kind{ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests}
	KindInternal         = Kind{ProblemTypeInternal, "Internal server error", http.StatusInternalServerError}
	KindUpstream         = Kind{ProblemTypeUpstream, "Weather provider error", http.StatusBadGateway}
	KindUnavailable      = Kind{ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable}
)

// New creates a Problem of the given kind.
func New(kind Kind, traceID, detail string) *Problem {
	return &Problem{
		Type:    kind.Type,
		Title:   kind.Title,
		Status:  kind.Status,
		Detail:  detail,
		TraceID: traceID,
	}
}

// NewProblem creates a Problem from its parts.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return New(Kind{Type: problemType, Title: title, Status: status}, traceID, "")
}

// WithDetail adds a detail message to the Problem.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithInstance adds the request instance URI to the Problem.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors adds field errors to the Problem.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// WithRetryAfter sets the retry hint in seconds. Values below one are
// raised to one.
func (p *Problem) WithRetryAfter(seconds int) *Problem {
	p.RetryAfter = max(seconds, 1)
	return p
}

// Error makes a Problem usable as an error value.
func (p *Problem) Error() string {
	if p.Detail == "" {
		return fmt.Sprintf("%d %s", p.Status, p.Title)
	}
	return fmt.Sprintf("%d %s: %s", p.Status, p.Title, p.Detail)
}

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		h.Set("X-Request-Id", p.TraceID)
	}
	if p.RetryAfter > 0 {
		h.Set("Retry-After", strconv.Itoa(p.RetryAfter))
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	return New(KindValidation, traceID, detail).WithErrors(errors)
}

func NewUnauthorized(traceID, detail string) *Problem {
	return New(KindUnauthorized, traceID, detail)
}

func NewNotFound(traceID, detail string) *Problem {
	return New(KindNotFound, traceID, detail)
}

// NewConflict is used when a newer fetch superseded the one being answered.
func NewConflict(traceID, detail string) *Problem {
	return New(KindConflict, traceID, detail)
}

// NewUnprocessable is used for well-formed requests that cannot be served,
// such as a position that could not be determined.
func NewUnprocessable(traceID, detail string) *Problem {
	return New(KindUnprocessable, traceID, detail)
}

func NewTooManyRequests(traceID, detail string) *Problem {
	return New(KindTooManyRequests, traceID, detail)
}

func NewInternalError(traceID, detail string) *Problem {
	return New(KindInternal, traceID, detail)
}

// NewBadGateway reports a weather provider failure. Detail carries the
// message shown to the user.
func NewBadGateway(traceID, detail string) *Problem {
	return New(KindUpstream, traceID, detail)
}

func NewServiceUnavailable(traceID, detail string) *Problem {
	return New(KindUnavailable, traceID, detail)
}
