// Package session holds per-browser dashboard state and is the only place
// that state changes.
package session

import (
	"errors"
	"time"

	"github.com/breezy/breezy/internal/forecast"
	"github.com/breezy/breezy/internal/weather"
)

// Session errors.
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionExists       = errors.New("session already exists")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrSuperseded          = errors.New("superseded by a newer request")
)

// User-facing messages stored in State.Error.
const (
	MsgFetchFailed         = "Failed to fetch weather data"
	MsgLocationNotFound    = "No matching location found"
	MsgLocationUnavailable = "Unable to retrieve your location"
	MsgTimedOut            = "The weather service took too long to respond"
)

// State is one dashboard session. Snapshot, Forecast and Extended are
// replaced wholesale by fetches and never modified in place.
type State struct {
	ID    string
	Query string

	Snapshot *weather.Snapshot
	Forecast *weather.Forecast
	Extended *forecast.Extended

	Unit  weather.Unit
	Theme weather.Theme

	Loading bool
	Error   string

	// Seq is the highest request id issued for this session. Only the
	// response carrying this id may apply.
	Seq uint64

	CreatedAt  time.Time
	UpdatedAt  time.Time
	FetchedAt  time.Time
	AccessedAt time.Time
}

// HasData reports whether a fetch has succeeded at least once.
func (s *State) HasData() bool {
	return s.Snapshot != nil && s.Extended != nil
}

// clone returns a shallow copy; payload pointers are immutable.
func (s *State) clone() *State {
	cpy := *s
	return &cpy
}
