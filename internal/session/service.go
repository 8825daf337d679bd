package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/breezy/breezy/internal/forecast"
	"github.com/breezy/breezy/internal/weather"
)

// Defaults applied to new sessions.
const (
	DefaultQuery         = "Colombo"
	DefaultUnit          = weather.Celsius
	DefaultTheme         = weather.ThemeDark
	DefaultLocateTimeout = 5 * time.Second
)

// WeatherSource supplies current conditions and forecasts by query.
// *weather.Service satisfies it.
type WeatherSource interface {
	GetCurrent(ctx context.Context, query string) (*weather.Snapshot, error)
	GetForecast(ctx context.Context, query string) (*weather.Forecast, error)
}

// ServiceConfig holds configuration for the session service.
type ServiceConfig struct {
	Repository  Repository
	Weather     WeatherSource
	Synthesizer *forecast.Synthesizer
	Logger      zerolog.Logger

	// DefaultQuery is fetched when a session is created (default: Colombo).
	DefaultQuery string

	// LocateTimeout bounds how long Locate waits for a position (default: 5s).
	LocateTimeout time.Duration

	// Now overrides the clock (tests).
	Now func() time.Time
}

// Service is the single entry point for session changes.
type Service struct {
	repo          Repository
	weather       WeatherSource
	synth         *forecast.Synthesizer
	logger        zerolog.Logger
	defaultQuery  string
	locateTimeout time.Duration
	now           func() time.Time
}

// NewService creates a new session service.
func NewService(cfg ServiceConfig) *Service {
	query := strings.TrimSpace(cfg.DefaultQuery)
	if query == "" {
		query = DefaultQuery
	}
	timeout := cfg.LocateTimeout
	if timeout <= 0 {
		timeout = DefaultLocateTimeout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	synth := cfg.Synthesizer
	if synth == nil {
		synth = forecast.NewSynthesizer(forecast.SynthesizerConfig{})
	}

	return &Service{
		repo:          cfg.Repository,
		weather:       cfg.Weather,
		synth:         synth,
		logger:        cfg.Logger,
		defaultQuery:  query,
		locateTimeout: timeout,
		now:           now,
	}
}

// Calendar returns the calendar used for civil dates.
func (s *Service) Calendar() forecast.Calendar {
	return s.synth.Calendar()
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// Create starts a session with default unit and theme and fetches the
// default location. A failed initial fetch is recorded on the session and
// does not fail creation.
func (s *Service) Create(ctx context.Context) (*State, error) {
	now := s.now()
	st := &State{
		ID:        uuid.New().String(),
		Query:     s.defaultQuery,
		Unit:      DefaultUnit,
		Theme:     DefaultTheme,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Info().Str("session_id", st.ID).Msg("session created")

	fetched, err := s.Fetch(ctx, st.ID, s.defaultQuery)
	if fetched == nil {
		return nil, err
	}
	return fetched, nil
}

// Get returns a session.
func (s *Service) Get(ctx context.Context, id string) (*State, error) {
	return s.repo.Get(ctx, id)
}

// Delete ends a session.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	s.logger.Info().Str("session_id", id).Msg("session deleted")
	return nil
}

// Fetch loads current conditions and the forecast for query concurrently.
// The first failure cancels the other call. On failure the session keeps
// its previous data and records a user-facing message; the returned state
// reflects that. If a newer fetch was issued meanwhile, nothing is applied
// and ErrSuperseded is returned with the latest state.
func (s *Service) Fetch(ctx context.Context, id, query string) (*State, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, weather.ErrInvalidQuery
	}
	return s.fetch(ctx, id, query, false)
}

// fetch runs one sequenced load. A background load re-uses the stored
// query, yields to a load already in flight and leaves the idle clock alone.
func (s *Service) fetch(ctx context.Context, id, query string, background bool) (*State, error) {
	update := s.repo.Update
	if background {
		update = s.repo.Apply
	}

	var seq uint64
	if st, err := update(ctx, id, func(st *State) error {
		if background {
			if st.Loading {
				return ErrSuperseded
			}
			query = st.Query
		}
		if query == "" {
			return weather.ErrInvalidQuery
		}
		st.Seq++
		seq = st.Seq
		st.Loading = true
		return nil
	}); err != nil {
		if errors.Is(err, ErrSuperseded) {
			return st, err
		}
		return nil, err
	}

	snap, fc, fetchErr := s.fetchBoth(ctx, query)

	st, err := update(ctx, id, func(st *State) error {
		if st.Seq != seq {
			return ErrSuperseded
		}
		now := s.now()
		st.Loading = false
		st.UpdatedAt = now

		if fetchErr != nil {
			st.Error = Message(fetchErr)
			return nil
		}

		if st.Forecast != fc {
			ext := s.synth.Synthesize(fc.Days, now)
			st.Extended = &ext
		}
		st.Snapshot = snap
		st.Forecast = fc
		st.Query = query
		st.Error = ""
		st.FetchedAt = now
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSuperseded) {
			s.logger.Debug().
				Str("session_id", id).
				Uint64("request_seq", seq).
				Msg("discarding superseded weather response")
		}
		return st, err
	}

	if fetchErr != nil {
		s.logger.Warn().
			Err(fetchErr).
			Str("session_id", id).
			Str("query", query).
			Msg("session fetch failed")
		return st, fetchErr
	}

	s.logger.Debug().
		Str("session_id", id).
		Str("query", query).
		Uint64("request_seq", seq).
		Msg("session fetch completed")
	return st, nil
}

func (s *Service) fetchBoth(ctx context.Context, query string) (*weather.Snapshot, *weather.Forecast, error) {
	g, gctx := errgroup.WithContext(ctx)

	var snap *weather.Snapshot
	var fc *weather.Forecast

	g.Go(func() error {
		var err error
		snap, err = s.weather.GetCurrent(gctx, query)
		if err != nil {
			return fmt.Errorf("fetching current weather: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		fc, err = s.weather.GetForecast(gctx, query)
		if err != nil {
			return fmt.Errorf("fetching forecast: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return snap, fc, nil
}

// FetchByCoordinates fetches the location at lat, lon.
func (s *Service) FetchByCoordinates(ctx context.Context, id string, lat, lon float64) (*State, error) {
	query, err := weather.CoordinatesQuery(lat, lon)
	if err != nil {
		return nil, err
	}
	return s.Fetch(ctx, id, query)
}

// Locate resolves the client's position within the locate timeout and
// fetches it. When no position is available the session error is set and
// ErrLocationUnavailable is returned.
func (s *Service) Locate(ctx context.Context, id string, locator Locator) (*State, error) {
	lctx, cancel := context.WithTimeout(ctx, s.locateTimeout)
	defer cancel()

	type result struct {
		query string
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		q, err := locator.Locate(lctx)
		ch <- result{q, err}
	}()

	var res result
	select {
	case res = <-ch:
	case <-lctx.Done():
		res = result{err: lctx.Err()}
	}

	if res.err != nil || strings.TrimSpace(res.query) == "" {
		s.logger.Info().Err(res.err).Str("session_id", id).Msg("client location unavailable")
		st, err := s.repo.Update(ctx, id, func(st *State) error {
			st.Error = MsgLocationUnavailable
			st.UpdatedAt = s.now()
			return nil
		})
		if err != nil {
			return nil, err
		}
		switch {
		case res.err == nil:
			err = ErrLocationUnavailable
		case errors.Is(res.err, ErrLocationUnavailable):
			err = res.err
		default:
			err = fmt.Errorf("%w: %w", ErrLocationUnavailable, res.err)
		}
		return st, err
	}

	return s.Fetch(ctx, id, res.query)
}

// Refresh re-fetches the session's current query in the background. It
// does not count as user activity, so refreshed sessions still go idle.
// A session with a fetch in flight is left alone and ErrSuperseded is
// returned.
func (s *Service) Refresh(ctx context.Context, id string) (*State, error) {
	return s.fetch(ctx, id, "", true)
}

// ToggleUnit flips between Celsius and Fahrenheit.
func (s *Service) ToggleUnit(ctx context.Context, id string) (*State, error) {
	return s.repo.Update(ctx, id, func(st *State) error {
		st.Unit = st.Unit.Toggle()
		st.UpdatedAt = s.now()
		return nil
	})
}

// SetUnit sets the display unit.
func (s *Service) SetUnit(ctx context.Context, id string, unit weather.Unit) (*State, error) {
	if _, err := weather.ParseUnit(string(unit)); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, func(st *State) error {
		st.Unit = unit
		st.UpdatedAt = s.now()
		return nil
	})
}

// ToggleTheme flips between light and dark.
func (s *Service) ToggleTheme(ctx context.Context, id string) (*State, error) {
	return s.repo.Update(ctx, id, func(st *State) error {
		st.Theme = st.Theme.Toggle()
		st.UpdatedAt = s.now()
		return nil
	})
}

// SetTheme sets the theme.
func (s *Service) SetTheme(ctx context.Context, id string, theme weather.Theme) (*State, error) {
	if _, err := weather.ParseTheme(string(theme)); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, func(st *State) error {
		st.Theme = theme
		st.UpdatedAt = s.now()
		return nil
	})
}

// Sessions lists live sessions.
func (s *Service) Sessions(ctx context.Context) ([]*State, error) {
	return s.repo.List(ctx)
}

// ActiveQueries returns the distinct queries of live sessions in first-seen
// order, compared case-insensitively.
func (s *Service) ActiveQueries(ctx context.Context) ([]string, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(sessions))
	out := make([]string, 0, len(sessions))
	for _, st := range sessions {
		key := strings.ToLower(st.Query)
		if st.Query == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, st.Query)
	}
	return out, nil
}

// Sweep evicts idle sessions.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	n, err := s.repo.EvictIdle(ctx)
	if err != nil {
		return 0, fmt.Errorf("evicting idle sessions: %w", err)
	}
	if n > 0 {
		s.logger.Info().Int("evicted", n).Msg("evicted idle sessions")
	}
	return n, nil
}

// Message converts a fetch error into the text shown to the user.
func Message(err error) string {
	var ue weather.UserError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ue):
		return ue.UserMessage()
	case errors.Is(err, weather.ErrLocationNotFound):
		return MsgLocationNotFound
	case errors.Is(err, ErrLocationUnavailable):
		return MsgLocationUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return MsgTimedOut
	default:
		return MsgFetchFailed
	}
}
