package session_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breezy/breezy/internal/forecast"
	"github.com/breezy/breezy/internal/session"
	"github.com/breezy/breezy/internal/weather"
)

var fixedNow = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

// fakeWeather serves one payload per query. A query listed in gates blocks
// until its channel is closed.
type fakeWeather struct {
	mu           sync.Mutex
	currentErr   error
	forecastErr  error
	gates        map[string]chan struct{}
	currentCalls atomic.Int32
}

func newFakeWeather() *fakeWeather {
	return &fakeWeather{gates: make(map[string]chan struct{})}
}

func (f *fakeWeather) gate(query string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[query] = ch
	return ch
}

func (f *fakeWeather) wait(ctx context.Context, query string) error {
	f.mu.Lock()
	ch := f.gates[query]
	f.mu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeWeather) GetCurrent(ctx context.Context, query string) (*weather.Snapshot, error) {
	f.currentCalls.Add(1)
	if err := f.wait(ctx, query); err != nil {
		return nil, err
	}
	f.mu.Lock()
	err := f.currentErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &weather.Snapshot{Location: weather.Location{Name: query}}, nil
}

func (f *fakeWeather) GetForecast(ctx context.Context, query string) (*weather.Forecast, error) {
	f.mu.Lock()
	err := f.forecastErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := f.wait(ctx, query); err != nil {
		return nil, err
	}
	return &weather.Forecast{
		Location: weather.Location{Name: query},
		Days: []weather.ForecastDay{{
			Date: fixedNow.Format(weather.DateLayout),
			Day:  weather.Day{MaxTempC: 30, Condition: weather.Condition{Text: "Sunny"}},
		}},
	}, nil
}

func (f *fakeWeather) setErrors(current, fc error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentErr = current
	f.forecastErr = fc
}

type userErr struct{ msg string }

func (e *userErr) Error() string       { return "provider: " + e.msg }
func (e *userErr) UserMessage() string { return e.msg }

func newService(w session.WeatherSource) *session.Service {
	return session.NewService(session.ServiceConfig{
		Repository:    session.NewInMemoryRepository(time.Hour),
		Weather:       w,
		Synthesizer:   forecast.NewSynthesizer(forecast.SynthesizerConfig{Seed: 1}),
		Logger:        zerolog.Nop(),
		LocateTimeout: 100 * time.Millisecond,
		Now:           func() time.Time { return fixedNow },
	})
}

func TestService_CreateFetchesDefaultLocation(t *testing.T) {
	svc := newService(newFakeWeather())

	st, err := svc.Create(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, st.ID)
	assert.Equal(t, session.DefaultQuery, st.Query)
	assert.Equal(t, weather.Celsius, st.Unit)
	assert.Equal(t, weather.ThemeDark, st.Theme)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	require.True(t, st.HasData())
	assert.Equal(t, "Colombo", st.Snapshot.Location.Name)
	assert.Len(t, st.Extended.Days, forecast.ExtendedDays)
	assert.Equal(t, 30.0, st.Extended.Days[forecast.DaysBefore].Day.MaxTempC)
}

func TestService_CreateSurvivesProviderFailure(t *testing.T) {
	w := newFakeWeather()
	w.setErrors(&userErr{"API key is invalid."}, nil)
	svc := newService(w)

	st, err := svc.Create(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "API key is invalid.", st.Error)
	assert.False(t, st.HasData())
}

func TestService_FailedFetchKeepsPreviousData(t *testing.T) {
	w := newFakeWeather()
	svc := newService(w)
	st, err := svc.Create(context.Background())
	require.NoError(t, err)
	prev := st.Snapshot

	w.setErrors(nil, weather.ErrLocationNotFound)
	st, err = svc.Fetch(context.Background(), st.ID, "Atlantis")
	require.ErrorIs(t, err, weather.ErrLocationNotFound)

	assert.Equal(t, session.MsgLocationNotFound, st.Error)
	assert.Same(t, prev, st.Snapshot)
	assert.Equal(t, "Colombo", st.Query)
	assert.False(t, st.Loading)

	// A later success clears the error.
	w.setErrors(nil, nil)
	st, err = svc.Fetch(context.Background(), st.ID, "Paris")
	require.NoError(t, err)
	assert.Empty(t, st.Error)
	assert.Equal(t, "Paris", st.Query)
}

func TestService_FetchValidatesInput(t *testing.T) {
	svc := newService(newFakeWeather())

	_, err := svc.Fetch(context.Background(), "missing", "Paris")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	st, err := svc.Create(context.Background())
	require.NoError(t, err)
	_, err = svc.Fetch(context.Background(), st.ID, "   ")
	assert.ErrorIs(t, err, weather.ErrInvalidQuery)

	_, err = svc.FetchByCoordinates(context.Background(), st.ID, 100, 0)
	assert.ErrorIs(t, err, weather.ErrInvalidCoordinates)
}

func TestService_StaleResponseIsDiscarded(t *testing.T) {
	w := newFakeWeather()
	svc := newService(w)
	st, err := svc.Create(context.Background())
	require.NoError(t, err)

	slow := w.gate("Slowtown")

	done := make(chan error, 1)
	go func() {
		_, err := svc.Fetch(context.Background(), st.ID, "Slowtown")
		done <- err
	}()

	// Wait until the slow fetch has taken its request id.
	require.Eventually(t, func() bool { return w.currentCalls.Load() >= 2 }, time.Second, time.Millisecond)

	latest, err := svc.Fetch(context.Background(), st.ID, "Fastville")
	require.NoError(t, err)
	assert.Equal(t, "Fastville", latest.Query)

	close(slow)
	assert.ErrorIs(t, <-done, session.ErrSuperseded)

	final, err := svc.Get(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fastville", final.Query)
	assert.Equal(t, "Fastville", final.Snapshot.Location.Name)
	assert.False(t, final.Loading)
}

func TestService_RefreshYieldsToSearchInFlight(t *testing.T) {
	w := newFakeWeather()
	svc := newService(w)
	st, err := svc.Create(context.Background())
	require.NoError(t, err)

	london := w.gate("London")

	done := make(chan error, 1)
	go func() {
		_, err := svc.Fetch(context.Background(), st.ID, "London")
		done <- err
	}()
	require.Eventually(t, func() bool { return w.currentCalls.Load() >= 2 }, time.Second, time.Millisecond)

	refreshed, err := svc.Refresh(context.Background(), st.ID)
	assert.ErrorIs(t, err, session.ErrSuperseded)
	require.NotNil(t, refreshed)
	assert.True(t, refreshed.Loading)
	assert.Equal(t, int32(2), w.currentCalls.Load(), "refresh must not hit the provider")

	close(london)
	require.NoError(t, <-done)

	final, err := svc.Get(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, "London", final.Query)
	assert.Equal(t, "London", final.Snapshot.Location.Name)
	assert.False(t, final.Loading)
}

func TestService_RefreshDoesNotKeepSessionAlive(t *testing.T) {
	c := &clock{t: fixedNow}
	svc := session.NewService(session.ServiceConfig{
		Repository:  session.NewInMemoryRepository(time.Hour).WithClock(c.now),
		Weather:     newFakeWeather(),
		Synthesizer: forecast.NewSynthesizer(forecast.SynthesizerConfig{Seed: 1}),
		Logger:      zerolog.Nop(),
		Now:         c.now,
	})
	ctx := context.Background()

	st, err := svc.Create(ctx)
	require.NoError(t, err)

	evicted := 0
	for range 20 {
		c.t = c.t.Add(15 * time.Minute)
		n, err := svc.Sweep(ctx)
		require.NoError(t, err)
		evicted += n
		if _, err := svc.Refresh(ctx, st.ID); err != nil {
			assert.ErrorIs(t, err, session.ErrSessionNotFound)
		}
	}

	assert.Equal(t, 1, evicted)
	_, err = svc.Get(ctx, st.ID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestService_UserActivityKeepsSessionAlive(t *testing.T) {
	c := &clock{t: fixedNow}
	svc := session.NewService(session.ServiceConfig{
		Repository: session.NewInMemoryRepository(time.Hour).WithClock(c.now),
		Weather:    newFakeWeather(),
		Logger:     zerolog.Nop(),
		Now:        c.now,
	})
	ctx := context.Background()

	st, err := svc.Create(ctx)
	require.NoError(t, err)

	for range 8 {
		c.t = c.t.Add(45 * time.Minute)
		_, err := svc.ToggleUnit(ctx, st.ID)
		require.NoError(t, err)
		_, err = svc.Sweep(ctx)
		require.NoError(t, err)
	}

	_, err = svc.Get(ctx, st.ID)
	assert.NoError(t, err)
}

func TestService_FetchFailsFastAndCancelsSibling(t *testing.T) {
	w := newFakeWeather()
	svc := newService(w)
	st, err := svc.Create(context.Background())
	require.NoError(t, err)

	// Current blocks until canceled; forecast fails immediately.
	w.gate("Stuck")
	w.setErrors(nil, errors.New("boom"))

	start := time.Now()
	st, err = svc.Fetch(context.Background(), st.ID, "Stuck")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, session.MsgFetchFailed, st.Error)
}

func TestService_Locate(t *testing.T) {
	svc := newService(newFakeWeather())
	st, err := svc.Create(context.Background())
	require.NoError(t, err)

	st, err = svc.Locate(context.Background(), st.ID, session.Coordinates{Lat: 51.5, Lon: -0.12})
	require.NoError(t, err)
	assert.Equal(t, "51.5,-0.12", st.Query)
}

func TestService_LocateTimesOut(t *testing.T) {
	svc := newService(newFakeWeather())
	st, err := svc.Create(context.Background())
	require.NoError(t, err)

	never := session.LocatorFunc(func(ctx context.Context) (string, error) {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return "", ctx.Err()
	})

	st, err = svc.Locate(context.Background(), st.ID, never)
	require.ErrorIs(t, err, session.ErrLocationUnavailable)
	assert.Equal(t, session.MsgLocationUnavailable, st.Error)
	assert.Equal(t, "Colombo", st.Query)
}

func TestService_LocateRejectsPrivateIP(t *testing.T) {
	svc := newService(newFakeWeather())
	st, err := svc.Create(context.Background())
	require.NoError(t, err)

	_, err = svc.Locate(context.Background(), st.ID, session.ClientIP("192.168.1.10"))
	assert.ErrorIs(t, err, session.ErrLocationUnavailable)

	st, err = svc.Locate(context.Background(), st.ID, session.ClientIP("8.8.8.8"))
	require.NoError(t, err)
	assert.Equal(t, "8.8.8.8", st.Query)
}

func TestService_UnitAndTheme(t *testing.T) {
	svc := newService(newFakeWeather())
	st, err := svc.Create(context.Background())
	require.NoError(t, err)
	snap := st.Snapshot

	st, err = svc.ToggleUnit(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, weather.Fahrenheit, st.Unit)
	assert.Same(t, snap, st.Snapshot, "unit changes never touch stored data")

	st, err = svc.SetUnit(context.Background(), st.ID, weather.Celsius)
	require.NoError(t, err)
	assert.Equal(t, weather.Celsius, st.Unit)

	_, err = svc.SetUnit(context.Background(), st.ID, "kelvin")
	assert.Error(t, err)

	st, err = svc.ToggleTheme(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, weather.ThemeLight, st.Theme)

	st, err = svc.SetTheme(context.Background(), st.ID, weather.ThemeDark)
	require.NoError(t, err)
	assert.Equal(t, weather.ThemeDark, st.Theme)
}

func TestService_ExtendedRecomputedOnlyWhenForecastChanges(t *testing.T) {
	fc := &weather.Forecast{Days: []weather.ForecastDay{{Date: "2024-03-10"}}}
	src := &staticWeather{forecast: fc}
	svc := newService(src)

	st, err := svc.Create(context.Background())
	require.NoError(t, err)
	first := st.Extended

	st, err = svc.Refresh(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Same(t, first, st.Extended)

	src.forecast = &weather.Forecast{Days: []weather.ForecastDay{{Date: "2024-03-10"}}}
	st, err = svc.Refresh(context.Background(), st.ID)
	require.NoError(t, err)
	assert.NotSame(t, first, st.Extended)
}

type staticWeather struct {
	forecast *weather.Forecast
}

func (s *staticWeather) GetCurrent(_ context.Context, q string) (*weather.Snapshot, error) {
	return &weather.Snapshot{Location: weather.Location{Name: q}}, nil
}

func (s *staticWeather) GetForecast(context.Context, string) (*weather.Forecast, error) {
	return s.forecast, nil
}

func TestService_ActiveQueriesAndDelete(t *testing.T) {
	svc := newService(newFakeWeather())

	a, err := svc.Create(context.Background())
	require.NoError(t, err)
	b, err := svc.Create(context.Background())
	require.NoError(t, err)
	_, err = svc.Fetch(context.Background(), b.ID, "Paris")
	require.NoError(t, err)
	c, err := svc.Create(context.Background())
	require.NoError(t, err)
	_, err = svc.Fetch(context.Background(), c.ID, "colombo")
	require.NoError(t, err)

	queries, err := svc.ActiveQueries(context.Background())
	require.NoError(t, err)
	require.Len(t, queries, 2)
	lower := make([]string, len(queries))
	for i, q := range queries {
		lower[i] = strings.ToLower(q)
	}
	assert.ElementsMatch(t, []string{"colombo", "paris"}, lower)

	require.NoError(t, svc.Delete(context.Background(), a.ID))
	_, err = svc.Get(context.Background(), a.ID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", session.Message(nil))
	assert.Equal(t, "Quota exceeded", session.Message(&userErr{"Quota exceeded"}))
	assert.Equal(t, session.MsgLocationNotFound, session.Message(weather.ErrLocationNotFound))
	assert.Equal(t, session.MsgTimedOut, session.Message(context.DeadlineExceeded))
	assert.Equal(t, session.MsgFetchFailed, session.Message(errors.New("dial tcp: refused")))
}
