package weatherapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breezy/breezy/internal/provider/resilience"
	"github.com/breezy/breezy/internal/weather"
	"github.com/breezy/breezy/internal/weather/weatherapi"
)

const currentJSON = `{
	"location": {"name": "Colombo", "region": "Western", "country": "Sri Lanka", "lat": 6.93, "lon": 79.85, "tz_id": "Asia/Colombo", "localtime": "2024-01-15 14:00"},
	"current": {
		"last_updated": "2024-01-15 13:45", "temp_c": 30.2, "temp_f": 86.4, "is_day": 1,
		"condition": {"text": "Partly cloudy", "icon": "//cdn.weatherapi.com/weather/64x64/day/116.png", "code": 1003},
		"wind_kph": 14.4, "wind_degree": 250, "wind_dir": "WSW", "pressure_mb": 1010,
		"precip_mm": 0.1, "humidity": 70, "cloud": 50, "feelslike_c": 35.1, "feelslike_f": 95.2,
		"vis_km": 10, "uv": 8, "gust_kph": 18.7
	}
}`

const forecastJSON = `{
	"location": {"name": "Colombo", "country": "Sri Lanka", "lat": 6.93, "lon": 79.85},
	"current": {"temp_c": 30.2, "temp_f": 86.4, "is_day": 1, "condition": {"text": "Sunny", "code": 1000}},
	"forecast": {"forecastday": [
		{"date": "2024-01-15", "date_epoch": 1705276800,
		 "day": {"maxtemp_c": 31, "maxtemp_f": 87.8, "mintemp_c": 24, "mintemp_f": 75.2, "condition": {"text": "Sunny", "code": 1000}, "uv": 9},
		 "astro": {"sunrise": "06:30 AM", "sunset": "06:15 PM", "moon_phase": "Waxing Crescent", "moon_illumination": 21},
		 "hour": [{"time": "2024-01-15 00:00", "temp_c": 25, "temp_f": 77, "condition": {"text": "Clear", "code": 1000}}]},
		{"date": "2024-01-16", "day": {"maxtemp_c": 30}, "astro": {}, "hour": []}
	]}
}`

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *weatherapi.Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cb := resilience.DefaultCircuitBreakerConfig("test")
	cb.ReadyToTrip = func(gobreaker.Counts) bool { return false }

	client := weatherapi.NewClient(weatherapi.ClientConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		HTTPClient: resilience.NewClient(resilience.ClientConfig{
			Name:            "test",
			MaxRetries:      1,
			InitialInterval: 5 * time.Millisecond,
			CircuitBreaker:  &cb,
		}),
	})
	return server, client
}

func TestClient_GetCurrent(t *testing.T) {
	_, client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/current.json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "New York", r.URL.Query().Get("q"))
		assert.Equal(t, "no", r.URL.Query().Get("aqi"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(currentJSON))
	})

	snap, err := client.GetCurrent(context.Background(), "New York")
	require.NoError(t, err)

	assert.Equal(t, "Colombo", snap.Location.Name)
	assert.Equal(t, "Sri Lanka", snap.Location.Country)
	assert.Equal(t, 30.2, snap.Current.TempC)
	assert.Equal(t, 86.4, snap.Temperature(weather.Fahrenheit))
	assert.Equal(t, weather.CodePartlyCloudy, snap.Current.Condition.Code)
	assert.True(t, snap.IsDaytime())
	assert.Equal(t, 18.7, snap.Gust())
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestClient_GetCurrent_AirQuality(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "yes", r.URL.Query().Get("aqi"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"location": {"name": "Delhi"}, "current": {"temp_c": 35, "air_quality": {"us-epa-index": 4}}}`))
	}))
	t.Cleanup(server.Close)

	client := weatherapi.NewClient(weatherapi.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		AirQuality: true,
		HTTPClient: resilience.NewClient(resilience.ClientConfig{Name: "test-aqi"}),
	})

	snap, err := client.GetCurrent(context.Background(), "Delhi")
	require.NoError(t, err)
	require.NotNil(t, snap.Current.AirQuality)
	assert.Equal(t, 4, snap.Current.AirQuality.USEPAIndex)
}

func TestClient_GetForecast(t *testing.T) {
	_, client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "5", q.Get("days"))
		assert.Equal(t, "no", q.Get("aqi"))
		assert.Equal(t, "no", q.Get("alerts"))
		_, _ = w.Write([]byte(forecastJSON))
	})

	f, err := client.GetForecast(context.Background(), "Colombo", 0)
	require.NoError(t, err)

	require.Len(t, f.Days, 2)
	assert.Equal(t, "2024-01-15", f.Days[0].Date)
	assert.Equal(t, 31.0, f.Days[0].Day.MaxTempC)
	assert.Equal(t, 21.0, f.Days[0].Astro.MoonIllumination)
	require.Len(t, f.Days[0].Hour, 1)
	assert.Equal(t, 25.0, f.Days[0].Hour[0].TempC)
	assert.Equal(t, "Colombo", f.Location.Name)
}

func TestClient_QueryIsEscaped(t *testing.T) {
	_, client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "q=S%C3%A3o+Paulo%26x%3D1")
		_, _ = w.Write([]byte(currentJSON))
	})

	_, err := client.GetCurrent(context.Background(), "São Paulo&x=1")
	require.NoError(t, err)
}

func TestClient_LocationNotFound(t *testing.T) {
	_, client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":1006,"message":"No matching location found."}}`))
	})

	_, err := client.GetForecast(context.Background(), "Atlantis", 5)
	require.Error(t, err)

	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
	assert.Equal(t, "No matching location found.", err.Error())

	perr, ok := weatherapi.IsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, "forecast", perr.Operation)
	assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
	assert.Equal(t, 1006, perr.Code)
}

func TestClient_FallbackMessages(t *testing.T) {
	_, client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := client.GetCurrent(context.Background(), "London")
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch weather data", err.Error())

	_, err = client.GetForecast(context.Background(), "London", 3)
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch forecast data", err.Error())
	assert.False(t, errors.Is(err, weather.ErrLocationNotFound))
}

func TestClient_ServerErrorIsUnavailable(t *testing.T) {
	_, client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":9999,"message":"Internal application error."}}`))
	})

	_, err := client.GetCurrent(context.Background(), "London")
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrProviderUnavailable)
	assert.Equal(t, "Internal application error.", err.Error())
}

func TestClient_NetworkError(t *testing.T) {
	server, client := newServer(t, func(http.ResponseWriter, *http.Request) {})
	server.Close()

	_, err := client.GetCurrent(context.Background(), "London")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executing request")
}

func TestClient_InvalidJSON(t *testing.T) {
	_, client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"location":`))
	})

	_, err := client.GetCurrent(context.Background(), "London")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestClient_Name(t *testing.T) {
	client := weatherapi.NewClient(weatherapi.ClientConfig{APIKey: "k"})
	assert.Equal(t, "weatherapi", client.Name())
}
