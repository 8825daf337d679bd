package weather_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breezy/breezy/internal/weather"
)

func TestUnitConversionRoundTrip(t *testing.T) {
	for _, c := range []float64{-40, 0, 21.5, 37, 100} {
		f := weather.CelsiusToFahrenheit(c)
		assert.InDelta(t, c, weather.FahrenheitToCelsius(f), 1e-9)
	}
	assert.InDelta(t, 212.0, weather.CelsiusToFahrenheit(100), 1e-9)
	assert.InDelta(t, -40.0, weather.CelsiusToFahrenheit(-40), 1e-9)
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in      string
		want    weather.Unit
		wantErr bool
	}{
		{"celsius", weather.Celsius, false},
		{"c", weather.Celsius, false},
		{"F", weather.Fahrenheit, false},
		{"fahrenheit", weather.Fahrenheit, false},
		{"kelvin", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := weather.ParseUnit(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnitToggleAndSymbol(t *testing.T) {
	assert.Equal(t, weather.Fahrenheit, weather.Celsius.Toggle())
	assert.Equal(t, weather.Celsius, weather.Fahrenheit.Toggle())
	assert.Equal(t, "°C", weather.Celsius.Symbol())
	assert.Equal(t, "°F", weather.Fahrenheit.Symbol())
	assert.Equal(t, 2.0, weather.Fahrenheit.Pick(1, 2))
}

func TestThemeToggle(t *testing.T) {
	assert.Equal(t, weather.ThemeLight, weather.ThemeDark.Toggle())
	assert.Equal(t, weather.ThemeDark, weather.ThemeLight.Toggle())

	_, err := weather.ParseTheme("sepia")
	assert.Error(t, err)
}

func TestConditionFamily(t *testing.T) {
	tests := []struct {
		code weather.ConditionCode
		want weather.Family
	}{
		{1000, weather.FamilyClear},
		{1003, weather.FamilyCloudy},
		{1009, weather.FamilyCloudy},
		{1030, weather.FamilyFog},
		{1147, weather.FamilyFog},
		{1063, weather.FamilyRain},
		{1195, weather.FamilyRain},
		{1213, weather.FamilySnow},
		{1276, weather.FamilyThunderstorm},
		{9999, weather.FamilyCloudy},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.Family(), "code %d", tt.code)
	}
}

func TestConditionAnimation(t *testing.T) {
	assert.Equal(t, "snow", weather.ConditionCode(1225).Animation())
	assert.Equal(t, "rain", weather.ConditionCode(1183).Animation())
	assert.Equal(t, "fog", weather.ConditionCode(1135).Animation())
	assert.Equal(t, "cloud", weather.ConditionCode(1006).Animation())
	assert.Equal(t, "", weather.ConditionCode(1000).Animation())
}

func TestForecastDayClone(t *testing.T) {
	orig := weather.ForecastDay{
		Date: "2024-03-01",
		Hour: []weather.HourSlot{{Time: "00:00", TempC: 10}},
	}

	clone := orig.Clone()
	clone.Hour[0].TempC = 99

	assert.Equal(t, 10.0, orig.Hour[0].TempC)
}

func TestForecastDayCalendarDate(t *testing.T) {
	d := weather.ForecastDay{Date: "2024-02-29"}
	got, err := d.CalendarDate()
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, 29, got.Day())

	bad := weather.ForecastDay{Date: "29/02/2024"}
	_, err = bad.CalendarDate()
	assert.Error(t, err)
}

func TestSnapshotGust(t *testing.T) {
	s := weather.Snapshot{Current: weather.Current{WindKph: 10}}
	assert.InDelta(t, 15.0, s.Gust(), 1e-9)

	s.Current.GustKph = 22
	assert.InDelta(t, 22.0, s.Gust(), 1e-9)
}

func TestForecastDecodesProviderPayload(t *testing.T) {
	payload := `{
		"location": {"name": "Colombo", "country": "Sri Lanka", "lat": 6.93, "lon": 79.85},
		"current": {"temp_c": 29.1, "temp_f": 84.4, "is_day": 1, "condition": {"text": "Sunny", "code": 1000}},
		"forecast": {}
	}`

	var f weather.Forecast
	require.NoError(t, json.Unmarshal([]byte(payload), &f))
	assert.Equal(t, "Colombo", f.Location.Name)
	assert.Equal(t, weather.CodeClear, f.Current.Condition.Code)
}
