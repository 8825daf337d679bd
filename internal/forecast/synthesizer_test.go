package forecast_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breezy/breezy/internal/forecast"
	"github.com/breezy/breezy/internal/weather"
)

var testNow = time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC)

func newSynth(seed uint64) *forecast.Synthesizer {
	return forecast.NewSynthesizer(forecast.SynthesizerConfig{Seed: seed})
}

func realDay(date string, maxC float64) weather.ForecastDay {
	hours := make([]weather.HourSlot, 24)
	for h := range hours {
		hours[h] = weather.HourSlot{Time: date + " 00:00", TempC: maxC - 5}
	}
	return weather.ForecastDay{
		Date:      date,
		DateEpoch: 1710028800,
		Day: weather.Day{
			MaxTempC:  maxC,
			MaxTempF:  weather.CelsiusToFahrenheit(maxC),
			Condition: weather.Condition{Text: "Sunny", Code: weather.CodeClear},
		},
		Astro: weather.Astro{Sunrise: "06:21 AM", MoonIllumination: 3},
		Hour:  hours,
	}
}

func TestSynthesize_ShapeAndOrdering(t *testing.T) {
	ext := newSynth(1).Synthesize(nil, testNow)

	require.Len(t, ext.Days, forecast.ExtendedDays)
	assert.Equal(t, "2024-02-09", ext.Days[0].Date)
	assert.Equal(t, "2025-02-07", ext.Days[len(ext.Days)-1].Date)
	assert.Equal(t, 0, ext.RealDays)

	prev := time.Time{}
	for i, d := range ext.Days {
		date, err := d.CalendarDate()
		require.NoError(t, err)
		if i > 0 {
			assert.Equal(t, prev.AddDate(0, 0, 1), date, "entry %d", i)
		}
		prev = date
	}
}

func TestSynthesize_RealEntryCopiedUnchanged(t *testing.T) {
	today := realDay("2024-03-10", 30)
	input := []weather.ForecastDay{today}

	ext := newSynth(7).Synthesize(input, testNow)

	idx := forecast.DaysBefore
	got := ext.Days[idx]
	if diff := cmp.Diff(today, got); diff != "" {
		t.Errorf("real entry changed (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, ext.RealDays)

	// The output must not alias the input.
	got.Hour[0].TempC = -99
	assert.Equal(t, 25.0, input[0].Hour[0].TempC)

	tenOut := ext.Days[idx+10]
	assert.Equal(t, "2024-03-20", tenOut.Date)
	assert.Len(t, tenOut.Hour, 24)
}

func TestSynthesize_IgnoresMalformedAndDuplicateInput(t *testing.T) {
	first := realDay("2024-03-11", 28)
	second := realDay("2024-03-11", 12)
	bad := weather.ForecastDay{Date: "not-a-date"}

	ext := newSynth(3).Synthesize([]weather.ForecastDay{bad, first, second}, testNow)

	require.Len(t, ext.Days, forecast.ExtendedDays)
	assert.Equal(t, 28.0, ext.Days[forecast.DaysBefore+1].Day.MaxTempC)
	assert.Equal(t, 1, ext.RealDays)
}

func TestSynthesize_DeterministicWithSeed(t *testing.T) {
	a := newSynth(42).Synthesize(nil, testNow)
	b := newSynth(42).Synthesize(nil, testNow)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different output:\n%s", diff)
	}

	c := newSynth(43).Synthesize(nil, testNow)
	assert.NotEqual(t, a.Days[0].Day.MaxTempC, c.Days[0].Day.MaxTempC)
}

func TestSynthesize_SyntheticDayInvariants(t *testing.T) {
	ext := newSynth(99).Synthesize(nil, testNow)

	for _, d := range ext.Days {
		require.Len(t, d.Hour, 24, d.Date)

		h0, h12, h23 := d.Hour[0].TempC, d.Hour[12].TempC, d.Hour[23].TempC
		assert.GreaterOrEqual(t, h12, h0, d.Date)
		assert.GreaterOrEqual(t, h12, h23, d.Date)

		assert.GreaterOrEqual(t, d.Day.PressureMb, 1000.0)
		assert.Less(t, d.Day.PressureMb, 1030.0)
		assert.GreaterOrEqual(t, d.Day.MaxTempC, d.Day.MinTempC)
		assert.InDelta(t, weather.CelsiusToFahrenheit(d.Day.MaxTempC), d.Day.MaxTempF, 1e-9)
		assert.Equal(t, "07:00 AM", d.Astro.Sunrise)
		assert.Equal(t, "Waxing Crescent", d.Astro.MoonPhase)

		for h, slot := range d.Hour {
			assert.GreaterOrEqual(t, slot.Humidity, 0.0)
			assert.LessOrEqual(t, slot.Humidity, 100.0)
			assert.InDelta(t, slot.TempC, slot.FeelsLikeC, 1.0)
			assert.InDelta(t, forecast.HourlyUV(d.Day.UV, h), slot.UV, 1e-9)
		}
		assert.Zero(t, d.Hour[0].UV)
		assert.Equal(t, "09:00", d.Hour[9].Time)
	}
}

func TestSynthesize_ArchetypeRanges(t *testing.T) {
	ext := newSynth(5).Synthesize(nil, testNow)

	for _, d := range ext.Days {
		switch d.Day.Condition.Code {
		case weather.CodePatchyRain:
			assert.Equal(t, "Light rain", d.Day.Condition.Text)
			assert.GreaterOrEqual(t, d.Day.DailyChanceOfRain, 50.0)
			assert.Less(t, d.Day.TotalPrecipMm, 10.0)
			for _, h := range d.Hour {
				assert.GreaterOrEqual(t, h.ChanceOfRain, 30.0)
			}
		case weather.CodeBlowingSnow:
			assert.GreaterOrEqual(t, d.Day.DailyChanceOfSnow, 50.0)
			assert.LessOrEqual(t, d.Day.AvgTempC, 0.0)
		case weather.CodeMist:
			assert.GreaterOrEqual(t, d.Day.AvgVisKm, 2.0)
			assert.Less(t, d.Day.AvgVisKm, 5.0)
		default:
			assert.Less(t, d.Day.DailyChanceOfRain, 30.0)
			assert.Less(t, d.Day.DailyChanceOfSnow, 10.0)
			assert.GreaterOrEqual(t, d.Day.AvgVisKm, 8.0)
		}
	}
}

func TestSynthesize_CalendarLocation(t *testing.T) {
	colombo := time.FixedZone("IST", 5*3600+1800)
	synth := forecast.NewSynthesizer(forecast.SynthesizerConfig{
		Seed:     1,
		Calendar: forecast.NewCalendar(colombo),
	})

	// 20:00 UTC is already the next day at +05:30.
	late := time.Date(2024, time.March, 10, 20, 0, 0, 0, time.UTC)
	ext := synth.Synthesize(nil, late)

	assert.Equal(t, "2024-03-11", ext.Days[forecast.DaysBefore].Date)
}

func TestDiurnalTemperature(t *testing.T) {
	assert.InDelta(t, 20.0, forecast.DiurnalTemperature(20, 0), 1e-9)
	assert.InDelta(t, 25.0, forecast.DiurnalTemperature(20, 6), 1e-9)
	assert.InDelta(t, 15.0, forecast.DiurnalTemperature(20, 18), 1e-9)
}
