// Package forecast extends a sparse provider forecast into a dense year of
// days and selects the day, week, month and year windows the dashboard shows.
package forecast

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/breezy/breezy/internal/weather"
)

// Extended forecast shape.
const (
	// DaysBefore is how many days before today the extended forecast starts.
	DaysBefore = 30

	// ExtendedDays is the total number of entries in an extended forecast.
	ExtendedDays = 365

	hoursPerDay = 24
)

// Extended is the dense, chronological forecast derived from a provider payload.
type Extended struct {
	// Days holds exactly ExtendedDays entries with unique, increasing dates.
	Days []weather.ForecastDay `json:"days"`

	// Start and End are the first and last civil dates covered.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// RealDays counts entries copied from the provider.
	RealDays int `json:"realDays"`
}

// SynthesizerConfig holds configuration for the synthesizer.
type SynthesizerConfig struct {
	// Seed fixes the random source. Zero picks a random seed.
	Seed uint64

	// Calendar determines which civil date "now" falls on. Default: UTC.
	Calendar Calendar
}

// Synthesizer fills gaps in provider forecasts with plausible days.
// It is safe for concurrent use.
type Synthesizer struct {
	calendar Calendar

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthesizer creates a synthesizer. Two synthesizers built with the same
// non-zero seed produce identical output for identical calls.
func NewSynthesizer(cfg SynthesizerConfig) *Synthesizer {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Synthesizer{
		calendar: cfg.Calendar,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Calendar returns the calendar used to resolve "today".
func (s *Synthesizer) Calendar() Calendar {
	return s.calendar
}

// Synthesize returns ExtendedDays entries from now-30d to now+334d. A real
// entry whose date matches is copied unchanged; every other date is
// synthesized. Real entries with unparseable or out-of-range dates are ignored.
func (s *Synthesizer) Synthesize(raw []weather.ForecastDay, now time.Time) Extended {
	provided := make(map[string]weather.ForecastDay, len(raw))
	for _, d := range raw {
		date, err := d.CalendarDate()
		if err != nil {
			continue
		}
		key := date.Format(weather.DateLayout)
		if _, dup := provided[key]; !dup {
			provided[key] = d
		}
	}

	start := s.calendar.Date(now).AddDate(0, 0, -DaysBefore)
	out := Extended{
		Days:  make([]weather.ForecastDay, 0, ExtendedDays),
		Start: start,
		End:   start.AddDate(0, 0, ExtendedDays-1),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < ExtendedDays; i++ {
		date := start.AddDate(0, 0, i)
		if d, ok := provided[date.Format(weather.DateLayout)]; ok {
			out.Days = append(out.Days, d.Clone())
			out.RealDays++
			continue
		}
		out.Days = append(out.Days, s.synthesizeDay(date))
	}

	return out
}

// uniform draws from [lo, hi). Caller must hold s.mu.
func (s *Synthesizer) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *Synthesizer) draw(r span) float64 {
	return s.uniform(r.lo, r.hi)
}

// synthesizeDay builds one day from a random archetype. Caller must hold s.mu.
func (s *Synthesizer) synthesizeDay(date time.Time) weather.ForecastDay {
	a := archetypes[s.rng.IntN(len(archetypes))]
	cond := weather.Condition{Code: a.code, Text: a.text}

	baseTemp := s.draw(a.temp)
	wind := s.draw(a.wind)
	humidity := s.draw(a.humidity)
	uv := s.draw(a.uv)
	pressure := s.uniform(1000, 1030)

	hours := make([]weather.HourSlot, hoursPerDay)
	for h := range hours {
		hours[h] = s.synthesizeHour(date, h, a, cond, baseTemp, wind, humidity, uv, pressure)
	}

	maxC := baseTemp + s.uniform(0, 5)
	minC := baseTemp - s.uniform(0, 5)

	rainChance := s.uniform(0, 30)
	if a.isRain() {
		rainChance = s.uniform(50, 100)
	}
	snowChance := s.uniform(0, 10)
	if a.isSnow() {
		snowChance = s.uniform(50, 100)
	}
	precip := s.uniform(0, 2)
	if a.isRain() {
		precip = s.uniform(0, 10)
	}
	vis := s.uniform(8, 12)
	if a.isFog() {
		vis = s.uniform(2, 5)
	}

	return weather.ForecastDay{
		Date:      date.Format(weather.DateLayout),
		DateEpoch: date.Unix(),
		Day: weather.Day{
			MaxTempC:          maxC,
			MaxTempF:          weather.CelsiusToFahrenheit(maxC),
			MinTempC:          minC,
			MinTempF:          weather.CelsiusToFahrenheit(minC),
			AvgTempC:          baseTemp,
			AvgTempF:          weather.CelsiusToFahrenheit(baseTemp),
			MaxWindKph:        wind + 5,
			TotalPrecipMm:     precip,
			AvgVisKm:          vis,
			AvgHumidity:       humidity,
			DailyWillItRain:   boolInt(rainChance >= 50),
			DailyChanceOfRain: rainChance,
			DailyWillItSnow:   boolInt(snowChance >= 50),
			DailyChanceOfSnow: snowChance,
			Condition:         cond,
			UV:                uv,
			PressureMb:        pressure,
		},
		Astro: weather.Astro{
			Sunrise:          placeholderSunrise,
			Sunset:           placeholderSunset,
			Moonrise:         placeholderMoonrise,
			Moonset:          placeholderMoonset,
			MoonPhase:        placeholderMoonPhase,
			MoonIllumination: math.Floor(s.uniform(0, 100)),
		},
		Hour: hours,
	}
}

// synthesizeHour builds hour h. Caller must hold s.mu.
func (s *Synthesizer) synthesizeHour(date time.Time, h int, a archetype, cond weather.Condition,
	baseTemp, wind, humidity, uv, pressure float64) weather.HourSlot {
	temp := DiurnalTemperature(baseTemp, h)
	feels := temp + s.uniform(-1, 1)
	degree := math.Floor(s.uniform(0, 360))

	rain := s.uniform(0, 30)
	if a.isRain() {
		rain = s.uniform(30, 100)
	}
	snow := s.uniform(0, 10)
	if a.isSnow() {
		snow = s.uniform(30, 100)
	}

	return weather.HourSlot{
		TimeEpoch:    date.Add(time.Duration(h) * time.Hour).Unix(),
		Time:         fmt.Sprintf("%02d:00", h),
		TempC:        temp,
		TempF:        weather.CelsiusToFahrenheit(temp),
		IsDay:        boolInt(h >= 6 && h < 19),
		Condition:    cond,
		WindKph:      wind + s.uniform(0, 5),
		WindDegree:   degree,
		WindDir:      compass(degree),
		PressureMb:   pressure,
		Humidity:     clamp(humidity+s.uniform(-5, 5), 0, 100),
		Cloud:        math.Floor(s.uniform(0, 100)),
		FeelsLikeC:   feels,
		FeelsLikeF:   weather.CelsiusToFahrenheit(feels),
		ChanceOfRain: rain,
		ChanceOfSnow: snow,
		UV:           HourlyUV(uv, h),
	}
}

// DiurnalTemperature is base + 5*sin(h*pi/12).
func DiurnalTemperature(base float64, h int) float64 {
	return base + 5*math.Sin(float64(h)*math.Pi/12)
}

// HourlyUV scales the day's UV triangularly: full at noon, zero at midnight.
func HourlyUV(dayUV float64, h int) float64 {
	return dayUV * (1 - math.Abs(float64(h-12))/12)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
