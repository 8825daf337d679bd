// Package weather holds the weather domain model shared by the provider
// client, the forecast synthesizer and the session state.
package weather

import (
	"errors"
	"fmt"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrLocationNotFound    = errors.New("no matching location found")
	ErrInvalidQuery        = errors.New("invalid location query")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// DateLayout is the provider's calendar date format.
const DateLayout = "2006-01-02"

// Condition is the provider's sky/precipitation classification.
type Condition struct {
	Text string        `json:"text"`
	Icon string        `json:"icon,omitempty"`
	Code ConditionCode `json:"code"`
}

// Location describes where an observation or forecast applies.
type Location struct {
	Name      string  `json:"name"`
	Region    string  `json:"region,omitempty"`
	Country   string  `json:"country"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	TzID      string  `json:"tz_id,omitempty"`
	Localtime string  `json:"localtime,omitempty"`
}

// Current holds current conditions as reported by the provider.
type Current struct {
	LastUpdated      string    `json:"last_updated"`
	LastUpdatedEpoch int64     `json:"last_updated_epoch,omitempty"`
	TempC            float64   `json:"temp_c"`
	TempF            float64   `json:"temp_f"`
	IsDay            int       `json:"is_day"`
	Condition        Condition `json:"condition"`
	WindMph          float64   `json:"wind_mph"`
	WindKph          float64   `json:"wind_kph"`
	WindDegree       float64   `json:"wind_degree"`
	WindDir          string    `json:"wind_dir"`
	PressureMb       float64   `json:"pressure_mb"`
	PrecipMm         float64   `json:"precip_mm"`
	Humidity         float64   `json:"humidity"`
	Cloud            float64   `json:"cloud"`
	FeelsLikeC       float64   `json:"feelslike_c"`
	FeelsLikeF       float64   `json:"feelslike_f"`
	VisKm            float64   `json:"vis_km"`
	UV               float64   `json:"uv"`
	GustKph          float64   `json:"gust_kph"`

	AirQuality *AirQuality `json:"air_quality,omitempty"`
}

// AirQuality is only present when the provider is asked for it.
type AirQuality struct {
	USEPAIndex int `json:"us-epa-index"`
}

// Snapshot is the current-conditions payload for one location. It is
// immutable once fetched and replaced wholesale by the next fetch.
type Snapshot struct {
	Location Location `json:"location"`
	Current  Current  `json:"current"`

	FetchedAt time.Time `json:"-"`
}

// IsDaytime reports whether the provider flagged the observation as daytime.
func (s *Snapshot) IsDaytime() bool {
	return s.Current.IsDay == 1
}

// Temperature returns the current temperature in the given unit.
func (s *Snapshot) Temperature(u Unit) float64 {
	return u.Pick(s.Current.TempC, s.Current.TempF)
}

// FeelsLike returns the feels-like temperature in the given unit.
func (s *Snapshot) FeelsLike(u Unit) float64 {
	return u.Pick(s.Current.FeelsLikeC, s.Current.FeelsLikeF)
}

// Gust returns the gust speed, estimated as 1.5x wind when not reported.
func (s *Snapshot) Gust() float64 {
	if s.Current.GustKph > 0 {
		return s.Current.GustKph
	}
	return s.Current.WindKph * 1.5
}

// Day holds day-level forecast aggregates.
type Day struct {
	MaxTempC          float64   `json:"maxtemp_c"`
	MaxTempF          float64   `json:"maxtemp_f"`
	MinTempC          float64   `json:"mintemp_c"`
	MinTempF          float64   `json:"mintemp_f"`
	AvgTempC          float64   `json:"avgtemp_c"`
	AvgTempF          float64   `json:"avgtemp_f"`
	MaxWindKph        float64   `json:"maxwind_kph"`
	TotalPrecipMm     float64   `json:"totalprecip_mm"`
	TotalSnowCm       float64   `json:"totalsnow_cm"`
	AvgVisKm          float64   `json:"avgvis_km"`
	AvgHumidity       float64   `json:"avghumidity"`
	DailyWillItRain   int       `json:"daily_will_it_rain"`
	DailyChanceOfRain float64   `json:"daily_chance_of_rain"`
	DailyWillItSnow   int       `json:"daily_will_it_snow"`
	DailyChanceOfSnow float64   `json:"daily_chance_of_snow"`
	Condition         Condition `json:"condition"`
	UV                float64   `json:"uv"`
	PressureMb        float64   `json:"pressure_mb,omitempty"`
}

// Astro holds astronomical data for a day.
type Astro struct {
	Sunrise          string  `json:"sunrise"`
	Sunset           string  `json:"sunset"`
	Moonrise         string  `json:"moonrise"`
	Moonset          string  `json:"moonset"`
	MoonPhase        string  `json:"moon_phase"`
	MoonIllumination float64 `json:"moon_illumination"`
}

// HourSlot is one hour of a forecast day.
type HourSlot struct {
	TimeEpoch    int64     `json:"time_epoch,omitempty"`
	Time         string    `json:"time"`
	TempC        float64   `json:"temp_c"`
	TempF        float64   `json:"temp_f"`
	IsDay        int       `json:"is_day"`
	Condition    Condition `json:"condition"`
	WindKph      float64   `json:"wind_kph"`
	WindDegree   float64   `json:"wind_degree"`
	WindDir      string    `json:"wind_dir,omitempty"`
	PressureMb   float64   `json:"pressure_mb"`
	PrecipMm     float64   `json:"precip_mm"`
	Humidity     float64   `json:"humidity"`
	Cloud        float64   `json:"cloud"`
	FeelsLikeC   float64   `json:"feelslike_c"`
	FeelsLikeF   float64   `json:"feelslike_f"`
	ChanceOfRain float64   `json:"chance_of_rain"`
	ChanceOfSnow float64   `json:"chance_of_snow"`
	VisKm        float64   `json:"vis_km"`
	GustKph      float64   `json:"gust_kph"`
	UV           float64   `json:"uv"`
}

// Temperature returns the slot temperature in the given unit.
func (h *HourSlot) Temperature(u Unit) float64 {
	return u.Pick(h.TempC, h.TempF)
}

// ForecastDay is one calendar day of forecast data.
type ForecastDay struct {
	Date      string     `json:"date"`
	DateEpoch int64      `json:"date_epoch,omitempty"`
	Day       Day        `json:"day"`
	Astro     Astro      `json:"astro"`
	Hour      []HourSlot `json:"hour"`
}

// CalendarDate parses Date into midnight UTC of that calendar day.
func (f *ForecastDay) CalendarDate() (time.Time, error) {
	t, err := time.Parse(DateLayout, f.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing forecast date %q: %w", f.Date, err)
	}
	return t, nil
}

// MaxTemp returns the daily maximum in the given unit.
func (f *ForecastDay) MaxTemp(u Unit) float64 {
	return u.Pick(f.Day.MaxTempC, f.Day.MaxTempF)
}

// MinTemp returns the daily minimum in the given unit.
func (f *ForecastDay) MinTemp(u Unit) float64 {
	return u.Pick(f.Day.MinTempC, f.Day.MinTempF)
}

// Clone returns a deep copy so callers never share the hourly slice.
func (f ForecastDay) Clone() ForecastDay {
	if f.Hour != nil {
		hours := make([]HourSlot, len(f.Hour))
		copy(hours, f.Hour)
		f.Hour = hours
	}
	return f
}

// Forecast is the provider's forecast payload.
type Forecast struct {
	Location Location      `json:"location"`
	Current  Current       `json:"current"`
	Days     []ForecastDay `json:"forecastday"`

	FetchedAt time.Time `json:"-"`
}

// Theme is the dashboard color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// ParseTheme parses a theme name.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	default:
		return "", fmt.Errorf("unknown theme %q", s)
	}
}

// UserError is implemented by errors whose message is safe to show to users.
type UserError interface {
	error
	UserMessage() string
}
