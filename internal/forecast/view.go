package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/breezy/breezy/internal/weather"
)

// View errors.
var (
	ErrMalformedDate      = errors.New("malformed forecast date")
	ErrUnknownGranularity = errors.New("unknown granularity")
)

// Granularity is the size of the visible forecast window.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// ParseGranularity parses a view name. Empty input selects Week.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case Day, Week, Month, Year:
		return g, nil
	case "":
		return Week, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
}

// Outcome tells an empty window with no data apart from a failed one.
type Outcome string

const (
	OutcomeOK    Outcome = "ok"
	OutcomeEmpty Outcome = "empty"
	OutcomeError Outcome = "error"
)

// Window is a contiguous selection of an extended forecast.
type Window struct {
	Granularity Granularity           `json:"granularity"`
	Reference   time.Time             `json:"reference"`
	Start       time.Time             `json:"start"`
	End         time.Time             `json:"end"`
	Title       string                `json:"title"`
	Days        []weather.ForecastDay `json:"days"`
	Outcome     Outcome               `json:"outcome"`
}

// Bounds returns the inclusive first and last civil dates of the window of
// granularity g containing ref.
func Bounds(g Granularity, ref time.Time) (time.Time, time.Time) {
	d := CivilDate(ref)
	switch g {
	case Week:
		start := WeekStart(d)
		return start, start.AddDate(0, 0, 6)
	case Month:
		start := MonthStart(d)
		return start, start.AddDate(0, 1, -1)
	case Year:
		return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		return d, d
	}
}

// SelectWindow returns copies of the entries of data whose dates fall in the
// window of granularity g containing ref. data is never modified.
func SelectWindow(data []weather.ForecastDay, g Granularity, ref time.Time) (Window, error) {
	start, end := Bounds(g, ref)
	w := Window{
		Granularity: g,
		Reference:   CivilDate(ref),
		Start:       start,
		End:         end,
		Title:       Title(g, ref),
		Days:        []weather.ForecastDay{},
	}

	for i := range data {
		date, err := data[i].CalendarDate()
		if err != nil {
			w.Days = []weather.ForecastDay{}
			w.Outcome = OutcomeError
			return w, fmt.Errorf("%w: %w", ErrMalformedDate, err)
		}
		if date.Before(start) || date.After(end) {
			continue
		}
		w.Days = append(w.Days, data[i].Clone())
		if g == Day {
			break
		}
	}

	w.Outcome = OutcomeOK
	if len(w.Days) == 0 {
		w.Outcome = OutcomeEmpty
	}
	return w, nil
}

// Navigate moves ref by step units of g: days, weeks, months or years.
// Month and year steps normalize overflow, so Jan 31 + 1 month is Mar 2 or 3.
func Navigate(ref time.Time, g Granularity, step int) time.Time {
	switch g {
	case Week:
		return ref.AddDate(0, 0, 7*step)
	case Month:
		return ref.AddDate(0, step, 0)
	case Year:
		return ref.AddDate(step, 0, 0)
	default:
		return ref.AddDate(0, 0, step)
	}
}

// Title formats the heading for a window.
func Title(g Granularity, ref time.Time) string {
	d := CivilDate(ref)
	switch g {
	case Week:
		start, end := Bounds(Week, d)
		return start.Format("Mon, Jan 2") + " - " + end.Format("Mon, Jan 2")
	case Month:
		return d.Format("January 2006")
	case Year:
		return d.Format("2006")
	default:
		return d.Format("Monday, January 2, 2006")
	}
}

// CurrentHour returns the slot for now's hour, the first slot when the day
// has fewer hours, or nil when it has none.
func CurrentHour(day *weather.ForecastDay, now time.Time) *weather.HourSlot {
	if day == nil || len(day.Hour) == 0 {
		return nil
	}
	slot := day.Hour[0]
	if h := now.Hour(); h < len(day.Hour) {
		slot = day.Hour[h]
	}
	return &slot
}

// View is the fail-soft boundary used by the API: computational errors are
// logged and degrade to empty results.
type View struct {
	logger zerolog.Logger
}

// NewView creates a view boundary that logs with logger.
func NewView(logger zerolog.Logger) *View {
	return &View{logger: logger}
}

// Window wraps SelectWindow. On error the window is empty and its Outcome
// is OutcomeError.
func (v *View) Window(data []weather.ForecastDay, g Granularity, ref time.Time) Window {
	w, err := SelectWindow(data, g, ref)
	if err != nil {
		v.logger.Error().
			Err(err).
			Str("granularity", string(g)).
			Time("reference", ref).
			Msg("forecast window degraded to empty")
	}
	return w
}

// YearSummary wraps the package-level YearSummary.
func (v *View) YearSummary(data []weather.ForecastDay, year int, unit weather.Unit) Summary {
	s, err := YearSummary(data, year, unit)
	if err != nil {
		v.logger.Error().Err(err).Int("year", year).Msg("year summary degraded to empty")
	}
	return s
}

// MonthGrid wraps the package-level MonthGrid.
func (v *View) MonthGrid(data []weather.ForecastDay, ref, today time.Time) Grid {
	g, err := MonthGrid(data, ref, today)
	if err != nil {
		v.logger.Error().Err(err).Time("reference", ref).Msg("month grid degraded to empty")
	}
	return g
}
