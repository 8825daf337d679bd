package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/breezy/breezy/internal/weather"
)

// NoCondition is reported for months without any condition text.
const NoCondition = "N/A"

// MonthSummary aggregates one calendar month of a year view.
type MonthSummary struct {
	Month               int     `json:"month"`
	Name                string  `json:"name"`
	AvgHigh             float64 `json:"avgHigh"`
	AvgHighRounded      int     `json:"avgHighRounded"`
	MostCommonCondition string  `json:"mostCommonCondition"`
	Days                int     `json:"days"`
}

// Summary is the year view: twelve months, January first.
type Summary struct {
	Year    int            `json:"year"`
	Unit    weather.Unit   `json:"unit"`
	Months  []MonthSummary `json:"months"`
	Outcome Outcome        `json:"outcome"`
}

type monthAccumulator struct {
	sumHigh float64
	days    int
	counts  map[string]int
	order   []string
}

// YearSummary computes, per month of year, the mean daily maximum in unit
// (0 for months without entries) and the most frequent condition text, ties
// going to the condition encountered first.
func YearSummary(data []weather.ForecastDay, year int, unit weather.Unit) (Summary, error) {
	var acc [12]monthAccumulator

	failed := false
	var firstErr error
	for i := range data {
		date, err := data[i].CalendarDate()
		if err != nil {
			failed = true
			firstErr = fmt.Errorf("%w: %w", ErrMalformedDate, err)
			break
		}
		if date.Year() != year {
			continue
		}
		m := &acc[date.Month()-1]
		m.sumHigh += data[i].MaxTemp(unit)
		m.days++
		text := data[i].Day.Condition.Text
		if text == "" {
			continue
		}
		if m.counts == nil {
			m.counts = make(map[string]int)
		}
		if m.counts[text] == 0 {
			m.order = append(m.order, text)
		}
		m.counts[text]++
	}

	s := Summary{Year: year, Unit: unit, Months: make([]MonthSummary, 12), Outcome: OutcomeOK}
	for i := range s.Months {
		s.Months[i] = MonthSummary{
			Month:               i + 1,
			Name:                time.Month(i + 1).String(),
			MostCommonCondition: NoCondition,
		}
	}

	if failed {
		s.Outcome = OutcomeError
		return s, firstErr
	}

	total := 0
	for i := range acc {
		m := &acc[i]
		total += m.days
		if m.days > 0 {
			s.Months[i].AvgHigh = m.sumHigh / float64(m.days)
			s.Months[i].AvgHighRounded = int(math.Round(s.Months[i].AvgHigh))
		}
		s.Months[i].Days = m.days
		s.Months[i].MostCommonCondition = m.mostCommon()
	}
	if total == 0 {
		s.Outcome = OutcomeEmpty
	}
	return s, nil
}

func (m *monthAccumulator) mostCommon() string {
	best, bestCount := NoCondition, 0
	for _, text := range m.order {
		if c := m.counts[text]; c > bestCount {
			best, bestCount = text, c
		}
	}
	return best
}

// Cell is one day of the month grid.
type Cell struct {
	Date    time.Time            `json:"date"`
	Day     *weather.ForecastDay `json:"day,omitempty"`
	InMonth bool                 `json:"inMonth"`
	Today   bool                 `json:"today"`
}

// Grid is a six-week calendar for one month.
type Grid struct {
	Year    int      `json:"year"`
	Month   int      `json:"month"`
	Title   string   `json:"title"`
	Weeks   [][]Cell `json:"weeks"`
	Outcome Outcome  `json:"outcome"`
}

// Grid dimensions.
const (
	GridWeeks = 6
	GridDays  = 7
)

// MonthGrid lays out ref's month as 6x7 cells starting on the Sunday on or
// before the 1st. Cells carry the matching entry, if any, and flags for
// membership in the month and for today's civil date.
func MonthGrid(data []weather.ForecastDay, ref, today time.Time) (Grid, error) {
	first := MonthStart(CivilDate(ref))
	g := Grid{
		Year:    first.Year(),
		Month:   int(first.Month()),
		Title:   Title(Month, first),
		Outcome: OutcomeOK,
	}

	byDate := make(map[string]int, len(data))
	for i := range data {
		date, err := data[i].CalendarDate()
		if err != nil {
			g.Outcome = OutcomeError
			return g, fmt.Errorf("%w: %w", ErrMalformedDate, err)
		}
		key := date.Format(weather.DateLayout)
		if _, dup := byDate[key]; !dup {
			byDate[key] = i
		}
	}

	start := WeekStart(first)
	found := 0
	g.Weeks = make([][]Cell, GridWeeks)
	for w := range g.Weeks {
		g.Weeks[w] = make([]Cell, GridDays)
		for d := range g.Weeks[w] {
			date := start.AddDate(0, 0, w*GridDays+d)
			cell := Cell{
				Date:    date,
				InMonth: date.Month() == first.Month(),
				Today:   sameDate(date, today),
			}
			if i, ok := byDate[date.Format(weather.DateLayout)]; ok {
				day := data[i].Clone()
				cell.Day = &day
				found++
			}
			g.Weeks[w][d] = cell
		}
	}

	if found == 0 {
		g.Outcome = OutcomeEmpty
	}
	return g, nil
}
