package forecast

import "time"

// Calendar converts instants into civil dates in a fixed location. Civil
// dates are represented as midnight UTC so that day arithmetic never crosses
// a DST boundary.
type Calendar struct {
	loc *time.Location
}

// NewCalendar returns a calendar for loc, defaulting to UTC.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

// LoadCalendar resolves an IANA zone name such as "Asia/Colombo".
func LoadCalendar(name string) (Calendar, error) {
	if name == "" {
		return NewCalendar(time.UTC), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Calendar{}, err
	}
	return NewCalendar(loc), nil
}

// Location returns the calendar's location.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Date returns the civil date of t in the calendar's location.
func (c Calendar) Date(t time.Time) time.Time {
	return CivilDate(t.In(c.Location()))
}

// CivilDate drops the clock and zone of t, keeping its calendar date as
// seen in t's own location.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Sunday on or before the civil date of t.
func WeekStart(t time.Time) time.Time {
	d := CivilDate(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
