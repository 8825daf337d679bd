package handler

import (
	"github.com/breezy/breezy/internal/advice"
	"github.com/breezy/breezy/internal/api/models"
	"github.com/breezy/breezy/internal/forecast"
	"github.com/breezy/breezy/internal/session"
	"github.com/breezy/breezy/internal/weather"
)

// Shown when the provider omits astronomical data for today.
const (
	defaultSunrise = "06:00 AM"
	defaultSunset  = "06:00 PM"
)

func toSession(st *session.State) models.Session {
	out := models.Session{
		ID:        st.ID,
		Query:     st.Query,
		Unit:      string(st.Unit),
		Theme:     string(st.Theme),
		Loading:   st.Loading,
		CreatedAt: models.Timestamp(st.CreatedAt),
		UpdatedAt: models.Timestamp(st.UpdatedAt),
	}
	if st.Error != "" {
		msg := st.Error
		out.Error = &msg
	}
	if !st.FetchedAt.IsZero() {
		out.FetchedAt = models.TimestampPtr(st.FetchedAt)
	}
	if st.Snapshot != nil {
		cur := toCurrent(st.Snapshot, st.Forecast, st.Unit)
		out.Current = &cur
	}
	if ext := st.Extended; ext != nil {
		out.Extended = &models.ExtendedCoverage{
			Start:    ext.Start.Format(weather.DateLayout),
			End:      ext.End.Format(weather.DateLayout),
			Days:     len(ext.Days),
			RealDays: ext.RealDays,
		}
	}
	return out
}

func toCurrent(snap *weather.Snapshot, fc *weather.Forecast, unit weather.Unit) models.CurrentWeather {
	c := snap.Current
	out := models.CurrentWeather{
		Location:      snap.Location.Name,
		Region:        snap.Location.Region,
		Country:       snap.Location.Country,
		Lat:           snap.Location.Lat,
		Lon:           snap.Location.Lon,
		Localtime:     snap.Location.Localtime,
		LastUpdated:   c.LastUpdated,
		Temperature:   snap.Temperature(unit),
		FeelsLike:     snap.FeelsLike(unit),
		UnitSymbol:    unit.Symbol(),
		Condition:     c.Condition.Text,
		ConditionCode: int(c.Condition.Code),
		Icon:          c.Condition.Icon,
		Family:        string(c.Condition.Code.Family()),
		Animation:     c.Condition.Code.Animation(),
		IsDay:         snap.IsDaytime(),
		Humidity:      c.Humidity,
		WindKph:       c.WindKph,
		WindDir:       c.WindDir,
		GustKph:       snap.Gust(),
		PressureMb:    c.PressureMb,
		PrecipMm:      c.PrecipMm,
		VisKm:         c.VisKm,
		Cloud:         c.Cloud,
		UV:            c.UV,
		Sunrise:       defaultSunrise,
		Sunset:        defaultSunset,
	}
	if fc != nil && len(fc.Days) > 0 {
		if astro := fc.Days[0].Astro; astro.Sunrise != "" {
			out.Sunrise = astro.Sunrise
		}
		if astro := fc.Days[0].Astro; astro.Sunset != "" {
			out.Sunset = astro.Sunset
		}
	}
	return out
}

func toDay(d *weather.ForecastDay, unit weather.Unit, withHours bool) models.ForecastDay {
	out := models.ForecastDay{
		Date:            d.Date,
		MaxTemp:         d.MaxTemp(unit),
		MinTemp:         d.MinTemp(unit),
		Condition:       d.Day.Condition.Text,
		ConditionCode:   int(d.Day.Condition.Code),
		Family:          string(d.Day.Condition.Code.Family()),
		ChanceOfRain:    d.Day.DailyChanceOfRain,
		Humidity:        d.Day.AvgHumidity,
		MaxWindKph:      d.Day.MaxWindKph,
		UV:              d.Day.UV,
		UVBand:          string(advice.UVBandFor(d.Day.UV)),
		TemperatureBand: string(advice.TemperatureBandFor(d.Day.MaxTempC)),
		Sunrise:         d.Astro.Sunrise,
		Sunset:          d.Astro.Sunset,
		MoonPhase:       d.Astro.MoonPhase,
	}
	if date, err := d.CalendarDate(); err == nil {
		out.Weekday = date.Weekday().String()
	}
	if withHours {
		out.Hours = make([]models.ForecastHour, 0, len(d.Hour))
		for i := range d.Hour {
			out.Hours = append(out.Hours, toHour(&d.Hour[i], unit))
		}
	}
	return out
}

func toHour(h *weather.HourSlot, unit weather.Unit) models.ForecastHour {
	return models.ForecastHour{
		Time:         h.Time,
		Temperature:  h.Temperature(unit),
		FeelsLike:    unit.Pick(h.FeelsLikeC, h.FeelsLikeF),
		Condition:    h.Condition.Text,
		Family:       string(h.Condition.Code.Family()),
		IsDay:        h.IsDay == 1,
		ChanceOfRain: h.ChanceOfRain,
		WindKph:      h.WindKph,
		WindDir:      h.WindDir,
		Humidity:     h.Humidity,
		UV:           h.UV,
	}
}

func toYear(s forecast.Summary) models.YearView {
	out := models.YearView{
		Year:     s.Year,
		Unit:     string(s.Unit),
		Outcome:  string(s.Outcome),
		Previous: s.Year - 1,
		Next:     s.Year + 1,
		Months:   make([]models.MonthSummary, 0, len(s.Months)),
	}
	for _, m := range s.Months {
		out.Months = append(out.Months, models.MonthSummary{
			Month:               m.Month,
			Name:                m.Name,
			AvgHigh:             m.AvgHighRounded,
			TemperatureBand:     string(advice.TemperatureBandFor(s.Unit.ToCelsius(m.AvgHigh))),
			MostCommonCondition: m.MostCommonCondition,
			Days:                m.Days,
		})
	}
	return out
}

func toGrid(g forecast.Grid, unit weather.Unit) models.MonthGrid {
	out := models.MonthGrid{
		Year:    g.Year,
		Month:   g.Month,
		Title:   g.Title,
		Outcome: string(g.Outcome),
		Weeks:   make([][]models.GridCell, 0, len(g.Weeks)),
	}
	for _, week := range g.Weeks {
		row := make([]models.GridCell, 0, len(week))
		for _, c := range week {
			cell := models.GridCell{
				Date:    c.Date.Format(weather.DateLayout),
				Day:     c.Date.Day(),
				InMonth: c.InMonth,
				Today:   c.Today,
			}
			if c.Day != nil {
				maxTemp := c.Day.MaxTemp(unit)
				cell.MaxTemp = &maxTemp
				cell.Family = string(c.Day.Day.Condition.Code.Family())
				cell.ConditionCode = int(c.Day.Day.Condition.Code)
			}
			row = append(row, cell)
		}
		out.Weeks = append(out.Weeks, row)
	}
	return out
}

func toAdvice(r advice.Report) models.Advice {
	out := models.Advice{
		Tips:            make([]models.AdviceTip, 0, len(r.Tips)),
		UVIndex:         r.UVIndex,
		UVLevel:         string(r.UVLevel),
		UVBand:          string(r.UVBand),
		UVProtection:    r.UVProtection,
		TemperatureBand: string(r.TemperatureBand),
		AirQuality:      string(r.AirQuality),
		GustKph:         r.GustKph,
	}
	for _, t := range r.Tips {
		out.Tips = append(out.Tips, models.AdviceTip{Kind: string(t.Kind), Message: t.Message})
	}
	return out
}
