package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/breezy/breezy/internal/advice"
	"github.com/breezy/breezy/internal/api/middleware"
	"github.com/breezy/breezy/internal/api/models"
	"github.com/breezy/breezy/internal/api/response"
	"github.com/breezy/breezy/internal/forecast"
	"github.com/breezy/breezy/internal/session"
	"github.com/breezy/breezy/internal/weather"
)

// ForecastHandler serves windows of a session's extended forecast.
type ForecastHandler struct {
	sessions *session.Service
	view     *forecast.View
}

// NewForecastHandler creates a new ForecastHandler.
func NewForecastHandler(sessions *session.Service, view *forecast.View) *ForecastHandler {
	return &ForecastHandler{sessions: sessions, view: view}
}

// Window handles GET /v1/sessions/current/forecast?view=&date=.
// view defaults to week and date to today.
func (h *ForecastHandler) Window(w http.ResponseWriter, r *http.Request) {
	g, err := forecast.ParseGranularity(r.URL.Query().Get("view"))
	if err != nil {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "view", Message: "view must be one of day, week, month, year", Code: "invalid"},
		})
		return
	}

	st, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	ref, ok := h.referenceDate(w, r)
	if !ok {
		return
	}

	win := h.view.Window(extendedDays(st), g, ref)

	out := models.ForecastWindow{
		View:      string(win.Granularity),
		Reference: win.Reference.Format(weather.DateLayout),
		Start:     win.Start.Format(weather.DateLayout),
		End:       win.End.Format(weather.DateLayout),
		Title:     win.Title,
		Outcome:   string(win.Outcome),
		Unit:      string(st.Unit),
		Previous:  forecast.Navigate(win.Reference, g, -1).Format(weather.DateLayout),
		Next:      forecast.Navigate(win.Reference, g, 1).Format(weather.DateLayout),
		Days:      make([]models.ForecastDay, 0, len(win.Days)),
	}
	for i := range win.Days {
		out.Days = append(out.Days, toDay(&win.Days[i], st.Unit, g == forecast.Day))
	}
	if g == forecast.Day && len(win.Days) > 0 {
		now := h.sessions.Now().In(h.sessions.Calendar().Location())
		if slot := forecast.CurrentHour(&win.Days[0], now); slot != nil {
			hour := toHour(slot, st.Unit)
			out.CurrentHour = &hour
		}
	}

	response.JSON(w, r, http.StatusOK, out)
}

// Year handles GET /v1/sessions/current/forecast/year?year=.
func (h *ForecastHandler) Year(w http.ResponseWriter, r *http.Request) {
	year := h.today().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1 || y > 9999 {
			response.BadRequest(w, r, "validation failed", []models.FieldError{
				{Field: "year", Message: "year must be a four-digit number", Code: "invalid"},
			})
			return
		}
		year = y
	}

	st, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	summary := h.view.YearSummary(extendedDays(st), year, st.Unit)
	response.JSON(w, r, http.StatusOK, toYear(summary))
}

// MonthGrid handles GET /v1/sessions/current/forecast/month-grid?date=.
func (h *ForecastHandler) MonthGrid(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	ref, ok := h.referenceDate(w, r)
	if !ok {
		return
	}

	grid := h.view.MonthGrid(extendedDays(st), ref, h.today())
	out := toGrid(grid, st.Unit)
	out.Previous = forecast.Navigate(ref, forecast.Month, -1).Format(weather.DateLayout)
	out.Next = forecast.Navigate(ref, forecast.Month, 1).Format(weather.DateLayout)
	response.JSON(w, r, http.StatusOK, out)
}

// Advice handles GET /v1/sessions/current/advice.
func (h *ForecastHandler) Advice(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if st.Snapshot == nil {
		response.NotFound(w, r, "no current conditions loaded for this session")
		return
	}
	response.JSON(w, r, http.StatusOK, toAdvice(advice.ForSnapshot(st.Snapshot)))
}

func (h *ForecastHandler) loadSession(w http.ResponseWriter, r *http.Request) (*session.State, bool) {
	st, err := h.sessions.Get(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeSessionError(w, r, err)
		return nil, false
	}
	return st, true
}

func (h *ForecastHandler) today() time.Time {
	return h.sessions.Calendar().Date(h.sessions.Now())
}

// referenceDate parses ?date= as YYYY-MM-DD, defaulting to today.
func (h *ForecastHandler) referenceDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return h.today(), true
	}
	ref, err := time.Parse(weather.DateLayout, raw)
	if err != nil {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "date", Message: "date must be formatted as YYYY-MM-DD", Code: "invalid"},
		})
		return time.Time{}, false
	}
	return ref, true
}

func extendedDays(st *session.State) []weather.ForecastDay {
	if st.Extended == nil {
		return nil
	}
	return st.Extended.Days
}
