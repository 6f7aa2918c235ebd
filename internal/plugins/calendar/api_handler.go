package calendar

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/calview/internal/apperror"
)

// maxImportBytes caps an uploaded ICS body.
const maxImportBytes = 2 << 20

// APIHandler serves the JSON event and grid endpoints.
type APIHandler struct {
	svc   EventService
	clock Clock
	opts  Options
}

// NewAPIHandler creates a new JSON API handler.
func NewAPIHandler(svc EventService, clock Clock, opts Options) *APIHandler {
	return &APIHandler{svc: svc, clock: clock, opts: opts}
}

// DayEventsResponse is the month-cell view of one day.
type DayEventsResponse struct {
	Date     string  `json:"date"`
	Events   []Event `json:"events"`
	Overflow int     `json:"overflow"`
}

// SlotEventsResponse is the week-slot view of one hour.
type SlotEventsResponse struct {
	Date   string  `json:"date"`
	Hour   int     `json:"hour"`
	Events []Event `json:"events"`
}

// WeekResponse describes the visible week.
type WeekResponse struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Title   string    `json:"title"`
	Columns []Column  `json:"columns"`
}

// MonthResponse describes the visible month.
type MonthResponse struct {
	Title string `json:"title"`
	Cells []Cell `json:"cells"`
}

// ListEvents returns all events, or those in [from, to] when both are
// given (GET /api/v1/events).
func (h *APIHandler) ListEvents(c echo.Context) error {
	ctx := c.Request().Context()

	fromStr, toStr := c.QueryParam("from"), c.QueryParam("to")
	if fromStr == "" && toStr == "" {
		events, err := h.svc.List(ctx)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, events)
	}

	from, err := h.timeParam(fromStr)
	if err != nil {
		return apperror.NewBadRequest("invalid from")
	}
	to, err := h.timeParam(toStr)
	if err != nil {
		return apperror.NewBadRequest("invalid to")
	}
	events, err := h.svc.ListRange(ctx, from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

// CreateEvent adds an event with a fresh ID (POST /api/v1/events).
func (h *APIHandler) CreateEvent(c echo.Context) error {
	var evt Event
	if err := c.Bind(&evt); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	evt.ID = ""

	created, err := h.svc.Add(c.Request().Context(), evt)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// GetEvent returns one event (GET /api/v1/events/:eid).
func (h *APIHandler) GetEvent(c echo.Context) error {
	evt, err := h.svc.Get(c.Request().Context(), c.Param("eid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, evt)
}

// UpdateEvent applies a partial update (PATCH /api/v1/events/:eid).
func (h *APIHandler) UpdateEvent(c echo.Context) error {
	var patch EventPatch
	if err := c.Bind(&patch); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	updated, err := h.svc.Update(c.Request().Context(), c.Param("eid"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteEvent removes an event (DELETE /api/v1/events/:eid).
func (h *APIHandler) DeleteEvent(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("eid")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DayEvents returns the events on a day with the display cap applied
// (GET /api/v1/events/day?date=YYYY-MM-DD).
func (h *APIHandler) DayEvents(c echo.Context) error {
	day, err := h.dateParam(c)
	if err != nil {
		return err
	}
	events, err := h.svc.ListRange(c.Request().Context(), StartOfDay(day), EndOfDay(day))
	if err != nil {
		return err
	}

	visible, hidden := Overflow(EventsOnDay(events, day), h.opts.DisplayCap)
	return c.JSON(http.StatusOK, DayEventsResponse{
		Date:     day.Format(dateParamLayout),
		Events:   visible,
		Overflow: hidden,
	})
}

// SlotEvents returns the events overlapping one hour
// (GET /api/v1/events/slot?date=YYYY-MM-DD&hour=H).
func (h *APIHandler) SlotEvents(c echo.Context) error {
	day, err := h.dateParam(c)
	if err != nil {
		return err
	}
	hour, err := strconv.Atoi(c.QueryParam("hour"))
	if err != nil || hour < 0 || hour >= HoursPerDay {
		return apperror.NewBadRequest("hour must be between 0 and 23")
	}

	events, err := h.svc.ListRange(c.Request().Context(), StartOfDay(day), EndOfDay(day))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SlotEventsResponse{
		Date:   day.Format(dateParamLayout),
		Hour:   hour,
		Events: EventsInTimeSlot(events, day, hour),
	})
}

// MonthGrid returns the 42 cells of the month containing date
// (GET /api/v1/grid/month?date=YYYY-MM-DD).
func (h *APIHandler) MonthGrid(c echo.Context) error {
	ref, err := h.dateParam(c)
	if err != nil {
		return err
	}
	state := NewState(ref, ViewMonth)
	from, to := VisibleRange(state)
	events, err := h.svc.ListRange(c.Request().Context(), from, to)
	if err != nil {
		return err
	}

	cells := MonthCells(ref, events, CellOptions{Now: h.clock.Now(), DisplayCap: h.opts.DisplayCap})
	return c.JSON(http.StatusOK, MonthResponse{Title: state.Title(), Cells: cells[:]})
}

// WeekGrid returns the week containing date
// (GET /api/v1/grid/week?date=YYYY-MM-DD).
func (h *APIHandler) WeekGrid(c echo.Context) error {
	ref, err := h.dateParam(c)
	if err != nil {
		return err
	}
	state := NewState(ref, ViewWeek)
	start, end := WeekRange(ref)
	events, err := h.svc.ListRange(c.Request().Context(), start, end)
	if err != nil {
		return err
	}

	cols := WeekColumns(ref, events, CellOptions{Now: h.clock.Now(), DisplayCap: h.opts.DisplayCap})
	return c.JSON(http.StatusOK, WeekResponse{Start: start, End: end, Title: state.Title(), Columns: cols[:]})
}

// ExportICS downloads every event as iCalendar (GET /api/v1/calendar.ics).
func (h *APIHandler) ExportICS(c echo.Context) error {
	events, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	c.Response().Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(ExportICS(events, h.clock.Now())))
}

// ImportICS adds the VEVENTs of an uploaded iCalendar body
// (POST /api/v1/calendar.ics).
func (h *APIHandler) ImportICS(c echo.Context) error {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, maxImportBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		return apperror.NewBadRequest("calendar body is too large or unreadable")
	}

	events, err := ParseICS(bytes.NewReader(data), h.clock.Now().Location())
	if err != nil {
		return apperror.NewBadRequest("invalid iCalendar data")
	}

	res, err := h.svc.Import(c.Request().Context(), events)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// dateParam reads the date query parameter, defaulting to today.
func (h *APIHandler) dateParam(c echo.Context) (time.Time, error) {
	s := c.QueryParam("date")
	if s == "" {
		return StartOfDay(h.clock.Now()), nil
	}
	d, err := time.ParseInLocation(dateParamLayout, s, h.clock.Now().Location())
	if err != nil {
		return time.Time{}, apperror.NewBadRequest("date must be YYYY-MM-DD")
	}
	return d, nil
}

// timeParam accepts a date, a local datetime, or RFC 3339. An RFC 3339
// offset is dropped in favour of its wall-clock fields.
func (h *APIHandler) timeParam(s string) (time.Time, error) {
	loc := h.clock.Now().Location()
	for _, layout := range []string{dateParamLayout, FormTimeLayout, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return WallClock(t, loc), nil
}
