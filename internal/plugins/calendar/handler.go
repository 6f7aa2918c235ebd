package calendar

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/calview/internal/apperror"
	"github.com/keyxmakerx/calview/internal/middleware"
)

// dateParamLayout is the day format used in slot payloads and API queries.
const dateParamLayout = "2006-01-02"

// HandlerConfig holds the session cookie and initial widget settings.
type HandlerConfig struct {
	CookieName   string
	TTL          time.Duration
	SecureCookie bool
	InitialDate  *time.Time
	InitialView  View
}

// Handler serves the HTMX widget. Each request loads the client's widget
// state, dispatches one input, hands the resulting effects to the event
// service, saves the state, and re-renders the widget.
type Handler struct {
	ctrl     *Controller
	svc      EventService
	sessions SessionStore
	cfg      HandlerConfig
}

// NewHandler creates a new widget handler.
func NewHandler(ctrl *Controller, svc EventService, sessions SessionStore, cfg HandlerConfig) *Handler {
	if cfg.InitialView == "" {
		cfg.InitialView = ViewMonth
	}
	return &Handler{ctrl: ctrl, svc: svc, sessions: sessions, cfg: cfg}
}

// Show renders the full widget page (GET /calendar).
func (h *Handler) Show(c echo.Context) error {
	id, w, err := h.session(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Save(c.Request().Context(), id, w); err != nil {
		return err
	}
	return h.render(c, w)
}

// Navigate moves by one month or week, or jumps to today
// (POST /calendar/nav/:dir).
func (h *Handler) Navigate(c echo.Context) error {
	var kind InputKind
	switch c.Param("dir") {
	case "prev":
		kind = InputPrev
	case "next":
		kind = InputNext
	case "today":
		kind = InputToday
	default:
		return apperror.NewBadRequest("direction must be prev, next or today")
	}
	return h.dispatch(c, Input{Kind: kind})
}

// SetView switches between month and week (POST /calendar/view/:view).
func (h *Handler) SetView(c echo.Context) error {
	if c.Param("view") == "toggle" {
		return h.dispatch(c, Input{Kind: InputToggleView})
	}
	v, err := ParseView(c.Param("view"))
	if err != nil {
		return apperror.NewBadRequest(err.Error())
	}
	return h.dispatch(c, Input{Kind: InputSetView, View: v})
}

// FocusCell moves keyboard focus to a month cell
// (POST /calendar/cells/:index/focus).
func (h *Handler) FocusCell(c echo.Context) error {
	i, err := cellIndex(c)
	if err != nil {
		return err
	}
	return h.dispatch(c, Input{Kind: InputFocusCell, Index: i})
}

// SelectCell selects a month cell's date and opens the create form
// (POST /calendar/cells/:index/select).
func (h *Handler) SelectCell(c echo.Context) error {
	i, err := cellIndex(c)
	if err != nil {
		return err
	}
	return h.dispatch(c, Input{Kind: InputSelectCell, Index: i})
}

// ExpandCell toggles between a month cell's capped list and all of its
// events (POST /calendar/cells/:index/more).
func (h *Handler) ExpandCell(c echo.Context) error {
	i, err := cellIndex(c)
	if err != nil {
		return err
	}
	return h.dispatch(c, Input{Kind: InputExpandCell, Index: i})
}

// Key handles a key press on the widget (POST /calendar/keys).
func (h *Handler) Key(c echo.Context) error {
	return h.dispatch(c, Input{Kind: InputKey, Key: ParseKey(c.FormValue("key"))})
}

// DragDown starts a drag-to-create gesture (POST /calendar/drag/down).
func (h *Handler) DragDown(c echo.Context) error {
	slot, err := h.slotParam(c)
	if err != nil {
		return err
	}
	return h.dispatch(c, Input{Kind: InputPointerDown, Slot: slot})
}

// DragMove extends the gesture (POST /calendar/drag/move). With press=true
// the pointer went down again mid-gesture and the gesture restarts there.
func (h *Handler) DragMove(c echo.Context) error {
	slot, err := h.slotParam(c)
	if err != nil {
		return err
	}
	kind := InputPointerMove
	if c.FormValue("press") == "true" {
		kind = InputPointerDown
	}
	return h.dispatch(c, Input{Kind: kind, Slot: slot})
}

// DragUp commits the gesture and opens the create form
// (POST /calendar/drag/up).
func (h *Handler) DragUp(c echo.Context) error {
	return h.dispatch(c, Input{Kind: InputPointerUp})
}

// DragCancel abandons the gesture (POST /calendar/drag/cancel).
func (h *Handler) DragCancel(c echo.Context) error {
	return h.dispatch(c, Input{Kind: InputPointerCancel})
}

// OpenEvent opens the edit form for an event
// (POST /calendar/events/:eid/open).
func (h *Handler) OpenEvent(c echo.Context) error {
	evt, err := h.svc.Get(c.Request().Context(), c.Param("eid"))
	if err != nil {
		return err
	}
	return h.dispatch(c, Input{Kind: InputOpenEvent, Event: evt})
}

// DropEvent moves an event to the slot it was dropped on
// (POST /calendar/events/:eid/drop).
func (h *Handler) DropEvent(c echo.Context) error {
	slot, err := h.slotParam(c)
	if err != nil {
		return err
	}
	evt, err := h.svc.Get(c.Request().Context(), c.Param("eid"))
	if err != nil {
		return err
	}
	return h.dispatch(c, Input{Kind: InputDropEvent, Event: evt, Slot: slot})
}

// SaveModal submits the event form (POST /calendar/modal/save).
func (h *Handler) SaveModal(c echo.Context) error {
	var form EventForm
	if err := c.Bind(&form); err != nil {
		return apperror.NewBadRequest("invalid form")
	}
	return h.dispatch(c, Input{Kind: InputSave, Form: form})
}

// CloseModal discards the form (POST /calendar/modal/close).
func (h *Handler) CloseModal(c echo.Context) error {
	return h.dispatch(c, Input{Kind: InputClose})
}

// DeleteModal asks for delete confirmation (POST /calendar/modal/delete).
func (h *Handler) DeleteModal(c echo.Context) error {
	return h.dispatch(c, Input{Kind: InputDelete})
}

// ConfirmDelete deletes the open event (POST /calendar/modal/confirm).
func (h *Handler) ConfirmDelete(c echo.Context) error {
	return h.dispatch(c, Input{Kind: InputConfirmDelete})
}

// CancelDelete returns to the edit form (POST /calendar/modal/cancel).
func (h *Handler) CancelDelete(c echo.Context) error {
	return h.dispatch(c, Input{Kind: InputCancelDelete})
}

// --- Internal helpers ---

// dispatch runs one input through the controller and the event service.
// A save rejected by the service reopens the form with its field errors.
func (h *Handler) dispatch(c echo.Context, in Input) error {
	ctx := c.Request().Context()

	id, w, err := h.session(c)
	if err != nil {
		return err
	}

	next, effects := h.ctrl.Dispatch(w, in)
	applyErr := h.svc.Apply(ctx, effects)
	if applyErr != nil && in.Kind == InputSave {
		if fields := apperror.FieldErrors(applyErr); fields != nil {
			next.Modal = w.Modal
			next.Modal.Form = in.Form
			next.Modal.Errors = FieldErrors(fields)
			applyErr = nil
		}
	}

	if err := h.sessions.Save(ctx, id, next); err != nil {
		return err
	}
	if applyErr != nil {
		return applyErr
	}
	return h.render(c, next)
}

// session loads the client's widget, or starts a new one and sets the
// session cookie.
func (h *Handler) session(c echo.Context) (string, Widget, error) {
	if ck, err := c.Cookie(h.cfg.CookieName); err == nil && ck.Value != "" {
		w, err := h.sessions.Load(c.Request().Context(), ck.Value)
		if err != nil {
			return "", Widget{}, err
		}
		if w != nil {
			return ck.Value, *w, nil
		}
		return ck.Value, h.ctrl.NewWidget(h.cfg.InitialDate, h.cfg.InitialView), nil
	}

	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return id, h.ctrl.NewWidget(h.cfg.InitialDate, h.cfg.InitialView), nil
}

// render draws the widget with the events its grid can show. HTMX requests
// get the fragment, everything else the full page.
func (h *Handler) render(c echo.Context, w Widget) error {
	from, to := VisibleRange(w.State)
	events, err := h.svc.ListRange(c.Request().Context(), from, to)
	if err != nil {
		return err
	}

	vm := BuildViewModel(w, events, h.ctrl.Now(), h.ctrl.Options())
	if middleware.IsHTMX(c) {
		return middleware.Render(c, http.StatusOK, WidgetFragment(vm))
	}
	return middleware.Render(c, http.StatusOK, WidgetPage(vm))
}

func cellIndex(c echo.Context) (int, error) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil || i < 0 || i >= GridCells {
		return 0, apperror.NewBadRequest("cell index must be between 0 and 41")
	}
	return i, nil
}

// slotParam reads the column, date and hour of a week slot from the form.
func (h *Handler) slotParam(c echo.Context) (Slot, error) {
	col, err := strconv.Atoi(c.FormValue("column"))
	if err != nil || col < 0 || col >= DaysPerWeek {
		return Slot{}, apperror.NewBadRequest("column must be between 0 and 6")
	}
	hour, err := strconv.Atoi(c.FormValue("hour"))
	if err != nil || hour < 0 || hour >= HoursPerDay {
		return Slot{}, apperror.NewBadRequest("hour must be between 0 and 23")
	}
	day, err := time.ParseInLocation(dateParamLayout, c.FormValue("date"), h.ctrl.location())
	if err != nil {
		return Slot{}, apperror.NewBadRequest("date must be YYYY-MM-DD")
	}
	return Slot{Column: col, Day: day, Hour: hour}, nil
}
