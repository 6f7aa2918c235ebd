package calendar

import (
	"time"

	"github.com/google/uuid"
)

// Widget is the full per-client interaction state: navigation, grid
// focus, the drag gesture, the modal and the selected date. It is what
// the session store persists between requests.
type Widget struct {
	State    State      `json:"state"`
	Focus    GridFocus  `json:"focus"`
	Drag     DragState  `json:"drag"`
	Modal    Modal      `json:"modal"`
	Selected *time.Time `json:"selected,omitempty"`

	// Expanded is the month cell showing all of its events instead of the
	// capped list.
	Expanded *time.Time `json:"expanded,omitempty"`
}

// InputKind names a discrete user input.
type InputKind string

const (
	InputPrev          InputKind = "prev"
	InputNext          InputKind = "next"
	InputToday         InputKind = "today"
	InputSetView       InputKind = "view"
	InputToggleView    InputKind = "toggle"
	InputFocusCell     InputKind = "focus"
	InputSelectCell    InputKind = "select"
	InputExpandCell    InputKind = "expand"
	InputKey           InputKind = "key"
	InputPointerDown   InputKind = "pointer_down"
	InputPointerMove   InputKind = "pointer_move"
	InputPointerUp     InputKind = "pointer_up"
	InputPointerCancel InputKind = "pointer_cancel"
	InputOpenEvent     InputKind = "open_event"
	InputDropEvent     InputKind = "drop_event"
	InputSave          InputKind = "save"
	InputClose         InputKind = "close"
	InputDelete        InputKind = "delete"
	InputConfirmDelete InputKind = "confirm_delete"
	InputCancelDelete  InputKind = "cancel_delete"
)

// Input is one user input. Only the fields relevant to Kind are read.
type Input struct {
	Kind  InputKind
	View  View
	Index int
	Key   Key
	Slot  Slot
	Event *Event
	Form  EventForm
}

// EffectKind names a call into the host's event store.
type EffectKind string

const (
	EffectAdd    EffectKind = "add"
	EffectUpdate EffectKind = "update"
	EffectDelete EffectKind = "delete"
)

// Effect is an intent for the host: add a new event, patch an event by ID,
// or delete by ID. The controller never touches the event list itself.
type Effect struct {
	Kind  EffectKind
	Event *Event
	ID    string
	Patch EventPatch
}

// Controller is the single dispatcher for widget inputs. It holds no
// per-client state; every call maps (widget, input) to a new widget and
// the effects to run.
type Controller struct {
	clock Clock
	opts  Options
	ids   func() string
}

// NewController creates a Controller that stamps new events with UUIDs.
func NewController(clock Clock, opts Options) *Controller {
	return &Controller{clock: clock, opts: opts, ids: uuid.NewString}
}

// WithIDGenerator replaces the event ID source.
func (c *Controller) WithIDGenerator(fn func() string) *Controller {
	c.ids = fn
	return c
}

// Options returns the widget options.
func (c *Controller) Options() Options {
	return c.opts
}

// Now reads the controller's clock.
func (c *Controller) Now() time.Time {
	return c.clock.Now()
}

func (c *Controller) newID() string {
	return c.ids()
}

func (c *Controller) location() *time.Location {
	return c.clock.Now().Location()
}

// NewWidget returns the initial widget state. A nil ref means today.
func (c *Controller) NewWidget(ref *time.Time, view View) Widget {
	r := StartOfDay(c.clock.Now())
	if ref != nil {
		r = *ref
	}
	return Widget{State: NewState(r, view)}
}

// Dispatch applies one input.
func (c *Controller) Dispatch(w Widget, in Input) (Widget, []Effect) {
	switch in.Kind {
	case InputPrev:
		w.State = w.State.Prev()
		w.Drag = w.Drag.Cancel()
		w.Expanded = nil
	case InputNext:
		w.State = w.State.Next()
		w.Drag = w.Drag.Cancel()
		w.Expanded = nil
	case InputToday:
		w.State = w.State.Today(c.clock)
		w.Drag = w.Drag.Cancel()
		w.Expanded = nil
	case InputSetView:
		next, err := w.State.SetView(in.View)
		if err == nil && next.View != w.State.View {
			w = resetGestures(w)
			w.State = next
		}
	case InputToggleView:
		w = resetGestures(w)
		w.State = w.State.ToggleView()

	case InputFocusCell:
		if w.State.View == ViewMonth {
			w.Focus = w.Focus.Focus(in.Index)
		}
	case InputSelectCell:
		if w.State.View == ViewMonth {
			w.Focus = w.Focus.Focus(in.Index)
			i, _ := w.Focus.Focused()
			w = c.selectDate(w, MonthGrid(w.State.Reference)[i])
		}
	case InputExpandCell:
		if w.State.View == ViewMonth {
			w = toggleExpanded(w, MonthGrid(w.State.Reference)[in.Index])
		}
	case InputKey:
		return c.handleKey(w, in.Key), nil

	case InputPointerDown:
		if w.State.View == ViewWeek && !w.Modal.IsOpen() {
			w.Drag = w.Drag.PointerDown(in.Slot)
		}
	case InputPointerMove:
		w.Drag = w.Drag.PointerMove(in.Slot)
	case InputPointerUp:
		next, span, ok := w.Drag.PointerUp()
		w.Drag = next
		if ok {
			day := StartOfDay(span.Start)
			w.Selected = &day
			w.Modal = OpenCreate(NewSpanForm(span, c.opts))
		}
	case InputPointerCancel:
		w.Drag = w.Drag.Cancel()

	case InputOpenEvent:
		if in.Event != nil {
			w.Modal = OpenEdit(*in.Event)
		}
	case InputDropEvent:
		if in.Event == nil {
			break
		}
		patch := MoveEvent(*in.Event, in.Slot.Day, in.Slot.Hour)
		if patch.IsEmpty() {
			break
		}
		return w, []Effect{{Kind: EffectUpdate, ID: in.Event.ID, Patch: patch}}

	case InputSave:
		var effects []Effect
		w.Modal, effects = w.Modal.Submit(in.Form, c.opts, c)
		return w, effects
	case InputClose:
		w.Modal = Modal{}
	case InputDelete:
		w.Modal = w.Modal.RequestDelete()
	case InputCancelDelete:
		w.Modal = w.Modal.CancelDelete()
	case InputConfirmDelete:
		var effects []Effect
		w.Modal, effects = w.Modal.ConfirmDeletion()
		return w, effects
	}
	return w, nil
}

// handleKey routes a key press. Escape backs out of the innermost thing
// in progress: the delete confirmation, then the modal, then a drag.
// Everything else goes to the month grid focus.
func (c *Controller) handleKey(w Widget, k Key) Widget {
	if w.Modal.IsOpen() {
		if k == KeyEscape {
			if w.Modal.ConfirmDelete {
				w.Modal = w.Modal.CancelDelete()
			} else {
				w.Modal = Modal{}
			}
		}
		return w
	}

	if k == KeyEscape {
		w.Drag = w.Drag.Cancel()
		return w
	}

	if w.State.View != ViewMonth {
		return w
	}

	focus, selected := w.Focus.HandleKey(k)
	w.Focus = focus
	if selected {
		i, _ := focus.Focused()
		w = c.selectDate(w, MonthGrid(w.State.Reference)[i])
	}
	return w
}

// selectDate marks day as selected and opens a create form for it.
func (c *Controller) selectDate(w Widget, day time.Time) Widget {
	d := StartOfDay(day)
	w.Selected = &d
	w.Modal = OpenCreate(NewDateForm(d, c.opts))
	return w
}

// toggleExpanded shows every event of day, or goes back to the capped
// list when day is already expanded.
func toggleExpanded(w Widget, day time.Time) Widget {
	if w.Expanded != nil && IsSameDay(*w.Expanded, day) {
		w.Expanded = nil
		return w
	}
	d := StartOfDay(day)
	w.Expanded = &d
	return w
}

// resetGestures clears focus, any drag and the expanded cell when the
// layout changes.
func resetGestures(w Widget) Widget {
	w.Focus = w.Focus.Blur()
	w.Drag = w.Drag.Cancel()
	w.Expanded = nil
	return w
}
