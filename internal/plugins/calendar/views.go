package calendar

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/calview/internal/sanitize"
	"github.com/keyxmakerx/calview/internal/templates/layouts"
)

// ViewModel is everything one render of the widget needs.
type ViewModel struct {
	Widget  Widget
	Title   string
	Now     time.Time
	Month   [GridCells]Cell
	Week    [DaysPerWeek]Column
	Options Options
}

// BuildViewModel derives the grid for w's view from the visible events.
func BuildViewModel(w Widget, events []Event, now time.Time, opts Options) ViewModel {
	cellOpts := CellOptions{
		Now:        now,
		Selected:   w.Selected,
		Focus:      w.Focus.Index,
		DisplayCap: opts.DisplayCap,
		Drag:       w.Drag,
		Expanded:   w.Expanded,
	}
	vm := ViewModel{Widget: w, Title: w.State.Title(), Now: now, Options: opts}
	if w.State.View == ViewWeek {
		vm.Week = WeekColumns(w.State.Reference, events, cellOpts)
	} else {
		vm.Month = MonthCells(w.State.Reference, events, cellOpts)
	}
	return vm
}

// gridKeys is the hx-trigger filter for keys the widget handles. Escape
// works everywhere; the rest only when typing is not going into a control.
const gridKeys = `keydown[key=='Escape'||(!target.closest('input,textarea,select,button')&&(key=='ArrowLeft'||key=='ArrowRight'||key=='ArrowUp'||key=='ArrowDown'||key=='Home'||key=='End'||key=='Enter'||key==' '))]`

var weekdayNames = [DaysPerWeek]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WidgetPage renders the widget inside the full page layout.
func WidgetPage(vm ViewModel) templ.Component {
	return layouts.Base("Calendar - "+vm.Title, WidgetFragment(vm))
}

// WidgetFragment renders the swappable widget root. Every HTMX request in
// the widget replaces this element.
func WidgetFragment(vm ViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		view := vm.Widget.State.View

		h.printf(`<section id="calendar-widget" class="calendar calendar-%s" hx-target="#calendar-widget" hx-swap="outerHTML" hx-post="/calendar/keys" hx-trigger="%s" hx-vals='js:{key: event.key}'>`,
			view, attr(gridKeys))
		writeHeader(h, vm)
		if view == ViewWeek {
			writeWeek(h, vm)
		} else {
			writeMonth(h, vm)
		}
		if vm.Widget.Modal.IsOpen() {
			writeModal(h, vm)
		}
		h.printf(`</section>`)
		return h.err
	})
}

func writeHeader(h *htmlWriter, vm ViewModel) {
	view := vm.Widget.State.View
	h.printf(`<header class="calendar-header">`)
	h.printf(`<button type="button" hx-post="/calendar/nav/prev" aria-label="Previous %s">&lsaquo;</button>`, view)
	h.printf(`<h2 class="calendar-title">%s</h2>`, text(vm.Title))
	h.printf(`<button type="button" hx-post="/calendar/nav/next" aria-label="Next %s">&rsaquo;</button>`, view)
	h.printf(`<button type="button" hx-post="/calendar/nav/today">Today</button>`)
	h.printf(`<div class="view-toggle" role="group" aria-label="View">`)
	for _, v := range []View{ViewMonth, ViewWeek} {
		h.printf(`<button type="button" hx-post="/calendar/view/%s" aria-pressed="%t">%s</button>`,
			v, v == view, strings.ToUpper(string(v[:1]))+string(v[1:]))
	}
	h.printf(`</div></header>`)
}

func writeMonth(h *htmlWriter, vm ViewModel) {
	h.printf(`<div class="month-grid" role="grid" aria-label="%s">`, attr(vm.Title))
	h.printf(`<div class="month-row weekday-names" role="row">`)
	for _, name := range weekdayNames {
		h.printf(`<div role="columnheader">%s</div>`, name)
	}
	h.printf(`</div>`)

	_, hasFocus := vm.Widget.Focus.Focused()
	for row := 0; row < GridCells/DaysPerWeek; row++ {
		h.printf(`<div class="month-row" role="row">`)
		for col := 0; col < DaysPerWeek; col++ {
			writeCell(h, vm.Month[row*DaysPerWeek+col], hasFocus)
		}
		h.printf(`</div>`)
	}
	h.printf(`</div>`)
}

func writeCell(h *htmlWriter, c Cell, gridHasFocus bool) {
	classes := []string{"cell"}
	if !c.IsCurrent {
		classes = append(classes, "cell-outside")
	}
	if c.IsToday {
		classes = append(classes, "cell-today")
	}
	if c.IsSelected {
		classes = append(classes, "cell-selected")
	}

	// Roving tabindex: the focused cell, or the first cell before any focus.
	tabindex := -1
	if c.IsFocused || (!gridHasFocus && c.Index == 0) {
		tabindex = 0
	}

	h.printf(`<div class="%s" role="gridcell" tabindex="%d" data-index="%d" data-focused="%t" aria-selected="%t" aria-label="%s" hx-post="/calendar/cells/%d/select" hx-trigger="click">`,
		strings.Join(classes, " "), tabindex, c.Index, c.IsFocused, c.IsSelected,
		attr(c.Date.Format("Monday, January 2, 2006")), c.Index)
	h.printf(`<span class="day-number" hx-post="/calendar/cells/%d/focus" hx-trigger="focusin from:closest .cell">%d</span>`, c.Index, c.Date.Day())

	if len(c.Events) > 0 {
		h.printf(`<ul class="cell-events">`)
		for _, e := range c.Events {
			h.printf(`<li class="event-chip" style="background:%s" hx-post="/calendar/events/%s/open" hx-trigger="click consume" title="%s">%s</li>`,
				attr(chipColor(e)), attr(e.ID), attr(e.Title), text(e.Title))
		}
		h.printf(`</ul>`)
	}
	day := c.Date.Format("Monday, January 2, 2006")
	switch {
	case c.Overflow > 0:
		h.printf(`<button type="button" class="cell-more" aria-expanded="false" aria-label="Show all %d events on %s" hx-post="/calendar/cells/%d/more" hx-trigger="click consume">+%d more</button>`,
			len(c.Events)+c.Overflow, day, c.Index, c.Overflow)
	case c.IsExpanded:
		h.printf(`<button type="button" class="cell-more" aria-expanded="true" aria-label="Show fewer events on %s" hx-post="/calendar/cells/%d/more" hx-trigger="click consume">Show less</button>`,
			day, c.Index)
	}
	h.printf(`</div>`)
}

func writeWeek(h *htmlWriter, vm ViewModel) {
	drag := vm.Widget.Drag
	if drag.Dragging {
		// Releasing ends the gesture; leaving the grid abandons it.
		h.printf(`<div class="week-grid dragging" hx-post="/calendar/drag/up" hx-trigger="mouseup">`)
		h.printf(`<div class="week-grid-bounds" hx-post="/calendar/drag/cancel" hx-trigger="mouseleave from:closest .week-grid">`)
	} else {
		h.printf(`<div class="week-grid"><div class="week-grid-bounds">`)
	}

	h.printf(`<div class="week-head"><div class="hour-gutter"></div>`)
	for _, col := range vm.Week {
		cls := "week-day"
		if col.IsToday {
			cls += " week-day-today"
		}
		h.printf(`<div class="%s">%s %d</div>`, cls, weekdayNames[col.Index], col.Date.Day())
	}
	h.printf(`</div><div class="week-body"><div class="hour-gutter">`)
	for hour := 0; hour < HoursPerDay; hour++ {
		h.printf(`<div class="hour-label">%02d:00</div>`, hour)
	}
	h.printf(`</div>`)

	for _, col := range vm.Week {
		h.printf(`<div class="week-column" data-column="%d" style="height:%dpx">`, col.Index, HoursPerDay*PixelsPerHour)
		date := col.Date.Format(dateParamLayout)
		for _, slot := range col.Slots {
			cls := "slot"
			if slot.Pending {
				cls += " slot-pending"
			}
			if drag.Dragging {
				// A press here means the release of the previous gesture was
				// lost, so it starts a new one at this slot.
				vals := fmt.Sprintf(`js:{column:%d,date:"%s",hour:%d,press:event.type==="mousedown"}`, col.Index, date, slot.Hour)
				h.printf(`<div class="%s" data-column="%d" data-date="%s" data-hour="%d" hx-post="/calendar/drag/move" hx-trigger="mouseenter, mousedown" hx-vals='%s'></div>`,
					cls, col.Index, date, slot.Hour, vals)
			} else {
				vals := fmt.Sprintf(`{"column":%d,"date":"%s","hour":%d}`, col.Index, date, slot.Hour)
				h.printf(`<div class="%s" data-column="%d" data-date="%s" data-hour="%d" hx-post="/calendar/drag/down" hx-trigger="mousedown" hx-vals='%s'></div>`,
					cls, col.Index, date, slot.Hour, vals)
			}
		}
		for _, b := range col.Blocks {
			h.printf(`<div class="event-block" draggable="true" data-event-id="%s" style="top:%dpx;height:%dpx;background:%s" hx-post="/calendar/events/%s/open" hx-trigger="click">`,
				attr(b.Event.ID), b.Top, b.Height, attr(chipColor(b.Event)), attr(b.Event.ID))
			h.printf(`<strong>%s</strong><span>%s - %s</span></div>`,
				text(b.Event.Title), b.Event.Start.Format("15:04"), b.Event.End.Format("15:04"))
		}
		h.printf(`</div>`)
	}
	h.printf(`</div></div></div>`)
}

func writeModal(h *htmlWriter, vm ViewModel) {
	m := vm.Widget.Modal
	heading := "New Event"
	if m.Mode == ModalEdit {
		heading = "Edit Event"
	}

	h.printf(`<div class="modal-backdrop"><div class="modal" role="dialog" aria-modal="true" aria-labelledby="modal-title">`)
	h.printf(`<h3 id="modal-title">%s</h3>`, heading)

	if m.ConfirmDelete {
		h.printf(`<p>Delete &ldquo;%s&rdquo;? This cannot be undone.</p>`, text(m.Form.Title))
		h.printf(`<div class="modal-actions">`)
		h.printf(`<button type="button" class="danger" hx-post="/calendar/modal/confirm">Delete</button>`)
		h.printf(`<button type="button" hx-post="/calendar/modal/cancel">Cancel</button>`)
		h.printf(`</div></div></div>`)
		return
	}

	f := m.Form
	h.printf(`<form hx-post="/calendar/modal/save" novalidate>`)

	h.printf(`<label>Title <input type="text" name="title" value="%s" autofocus></label>`, attr(f.Title))
	writeFieldError(h, m.Errors, "title")

	h.printf(`<label>Description <textarea name="description" rows="3">%s</textarea></label>`, text(f.Description))
	writeFieldError(h, m.Errors, "description")

	h.printf(`<label>Start <input type="datetime-local" name="start" value="%s"></label>`, attr(f.Start))
	writeFieldError(h, m.Errors, "start")

	h.printf(`<label>End <input type="datetime-local" name="end" value="%s"></label>`, attr(f.End))
	writeFieldError(h, m.Errors, "end")

	h.printf(`<fieldset class="palette"><legend>Color</legend>`)
	for _, c := range vm.Options.Colors {
		h.printf(`<label class="swatch" style="background:%s"><input type="radio" name="color" value="%s"%s aria-label="%s"></label>`,
			attr(c), attr(c), checked(c == f.Color), attr(c))
	}
	h.printf(`</fieldset>`)
	writeFieldError(h, m.Errors, "color")

	h.printf(`<label>Category <select name="category"><option value="">None</option>`)
	for _, c := range vm.Options.Categories {
		h.printf(`<option value="%s"%s>%s</option>`, attr(c), selected(c == f.Category), text(c))
	}
	h.printf(`</select></label>`)
	writeFieldError(h, m.Errors, "category")

	h.printf(`<div class="modal-actions"><button type="submit">Save</button>`)
	h.printf(`<button type="button" hx-post="/calendar/modal/close">Cancel</button>`)
	if m.Mode == ModalEdit {
		h.printf(`<button type="button" class="danger" hx-post="/calendar/modal/delete">Delete</button>`)
	}
	h.printf(`</div></form></div></div>`)
}

func writeFieldError(h *htmlWriter, errs FieldErrors, field string) {
	if msg, ok := errs[field]; ok {
		h.printf(`<p class="field-error" data-field="%s">%s</p>`, field, text(msg))
	}
}

// chipColor returns a color safe for a style attribute.
func chipColor(e Event) string {
	if c := sanitize.Color(e.Color); c != "" {
		return c
	}
	return "#3b82f6"
}

func checked(b bool) string {
	if b {
		return " checked"
	}
	return ""
}

func selected(b bool) string {
	if b {
		return " selected"
	}
	return ""
}

func text(s string) string { return templ.EscapeString(s) }
func attr(s string) string { return templ.EscapeString(s) }

// htmlWriter stops writing after the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) printf(format string, args ...any) {
	if h.err != nil {
		return
	}
	if len(args) == 0 {
		_, h.err = io.WriteString(h.w, format)
		return
	}
	_, h.err = fmt.Fprintf(h.w, format, args...)
}
