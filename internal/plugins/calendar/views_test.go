package calendar

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func renderFragment(t *testing.T, vm ViewModel) string {
	t.Helper()
	var buf bytes.Buffer
	if err := WidgetFragment(vm).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestWidgetFragment_EscapesEventText(t *testing.T) {
	c := newTestController()
	w := monthWidget(c)
	e := Event{
		ID:    `x"><b>`,
		Title: `<script>alert("hi")</script>`,
		Start: at(2024, time.November, 15, 9, 0),
		End:   at(2024, time.November, 15, 10, 0),
		Color: `red;background:url(evil)`,
	}

	html := renderFragment(t, BuildViewModel(w, []Event{e}, c.Now(), c.Options()))
	if strings.Contains(html, "<script>") || strings.Contains(html, `"><b>`) {
		t.Error("expected event text to be escaped")
	}
	if strings.Contains(html, "url(evil)") {
		t.Error("expected an invalid color to be replaced")
	}
	assertContains(t, html, "&lt;script&gt;")
}

func TestWidgetFragment_MonthGrid(t *testing.T) {
	c := newTestController()
	w := monthWidget(c)
	w, _ = c.Dispatch(w, Input{Kind: InputFocusCell, Index: 8})

	html := renderFragment(t, BuildViewModel(w, nil, c.Now(), c.Options()))
	if n := strings.Count(html, `role="gridcell"`); n != GridCells {
		t.Errorf("expected %d cells, got %d", GridCells, n)
	}
	if n := strings.Count(html, `tabindex="0"`); n != 1 {
		t.Errorf("expected exactly one tabbable cell, got %d", n)
	}
	assertContains(t, html, `tabindex="0" data-index="8" data-focused="true"`)
	assertContains(t, html, "cell-today")
	assertContains(t, html, `aria-pressed="true">Month</button>`)
}

func TestWidgetFragment_WeekGridDragging(t *testing.T) {
	c := newTestController()
	w := weekWidget(c)

	idle := renderFragment(t, BuildViewModel(w, nil, c.Now(), c.Options()))
	assertContains(t, idle, `hx-post="/calendar/drag/down"`)
	if strings.Contains(idle, `hx-post="/calendar/drag/move"`) {
		t.Error("expected no move targets while idle")
	}
	if n := strings.Count(idle, `class="slot"`); n != DaysPerWeek*HoursPerDay {
		t.Errorf("expected %d slots, got %d", DaysPerWeek*HoursPerDay, n)
	}

	w, _ = c.Dispatch(w, Input{Kind: InputPointerDown, Slot: Slot{Column: 3, Day: wed, Hour: 10}})
	dragging := renderFragment(t, BuildViewModel(w, nil, c.Now(), c.Options()))
	assertContains(t, dragging, `hx-post="/calendar/drag/move"`)
	assertContains(t, dragging, `hx-trigger="mouseenter, mousedown"`)
	assertContains(t, dragging, `hx-post="/calendar/drag/up"`)
	assertContains(t, dragging, `hx-post="/calendar/drag/cancel"`)
	if n := strings.Count(dragging, "slot-pending"); n != 1 {
		t.Errorf("expected one pending slot, got %d", n)
	}
}

func TestWidgetFragment_ModalErrors(t *testing.T) {
	c := newTestController()
	w := monthWidget(c)
	w, _ = c.Dispatch(w, Input{Kind: InputSelectCell, Index: 19})
	form := w.Modal.Form
	form.Title = strings.Repeat("t", MaxTitleLength+1)
	w, _ = c.Dispatch(w, Input{Kind: InputSave, Form: form})

	html := renderFragment(t, BuildViewModel(w, nil, c.Now(), c.Options()))
	assertContains(t, html, `role="dialog"`)
	assertContains(t, html, `data-field="title"`)
	assertContains(t, html, MsgTitleTooLong)
	if strings.Contains(html, `hx-post="/calendar/modal/delete"`) {
		t.Error("expected no delete button when creating")
	}
}
