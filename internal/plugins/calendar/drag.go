package calendar

import "time"

// Slot identifies a week-view time slot under the pointer.
type Slot struct {
	Column int       `json:"column"`
	Day    time.Time `json:"day"`
	Hour   int       `json:"hour"`
}

// Time is the slot's start, day@hour:00.
func (s Slot) Time() time.Time {
	return slotStart(s.Day, s.Hour)
}

// Span is a half-open [Start, End) interval.
type Span struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DragState tracks a drag-to-create gesture in the week view. The zero
// value is Idle.
type DragState struct {
	Dragging bool       `json:"dragging"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
	Column   *int       `json:"column,omitempty"`
}

// PointerDown starts a gesture at s with a one-hour span and locks the
// column. A press while already dragging restarts the gesture, since the
// previous release was lost.
func (d DragState) PointerDown(s Slot) DragState {
	start := s.Time()
	end := start.Add(time.Hour)
	col := s.Column
	return DragState{Dragging: true, Start: &start, End: &end, Column: &col}
}

// PointerMove extends the span to cover s. Moves in another column or
// before the start are ignored.
func (d DragState) PointerMove(s Slot) DragState {
	if !d.Dragging || d.Column == nil || d.Start == nil {
		return d
	}
	if s.Column != *d.Column {
		return d
	}
	candidate := s.Time()
	if candidate.Before(*d.Start) {
		return d
	}
	end := candidate.Add(time.Hour)
	d.End = &end
	return d
}

// PointerUp ends the gesture. ok is true when a span was committed; the
// returned state is always Idle. A release without any move commits the
// initial one-hour span.
func (d DragState) PointerUp() (next DragState, span Span, ok bool) {
	if !d.Dragging || d.Start == nil || d.End == nil {
		return DragState{}, Span{}, false
	}
	return DragState{}, Span{Start: *d.Start, End: *d.End}, true
}

// Cancel abandons the gesture without committing.
func (d DragState) Cancel() DragState {
	return DragState{}
}

// Pending returns the span being dragged.
func (d DragState) Pending() (Span, bool) {
	if !d.Dragging || d.Start == nil || d.End == nil {
		return Span{}, false
	}
	return Span{Start: *d.Start, End: *d.End}, true
}

// Covers reports whether the slot starting at t in column is inside the
// pending span.
func (d DragState) Covers(column int, t time.Time) bool {
	span, ok := d.Pending()
	if !ok || d.Column == nil || *d.Column != column {
		return false
	}
	return !t.Before(span.Start) && t.Before(span.End)
}

// MoveEvent computes the update for dropping e on day@hour. The new start
// keeps e's minute offset within the hour and the duration is preserved.
// The patch is empty when the drop lands where the event already is.
func MoveEvent(e Event, day time.Time, hour int) EventPatch {
	y, m, d := day.Date()
	start := time.Date(y, m, d, hour, e.Start.Minute(), e.Start.Second(), e.Start.Nanosecond(), day.Location())
	end := start.Add(e.Duration())

	moved := e
	moved.Start = start
	moved.End = end
	return Diff(e, moved)
}
