// Package calendar implements the calendar widget: month and week grids,
// event placement, navigation, the keyboard-focus and drag state machines,
// the event form, and the HTTP surface that drives them.
//
// All times are naive local wall-clock values. Nothing in this package
// converts between time zones.
package calendar

import (
	"fmt"
	"time"

	"github.com/keyxmakerx/calview/internal/config"
)

// View is the active grid layout.
type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
)

// ErrInvalidView is returned when a view other than month or week is requested.
var ErrInvalidView = fmt.Errorf("view must be %q or %q", ViewMonth, ViewWeek)

// ParseView converts a string into a View.
func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewMonth, ViewWeek:
		return View(s), nil
	default:
		return "", ErrInvalidView
	}
}

// Event is a time-boxed calendar entry.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"startDate"`
	End         time.Time `json:"endDate"`
	Color       string    `json:"color,omitempty"`
	Category    string    `json:"category,omitempty"`
}

// Duration returns End - Start. Negative for malformed events.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// EventPatch carries the changed fields of an update. Nil means unchanged.
type EventPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Start       *time.Time `json:"startDate,omitempty"`
	End         *time.Time `json:"endDate,omitempty"`
	Color       *string    `json:"color,omitempty"`
	Category    *string    `json:"category,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil &&
		p.Start == nil && p.End == nil &&
		p.Color == nil && p.Category == nil
}

// Apply returns e with the patch's fields overwritten.
func (p EventPatch) Apply(e Event) Event {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Start != nil {
		e.Start = *p.Start
	}
	if p.End != nil {
		e.End = *p.End
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	return e
}

// Diff returns a patch holding only the fields of after that differ from
// before. The ID is never part of a patch.
func Diff(before, after Event) EventPatch {
	var p EventPatch
	if after.Title != before.Title {
		p.Title = &after.Title
	}
	if after.Description != before.Description {
		p.Description = &after.Description
	}
	if !after.Start.Equal(before.Start) {
		p.Start = &after.Start
	}
	if !after.End.Equal(before.End) {
		p.End = &after.End
	}
	if after.Color != before.Color {
		p.Color = &after.Color
	}
	if after.Category != before.Category {
		p.Category = &after.Category
	}
	return p
}

// Clock supplies the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

// Now implements Clock.
func (c FixedClock) Now() time.Time { return c.T }

// Options are the widget settings shared by the grid, form and controller.
type Options struct {
	DisplayCap int
	Colors     []string
	Categories []string

	// Location anchors event times. Nil means time.Local.
	Location *time.Location
}

// OptionsFromConfig copies the widget section of the app config.
func OptionsFromConfig(w config.WidgetConfig) Options {
	return Options{
		DisplayCap: w.DisplayCap,
		Colors:     append([]string(nil), w.Colors...),
		Categories: append([]string(nil), w.Categories...),
	}
}

// Loc returns the zone event wall-clock times are kept in.
func (o Options) Loc() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

// WallClock keeps t's date and clock fields and drops its zone, re-reading
// them in loc. 23:30Z becomes 23:30 in loc, not the same instant.
func WallClock(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), loc)
}

// DefaultColor is the first palette entry, or "" if the palette is empty.
func (o Options) DefaultColor() string {
	if len(o.Colors) == 0 {
		return ""
	}
	return o.Colors[0]
}

// HasCategory reports whether name is one of the configured categories.
func (o Options) HasCategory(name string) bool {
	for _, c := range o.Categories {
		if c == name {
			return true
		}
	}
	return false
}
