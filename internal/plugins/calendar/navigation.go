package calendar

import (
	"fmt"
	"time"
)

// State is the navigation state: the reference date and the active view.
// Every transition returns a new State.
type State struct {
	Reference time.Time `json:"reference"`
	View      View      `json:"view"`
}

// NewState builds the initial state. An invalid view falls back to month.
func NewState(ref time.Time, view View) State {
	if _, err := ParseView(string(view)); err != nil {
		view = ViewMonth
	}
	return State{Reference: ref, View: view}
}

// NextMonth moves to day 1 of the following month. Resetting the day keeps
// Jan 31 from overflowing into March.
func (s State) NextMonth() State {
	return s.shiftMonth(1)
}

// PrevMonth moves to day 1 of the preceding month.
func (s State) PrevMonth() State {
	return s.shiftMonth(-1)
}

func (s State) shiftMonth(delta int) State {
	y, m, _ := s.Reference.Date()
	s.Reference = time.Date(y, m+time.Month(delta), 1, 0, 0, 0, 0, s.Reference.Location())
	return s
}

// NextWeek shifts the reference forward by exactly 7x24h.
func (s State) NextWeek() State {
	s.Reference = s.Reference.Add(7 * 24 * time.Hour)
	return s
}

// PrevWeek shifts the reference back by exactly 7x24h.
func (s State) PrevWeek() State {
	s.Reference = s.Reference.Add(-7 * 24 * time.Hour)
	return s
}

// Next advances by one unit of the active view.
func (s State) Next() State {
	if s.View == ViewWeek {
		return s.NextWeek()
	}
	return s.NextMonth()
}

// Prev goes back by one unit of the active view.
func (s State) Prev() State {
	if s.View == ViewWeek {
		return s.PrevWeek()
	}
	return s.PrevMonth()
}

// Today resets the reference to the clock's current date.
func (s State) Today(clock Clock) State {
	s.Reference = StartOfDay(clock.Now())
	return s
}

// SetView replaces the view. Anything other than month or week is refused
// and the state is returned unchanged.
func (s State) SetView(v View) (State, error) {
	if _, err := ParseView(string(v)); err != nil {
		return s, err
	}
	s.View = v
	return s, nil
}

// ToggleView switches between month and week.
func (s State) ToggleView() State {
	if s.View == ViewMonth {
		s.View = ViewWeek
	} else {
		s.View = ViewMonth
	}
	return s
}

// Title is the header label: "November 2025" for a month,
// "Nov 9 - Nov 15, 2025" for a week.
func (s State) Title() string {
	if s.View == ViewWeek {
		start, end := WeekRange(s.Reference)
		if start.Year() != end.Year() {
			return fmt.Sprintf("%s - %s", start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
		}
		return fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
	}
	return s.Reference.Format("January 2006")
}
