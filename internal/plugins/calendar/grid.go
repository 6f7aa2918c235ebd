package calendar

import "time"

const (
	// GridCells is the size of the month grid: six full weeks.
	GridCells = 42

	// DaysPerWeek is the width of a grid row.
	DaysPerWeek = 7

	// HoursPerDay is the number of week-view time slots per column.
	HoursPerDay = 24
)

// StartOfDay returns t's calendar date at 00:00 in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns t's calendar date at 23:59:59.999.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// IsSameDay compares the year, month and day fields of a and b as they
// read on the wall clock. No zone normalization happens.
func IsSameDay(a, b time.Time) bool {
	return dayKey(a) == dayKey(b)
}

// dayKey packs a wall-clock date into a sortable int (yyyymmdd).
func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// MonthGrid returns the 42 consecutive days shown for ref's month, starting
// from the Sunday on or before the first of the month.
func MonthGrid(ref time.Time) [GridCells]time.Time {
	y, m, _ := ref.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
	start := first.AddDate(0, 0, -int(first.Weekday()))

	var days [GridCells]time.Time
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// WeekRange returns Sunday 00:00:00.000 through Saturday 23:59:59.999 of
// the week containing ref.
func WeekRange(ref time.Time) (start, end time.Time) {
	day := StartOfDay(ref)
	start = day.AddDate(0, 0, -int(day.Weekday()))
	end = EndOfDay(start.AddDate(0, 0, DaysPerWeek-1))
	return start, end
}

// WeekDays returns the seven dates of ref's week at 00:00, Sunday first.
func WeekDays(ref time.Time) [DaysPerWeek]time.Time {
	start, _ := WeekRange(ref)
	var days [DaysPerWeek]time.Time
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// VisibleRange returns the first and last instants shown by s's view.
func VisibleRange(s State) (from, to time.Time) {
	if s.View == ViewWeek {
		return WeekRange(s.Reference)
	}
	days := MonthGrid(s.Reference)
	return days[0], EndOfDay(days[GridCells-1])
}

// Cell is one day of the month grid, derived on every render.
type Cell struct {
	Index      int       `json:"index"`
	Date       time.Time `json:"date"`
	IsToday    bool      `json:"isToday"`
	IsCurrent  bool      `json:"isCurrentMonth"`
	IsSelected bool      `json:"isSelected"`
	IsFocused  bool      `json:"isFocused"`
	Events     []Event   `json:"events"`
	Overflow   int       `json:"overflow"`
	IsExpanded bool      `json:"isExpanded"`
}

// Column is one day of the week grid.
type Column struct {
	Index      int        `json:"index"`
	Date       time.Time  `json:"date"`
	IsToday    bool       `json:"isToday"`
	IsSelected bool       `json:"isSelected"`
	Slots      []HourCell `json:"slots"`
	Blocks     []Block    `json:"blocks"`
}

// HourCell is one week-view time slot.
type HourCell struct {
	Hour    int       `json:"hour"`
	Start   time.Time `json:"start"`
	Events  []Event   `json:"events"`
	Pending bool      `json:"pending"`
}

// CellOptions carries the per-render inputs of the grid builders.
type CellOptions struct {
	Now        time.Time
	Selected   *time.Time
	Focus      *int
	DisplayCap int
	Drag       DragState
	Expanded   *time.Time
}

// MonthCells builds the 42 month-grid descriptors for ref.
func MonthCells(ref time.Time, events []Event, opts CellOptions) [GridCells]Cell {
	_, month, _ := ref.Date()
	var cells [GridCells]Cell
	for i, day := range MonthGrid(ref) {
		onDay := EventsOnDay(events, day)
		visible, hidden := Overflow(onDay, opts.DisplayCap)
		expanded := hidden > 0 && opts.Expanded != nil && IsSameDay(day, *opts.Expanded)
		if expanded {
			visible, hidden = onDay, 0
		}
		cells[i] = Cell{
			Index:      i,
			Date:       day,
			IsToday:    IsSameDay(day, opts.Now),
			IsCurrent:  day.Month() == month,
			IsSelected: opts.Selected != nil && IsSameDay(day, *opts.Selected),
			IsFocused:  opts.Focus != nil && *opts.Focus == i,
			Events:     visible,
			Overflow:   hidden,
			IsExpanded: expanded,
		}
	}
	return cells
}

// WeekColumns builds the seven week-grid columns for ref. Slots covered by
// an in-progress drag are flagged Pending.
func WeekColumns(ref time.Time, events []Event, opts CellOptions) [DaysPerWeek]Column {
	var cols [DaysPerWeek]Column
	for i, day := range WeekDays(ref) {
		dayEvents := EventsOnDay(events, day)
		col := Column{
			Index:      i,
			Date:       day,
			IsToday:    IsSameDay(day, opts.Now),
			IsSelected: opts.Selected != nil && IsSameDay(day, *opts.Selected),
			Slots:      make([]HourCell, HoursPerDay),
			Blocks:     make([]Block, 0, len(dayEvents)),
		}
		for h := range col.Slots {
			col.Slots[h] = HourCell{
				Hour:    h,
				Start:   slotStart(day, h),
				Events:  EventsInTimeSlot(dayEvents, day, h),
				Pending: opts.Drag.Covers(i, slotStart(day, h)),
			}
		}
		for _, e := range dayEvents {
			col.Blocks = append(col.Blocks, BlockLayout(e, day))
		}
		cols[i] = col
	}
	return cols
}
