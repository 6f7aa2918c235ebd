package calendar

import (
	"testing"
	"time"
)

func TestMonthGrid_Shape(t *testing.T) {
	refs := []time.Time{
		at(2024, time.November, 15, 14, 30), // month starts on a Friday
		at(2025, time.February, 1, 0, 0),    // starts on a Saturday
		at(2024, time.September, 1, 0, 0),   // starts on a Sunday
		at(2026, time.March, 31, 23, 59),
		at(2024, time.December, 31, 12, 0),
	}

	for _, ref := range refs {
		t.Run(ref.Format("2006-01"), func(t *testing.T) {
			days := MonthGrid(ref)

			if days[0].Weekday() != time.Sunday {
				t.Errorf("expected first cell on Sunday, got %s", days[0].Weekday())
			}
			for i := 1; i < GridCells; i++ {
				if !days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
					t.Fatalf("cell %d (%s) does not follow cell %d (%s)", i, days[i], i-1, days[i-1])
				}
			}

			first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
			found := -1
			for i := 0; i < DaysPerWeek; i++ {
				if days[i].Equal(first) {
					found = i
				}
			}
			if found != int(first.Weekday()) {
				t.Errorf("expected day 1 at index %d, found at %d", first.Weekday(), found)
			}

			// Index 14 is always in the reference month.
			if days[14].Month() != ref.Month() {
				t.Errorf("expected cell 14 in %s, got %s", ref.Month(), days[14])
			}
		})
	}
}

func TestMonthGrid_November2024(t *testing.T) {
	days := MonthGrid(at(2024, time.November, 15, 0, 0))

	if want := at(2024, time.October, 27, 0, 0); !days[0].Equal(want) {
		t.Errorf("expected grid to start %s, got %s", want, days[0])
	}
	if want := at(2024, time.December, 7, 0, 0); !days[41].Equal(want) {
		t.Errorf("expected grid to end %s, got %s", want, days[41])
	}
	if !days[5].Equal(at(2024, time.November, 1, 0, 0)) {
		t.Errorf("expected Nov 1 at index 5, got %s", days[5])
	}
}

func TestWeekRange(t *testing.T) {
	tests := []struct {
		name string
		ref  time.Time
	}{
		{"wednesday", at(2024, time.November, 13, 10, 30)},
		{"sunday midnight", at(2024, time.November, 10, 0, 0)},
		{"saturday night", at(2024, time.November, 16, 23, 59)},
	}

	wantStart := at(2024, time.November, 10, 0, 0)
	wantEnd := time.Date(2024, time.November, 16, 23, 59, 59, int(999*time.Millisecond), time.Local)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekRange(tt.ref)
			if !start.Equal(wantStart) {
				t.Errorf("expected start %s, got %s", wantStart, start)
			}
			if !end.Equal(wantEnd) {
				t.Errorf("expected end %s, got %s", wantEnd, end)
			}
		})
	}
}

func TestWeekRange_CrossesYear(t *testing.T) {
	start, end := WeekRange(at(2025, time.January, 1, 12, 0))
	if !start.Equal(at(2024, time.December, 29, 0, 0)) {
		t.Errorf("unexpected start %s", start)
	}
	if end.Year() != 2025 || end.Month() != time.January || end.Day() != 4 {
		t.Errorf("unexpected end %s", end)
	}
}

func TestIsSameDay(t *testing.T) {
	a := at(2024, time.November, 15, 0, 0)
	if !IsSameDay(a, at(2024, time.November, 15, 23, 59)) {
		t.Error("expected same day")
	}
	if IsSameDay(a, at(2024, time.November, 16, 0, 0)) {
		t.Error("expected different days")
	}
	if IsSameDay(a, at(2025, time.November, 15, 0, 0)) {
		t.Error("expected different years to differ")
	}
}

func TestVisibleRange(t *testing.T) {
	from, to := VisibleRange(NewState(at(2024, time.November, 15, 0, 0), ViewMonth))
	if !from.Equal(at(2024, time.October, 27, 0, 0)) {
		t.Errorf("unexpected month from %s", from)
	}
	if !IsSameDay(to, at(2024, time.December, 7, 0, 0)) || to.Hour() != 23 {
		t.Errorf("unexpected month to %s", to)
	}

	from, _ = VisibleRange(NewState(at(2024, time.November, 13, 0, 0), ViewWeek))
	if !from.Equal(at(2024, time.November, 10, 0, 0)) {
		t.Errorf("unexpected week from %s", from)
	}
}

func TestMonthCells_Flags(t *testing.T) {
	ref := at(2024, time.November, 15, 0, 0)
	selected := at(2024, time.November, 20, 0, 0)
	focus := 3

	var events []Event
	for i := 1; i <= 5; i++ {
		events = append(events, mkEvent("e"+string(rune('0'+i)), at(2024, time.November, 15, 8+i, 0), at(2024, time.November, 15, 9+i, 0)))
	}

	cells := MonthCells(ref, events, CellOptions{
		Now:        at(2024, time.November, 15, 12, 0),
		Selected:   &selected,
		Focus:      &focus,
		DisplayCap: 3,
	})

	if cells[0].IsCurrent {
		t.Error("expected Oct 27 to be outside the month")
	}
	if !cells[5].IsCurrent {
		t.Error("expected Nov 1 to be in the month")
	}
	if !cells[19].IsToday {
		t.Errorf("expected Nov 15 (index 19) to be today, got %s", cells[19].Date)
	}
	if !cells[24].IsSelected {
		t.Errorf("expected Nov 20 (index 24) to be selected, got %s", cells[24].Date)
	}
	if !cells[3].IsFocused || cells[4].IsFocused {
		t.Error("expected only index 3 focused")
	}

	assertIDs(t, cells[19].Events, "e1", "e2", "e3")
	if cells[19].Overflow != 2 {
		t.Errorf("expected overflow 2, got %d", cells[19].Overflow)
	}
	if len(cells[20].Events) != 0 || cells[20].Overflow != 0 {
		t.Errorf("expected empty Nov 16, got %d events", len(cells[20].Events))
	}
}

func TestWeekColumns(t *testing.T) {
	ref := at(2024, time.November, 13, 0, 0)
	meeting := mkEvent("m", at(2024, time.November, 13, 9, 30), at(2024, time.November, 13, 11, 0))

	d := DragState{}.PointerDown(Slot{Column: 3, Day: ref, Hour: 14})
	d = d.PointerMove(Slot{Column: 3, Day: ref, Hour: 15})

	cols := WeekColumns(ref, []Event{meeting}, CellOptions{Now: ref, Drag: d})

	wed := cols[3]
	if !IsSameDay(wed.Date, ref) {
		t.Fatalf("expected column 3 to be Nov 13, got %s", wed.Date)
	}
	if len(wed.Slots) != HoursPerDay {
		t.Fatalf("expected %d slots, got %d", HoursPerDay, len(wed.Slots))
	}
	assertIDs(t, wed.Slots[9].Events, "m")
	assertIDs(t, wed.Slots[10].Events, "m")
	assertIDs(t, wed.Slots[11].Events)

	if len(wed.Blocks) != 1 || wed.Blocks[0].Top != 570 || wed.Blocks[0].Height != 90 {
		t.Errorf("unexpected block layout: %+v", wed.Blocks)
	}

	for h, slot := range wed.Slots {
		want := h == 14 || h == 15
		if slot.Pending != want {
			t.Errorf("hour %d: expected pending=%t", h, want)
		}
	}
	for _, slot := range cols[4].Slots {
		if slot.Pending {
			t.Error("expected no pending slots outside the locked column")
		}
	}
}
