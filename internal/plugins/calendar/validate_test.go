package calendar

import (
	"strings"
	"testing"
	"time"
)

func validEvent() Event {
	return Event{
		Title: "Standup",
		Start: at(2024, time.November, 15, 9, 0),
		End:   at(2024, time.November, 15, 9, 30),
		Color: "#3b82f6",
	}
}

func TestValidateEvent_Valid(t *testing.T) {
	if errs := ValidateEvent(validEvent(), testOptions()); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidateEvent_Rules(t *testing.T) {
	tests := []struct {
		name   string
		modify func(e *Event)
		field  string
		msg    string
	}{
		{"empty title", func(e *Event) { e.Title = "" }, "title", MsgTitleRequired},
		{"title too long", func(e *Event) { e.Title = strings.Repeat("a", 101) }, "title", MsgTitleTooLong},
		{"description too long", func(e *Event) { e.Description = strings.Repeat("d", 501) }, "description", MsgDescriptionLong},
		{"end equals start", func(e *Event) { e.End = e.Start }, "end", MsgEndBeforeStart},
		{"end before start", func(e *Event) { e.End = e.Start.Add(-time.Minute) }, "end", MsgEndBeforeStart},
		{"bad color", func(e *Event) { e.Color = "blue" }, "color", MsgInvalidColor},
		{"unknown category", func(e *Event) { e.Category = "Gym" }, "category", MsgUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.modify(&e)
			errs := ValidateEvent(e, testOptions())
			if len(errs) != 1 {
				t.Fatalf("expected exactly one error, got %v", errs)
			}
			if errs[tt.field] != tt.msg {
				t.Errorf("expected %s=%q, got %v", tt.field, tt.msg, errs)
			}
		})
	}
}

func TestValidateEvent_LimitsCountCharacters(t *testing.T) {
	e := validEvent()
	e.Title = strings.Repeat("é", MaxTitleLength)
	e.Description = strings.Repeat("日", MaxDescriptionLength)
	if errs := ValidateEvent(e, testOptions()); len(errs) != 0 {
		t.Errorf("expected limits to count runes, got %v", errs)
	}
}

func TestValidateEvent_ReportsEveryField(t *testing.T) {
	e := Event{Start: at(2024, time.November, 15, 10, 0), End: at(2024, time.November, 15, 9, 0)}
	e.Description = strings.Repeat("x", 600)

	errs := ValidateEvent(e, testOptions())
	for _, field := range []string{"title", "description", "end"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected an error for %s, got %v", field, errs)
		}
	}
}

func TestFieldErrors_Err(t *testing.T) {
	if err := (FieldErrors{}).Err(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	err := FieldErrors{"title": MsgTitleRequired}.Err()
	assertAppError(t, err, 422)
}

func TestNormalizeEvent(t *testing.T) {
	e := NormalizeEvent(Event{
		Title:       "  <b>Launch</b> party ",
		Description: `<script>alert(1)</script>Cake &amp; drinks`,
		Color:       "#EF4444",
	}, testOptions())

	if e.Title != "Launch party" {
		t.Errorf("expected markup stripped from title, got %q", e.Title)
	}
	if strings.Contains(e.Description, "<") || !strings.Contains(e.Description, "Cake & drinks") {
		t.Errorf("unexpected description %q", e.Description)
	}
	if e.Color != "#ef4444" {
		t.Errorf("expected lowercased color, got %q", e.Color)
	}

	if got := NormalizeEvent(Event{Title: "x"}, testOptions()).Color; got != "#3b82f6" {
		t.Errorf("expected default color, got %q", got)
	}
}

func TestEventForm_Event(t *testing.T) {
	form := EventForm{
		Title:    "Review",
		Start:    "2024-11-15T14:00",
		End:      "2024-11-15T15:30",
		Category: "Work",
	}

	e, errs := form.Event(testOptions(), time.Local)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !e.Start.Equal(at(2024, time.November, 15, 14, 0)) || !e.End.Equal(at(2024, time.November, 15, 15, 30)) {
		t.Errorf("unexpected times %s - %s", e.Start, e.End)
	}
	if e.Color != "#3b82f6" {
		t.Errorf("expected default color, got %q", e.Color)
	}
	if e.ID != "" {
		t.Errorf("expected no ID, got %q", e.ID)
	}
}

func TestEventForm_BadTimes(t *testing.T) {
	_, errs := EventForm{Title: "x", Start: "tomorrow", End: "2024-11-15T15:30"}.Event(testOptions(), time.Local)
	if errs["start"] != MsgInvalidStart {
		t.Errorf("expected start error, got %v", errs)
	}
	if _, ok := errs["end"]; ok {
		t.Errorf("expected no end error when start is unparseable, got %v", errs)
	}

	_, errs = EventForm{Title: "x", Start: "2024-11-15T15:30", End: ""}.Event(testOptions(), time.Local)
	if errs["end"] != MsgInvalidEnd {
		t.Errorf("expected end error, got %v", errs)
	}
}

func TestEventForm_EndBeforeStart(t *testing.T) {
	_, errs := EventForm{Title: "x", Start: "2024-11-15T15:30", End: "2024-11-15T15:00"}.Event(testOptions(), time.Local)
	if errs["end"] != MsgEndBeforeStart {
		t.Errorf("expected %q, got %v", MsgEndBeforeStart, errs)
	}
}

func TestNewDateForm(t *testing.T) {
	f := NewDateForm(at(2024, time.November, 20, 0, 0), testOptions())
	if f.Start != "2024-11-20T09:00" || f.End != "2024-11-20T10:00" {
		t.Errorf("unexpected prefill %s - %s", f.Start, f.End)
	}
	if f.Color != "#3b82f6" || f.Title != "" {
		t.Errorf("unexpected form %+v", f)
	}
}

func TestFormFromEvent(t *testing.T) {
	e := validEvent()
	e.Category = "Work"
	f := FormFromEvent(e)
	if f.Title != "Standup" || f.Start != "2024-11-15T09:00" || f.End != "2024-11-15T09:30" || f.Category != "Work" {
		t.Errorf("unexpected form %+v", f)
	}
}
