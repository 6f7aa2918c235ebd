package calendar

import (
	"strings"
	"time"
)

// FormTimeLayout is the datetime-local input format.
const FormTimeLayout = "2006-01-02T15:04"

// EventForm is the raw modal form as submitted.
type EventForm struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Start       string `form:"start" json:"start"`
	End         string `form:"end" json:"end"`
	Color       string `form:"color" json:"color"`
	Category    string `form:"category" json:"category"`
}

// NewDateForm prefills a create form for a selected date: 09:00 to 10:00.
func NewDateForm(date time.Time, opts Options) EventForm {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 9, 0, 0, 0, date.Location())
	return NewSpanForm(Span{Start: start, End: start.Add(time.Hour)}, opts)
}

// NewSpanForm prefills a create form with a dragged span.
func NewSpanForm(span Span, opts Options) EventForm {
	return EventForm{
		Start: span.Start.Format(FormTimeLayout),
		End:   span.End.Format(FormTimeLayout),
		Color: opts.DefaultColor(),
	}
}

// FormFromEvent fills the edit form with e's values.
func FormFromEvent(e Event) EventForm {
	return EventForm{
		Title:       e.Title,
		Description: e.Description,
		Start:       e.Start.Format(FormTimeLayout),
		End:         e.End.Format(FormTimeLayout),
		Color:       e.Color,
		Category:    e.Category,
	}
}

// Event parses and validates the form into an event without an ID. Times
// are read as local wall-clock values in loc.
func (f EventForm) Event(opts Options, loc *time.Location) (Event, FieldErrors) {
	errs := FieldErrors{}

	start, err := time.ParseInLocation(FormTimeLayout, strings.TrimSpace(f.Start), loc)
	if err != nil {
		errs["start"] = MsgInvalidStart
	}
	end, err := time.ParseInLocation(FormTimeLayout, strings.TrimSpace(f.End), loc)
	if err != nil {
		errs["end"] = MsgInvalidEnd
	}

	e := NormalizeEvent(Event{
		Title:       f.Title,
		Description: f.Description,
		Start:       start,
		End:         end,
		Color:       f.Color,
		Category:    f.Category,
	}, opts)

	for field, msg := range ValidateEvent(e, opts) {
		// An unparseable time already has its own message.
		if _, taken := errs[field]; taken {
			continue
		}
		if field == "end" && errs["start"] != "" {
			continue
		}
		errs[field] = msg
	}
	return e, errs
}
