package calendar

import (
	"strings"
	"unicode/utf8"

	"github.com/keyxmakerx/calview/internal/apperror"
	"github.com/keyxmakerx/calview/internal/sanitize"
)

// Limits enforced by the event form, counted in characters (runes).
// MaxIDLength bounds imported iCalendar UIDs to the id column.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxIDLength          = 255
)

// Field-level validation messages.
const (
	MsgTitleRequired   = "Title is required"
	MsgTitleTooLong    = "Title must be less than 100 characters"
	MsgDescriptionLong = "Description must be less than 500 characters"
	MsgEndBeforeStart  = "End time must be after start time"
	MsgInvalidStart    = "Start time is not a valid date"
	MsgInvalidEnd      = "End time is not a valid date"
	MsgInvalidColor    = "Color must be a hex value like #3b82f6"
	MsgUnknownCategory = "Category is not one of the configured categories"
	MsgIDTooLong       = "ID must be at most 255 characters"
)

// FieldErrors maps field names (id, title, description, start, end, color,
// category) to a message. Empty means valid.
type FieldErrors map[string]string

// Err converts non-empty field errors into a 422 AppError.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return apperror.NewFieldValidation(fe)
}

// NormalizeEvent strips markup from the text fields, lowercases the color
// and fills in the default color. Times keep their wall-clock fields and
// are re-anchored to opts.Loc(), whatever offset they arrived with.
func NormalizeEvent(e Event, opts Options) Event {
	e.Start = WallClock(e.Start, opts.Loc())
	e.End = WallClock(e.End, opts.Loc())
	e.Title = sanitize.PlainText(e.Title)
	e.Description = sanitize.PlainText(e.Description)
	e.Category = sanitize.PlainText(e.Category)

	raw := strings.TrimSpace(e.Color)
	switch {
	case raw == "":
		e.Color = opts.DefaultColor()
	case sanitize.Color(raw) != "":
		e.Color = sanitize.Color(raw)
	default:
		e.Color = raw
	}
	return e
}

// ValidateEvent checks a normalized event against the form rules.
func ValidateEvent(e Event, opts Options) FieldErrors {
	errs := FieldErrors{}

	if utf8.RuneCountInString(e.ID) > MaxIDLength {
		errs["id"] = MsgIDTooLong
	}

	switch n := utf8.RuneCountInString(e.Title); {
	case n == 0:
		errs["title"] = MsgTitleRequired
	case n > MaxTitleLength:
		errs["title"] = MsgTitleTooLong
	}

	if utf8.RuneCountInString(e.Description) > MaxDescriptionLength {
		errs["description"] = MsgDescriptionLong
	}

	if !e.End.After(e.Start) {
		errs["end"] = MsgEndBeforeStart
	}

	if e.Color != "" && sanitize.Color(e.Color) == "" {
		errs["color"] = MsgInvalidColor
	}

	if e.Category != "" && !opts.HasCategory(e.Category) {
		errs["category"] = MsgUnknownCategory
	}

	return errs
}
