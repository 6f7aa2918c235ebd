package calendar

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

const (
	// icsFloatingLayout is a DATE-TIME without zone: a floating local time.
	icsFloatingLayout = "20060102T150405"
	icsDateLayout     = "20060102"

	icsProductID = "-//calview//Calendar Widget//EN"
)

// icsColor is the RFC 7986 COLOR property.
const icsColor = ical.ComponentProperty("COLOR")

// ExportICS renders events as an iCalendar document. Times are written as
// floating local values so the wall clock survives a round trip.
func ExportICS(events []Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetProductId(icsProductID)
	cal.SetMethod(ical.MethodPublish)

	for _, e := range events {
		ve := cal.AddEvent(e.ID)
		ve.SetDtStampTime(now)
		ve.SetProperty(ical.ComponentPropertyDtStart, e.Start.Format(icsFloatingLayout))
		ve.SetProperty(ical.ComponentPropertyDtEnd, e.End.Format(icsFloatingLayout))
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Category != "" {
			ve.SetProperty(ical.ComponentPropertyCategories, e.Category)
		}
		if e.Color != "" {
			ve.SetProperty(icsColor, e.Color)
		}
	}
	return cal.Serialize()
}

// ParseICS reads the VEVENTs of an iCalendar document. Wall-clock fields
// are kept as written and placed in loc; a trailing Z or a TZID parameter
// does not shift the time. RRULEs are ignored: only the first occurrence
// is imported. A missing DTEND means one hour, or one day for all-day
// events. VEVENTs without a usable DTSTART are skipped.
func ParseICS(r io.Reader, loc *time.Location) ([]Event, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parsing ics: %w", err)
	}

	events := make([]Event, 0)
	for _, ve := range cal.Events() {
		evt, err := eventFromVEvent(ve, loc)
		if err != nil {
			continue
		}
		events = append(events, evt)
	}
	return events, nil
}

func eventFromVEvent(ve *ical.VEvent, loc *time.Location) (Event, error) {
	var evt Event

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		evt.ID = strings.TrimSpace(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		evt.Title = unescapeText(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		evt.Description = unescapeText(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		// Only the first category maps onto the widget's single category.
		first, _, _ := strings.Cut(p.Value, ",")
		evt.Category = unescapeText(first)
	}
	if p := ve.GetProperty(icsColor); p != nil {
		evt.Color = strings.TrimSpace(p.Value)
	}

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return Event{}, errors.New("missing DTSTART")
	}
	start, allDay, err := parseWallClock(startProp.Value, loc)
	if err != nil {
		return Event{}, fmt.Errorf("DTSTART: %w", err)
	}
	evt.Start = start

	if endProp := ve.GetProperty(ical.ComponentPropertyDtEnd); endProp != nil {
		end, _, err := parseWallClock(endProp.Value, loc)
		if err != nil {
			return Event{}, fmt.Errorf("DTEND: %w", err)
		}
		evt.End = end
	} else if allDay {
		evt.End = start.AddDate(0, 0, 1)
	} else {
		evt.End = start.Add(time.Hour)
	}

	return evt, nil
}

// parseWallClock reads an iCalendar DATE or DATE-TIME value in loc.
func parseWallClock(v string, loc *time.Location) (t time.Time, allDay bool, err error) {
	v = strings.TrimSuffix(strings.TrimSpace(v), "Z")
	if v == "" {
		return time.Time{}, false, errors.New("empty time value")
	}
	if strings.Contains(v, "T") {
		t, err = time.ParseInLocation(icsFloatingLayout, v, loc)
		return t, false, err
	}
	t, err = time.ParseInLocation(icsDateLayout, v, loc)
	return t, true, err
}

var icsTextUnescaper = strings.NewReplacer(
	`\n`, "\n",
	`\N`, "\n",
	`\,`, ",",
	`\;`, ";",
	`\\`, `\`,
)

func unescapeText(s string) string {
	return strings.TrimSpace(icsTextUnescaper.Replace(s))
}
