package calendar

import "time"

// Every placement function is a stable filter: the result keeps the input
// order and never sorts or removes duplicates.

// EventsOnDay returns the events whose start-to-end date range, with both
// ends truncated to whole days, includes day. A multi-day event appears on
// every day it spans.
func EventsOnDay(events []Event, day time.Time) []Event {
	d := dayKey(day)
	out := make([]Event, 0)
	for _, e := range events {
		if dayKey(e.Start) <= d && dayKey(e.End) >= d {
			out = append(out, e)
		}
	}
	return out
}

// EventsInTimeSlot returns the events overlapping the half-open hour
// [day@hour:00, day@hour+1:00). An event ending exactly at the slot start
// is not in the slot.
func EventsInTimeSlot(events []Event, day time.Time, hour int) []Event {
	from := slotStart(day, hour)
	to := slotStart(day, hour+1)
	out := make([]Event, 0)
	for _, e := range events {
		if e.Start.Before(to) && e.End.After(from) {
			out = append(out, e)
		}
	}
	return out
}

// EventsInRange returns the events whose start or end falls within the
// closed range [from, to], or whose span covers the whole range.
func EventsInRange(events []Event, from, to time.Time) []Event {
	out := make([]Event, 0)
	for _, e := range events {
		if inRange(e.Start, from, to) || inRange(e.End, from, to) ||
			(!e.Start.After(from) && !e.End.Before(to)) {
			out = append(out, e)
		}
	}
	return out
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// slotStart is day's date at hour:00. Hours past 23 roll into the next day.
func slotStart(day time.Time, hour int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, day.Location())
}

// Overflow applies the month-cell display cap: the first limit events are
// shown and the rest are counted for the "+N more" label.
func Overflow(events []Event, limit int) (visible []Event, hidden int) {
	limit = max(limit, 0)
	if len(events) <= limit {
		return events, 0
	}
	return events[:limit], len(events) - limit
}

const (
	// PixelsPerHour is the week-view row height.
	PixelsPerHour = 60

	// MinBlockHeight keeps short events clickable.
	MinBlockHeight = 30
)

// Block is the positioned rectangle of an event inside a week column.
type Block struct {
	Event  Event `json:"event"`
	Top    int   `json:"top"`
	Height int   `json:"height"`
}

// BlockLayout places e inside day's column. The block is clipped to the
// day, starts at the minute offset of its first visible instant, and is
// never shorter than MinBlockHeight.
func BlockLayout(e Event, day time.Time) Block {
	dayStart := StartOfDay(day)
	dayEnd := dayStart.AddDate(0, 0, 1)

	start := e.Start
	if start.Before(dayStart) {
		start = dayStart
	}
	end := e.End
	if end.After(dayEnd) {
		end = dayEnd
	}

	top := int(start.Sub(dayStart).Minutes()) * PixelsPerHour / 60
	height := int(end.Sub(start).Minutes()) * PixelsPerHour / 60

	return Block{
		Event:  e,
		Top:    max(0, top),
		Height: max(MinBlockHeight, height),
	}
}
