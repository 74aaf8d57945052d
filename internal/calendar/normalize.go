package calendar

import (
	"slices"
	"time"
)

// Day holds the normalized items whose start falls on one calendar date.
type Day struct {
	Date  time.Time
	Items []*CalendarItem // sorted by start, then id
}

// Week holds the seven days of a window, Monday (0) through Sunday (6).
type Week struct {
	Window WeekWindow
	Days   [7]Day
}

// Items returns all items across the week in day order.
func (w *Week) Items() []*CalendarItem {
	var result []*CalendarItem
	for _, d := range w.Days {
		result = append(result, d.Items...)
	}
	return result
}

// Len returns the number of items in the week.
func (w *Week) Len() int {
	n := 0
	for _, d := range w.Days {
		n += len(d.Items)
	}
	return n
}

// FromAppointment converts an appointment into a calendar item.
func FromAppointment(a Appointment) *CalendarItem {
	title := a.Title
	if title == "" {
		title = "Consultation"
	}
	return &CalendarItem{
		ID:          itemID(KindAppointment, a.ID),
		SourceID:    a.ID,
		Kind:        KindAppointment,
		Start:       a.Start,
		End:         a.End,
		Canceled:    a.Canceled,
		Title:       title,
		Appointment: &a,
	}
}

// FromPersonalEvent converts a personal event into a calendar item.
// Personal events are never canceled.
func FromPersonalEvent(e PersonalEvent) *CalendarItem {
	color := e.Color
	if color == "" {
		color = DefaultEventColor
	}
	return &CalendarItem{
		ID:                 itemID(KindPersonalEvent, e.ID),
		SourceID:           e.ID,
		Kind:               KindPersonalEvent,
		Start:              e.Start,
		End:                e.End,
		BlocksAppointments: e.BlocksAppointments,
		Color:              color,
		Title:              e.Title,
		Event:              &e,
	}
}

// Normalize merges appointments and personal events into one week of
// calendar items. Items whose start is outside the window are dropped; the
// rest are bucketed by the local calendar date of their start.
func Normalize(w WeekWindow, appointments []Appointment, events []PersonalEvent) *Week {
	week := &Week{Window: w}
	for i, date := range w.Days() {
		week.Days[i] = Day{Date: date, Items: make([]*CalendarItem, 0)}
	}

	add := func(it *CalendarItem) {
		idx := w.DayIndex(it.Start)
		if idx < 0 {
			return
		}
		week.Days[idx].Items = append(week.Days[idx].Items, it)
	}

	for _, a := range appointments {
		add(FromAppointment(a))
	}
	for _, e := range events {
		add(FromPersonalEvent(e))
	}

	for i := range week.Days {
		SortItems(week.Days[i].Items)
	}
	return week
}

// SortItems orders items by start time, breaking ties by id.
func SortItems(items []*CalendarItem) {
	slices.SortStableFunc(items, compareItems)
}

func compareItems(a, b *CalendarItem) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}
