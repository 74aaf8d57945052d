package calendar

import (
	"fmt"
	"time"

	"github.com/clinicdesk/clinicweek/internal/dateutil"
)

// WeekWindow is the visible 7-day range, Monday through Sunday, anchored on
// the ISO week that contains a given date.
type WeekWindow struct {
	start time.Time // Monday 00:00 in the anchor's location
}

// NewWeekWindow creates the window for the ISO week containing anchor.
// Sunday is treated as day 7 of the prior week.
func NewWeekWindow(anchor time.Time) WeekWindow {
	monday, _ := dateutil.WeekRange(anchor)
	return WeekWindow{start: monday}
}

// Start returns Monday 00:00 of the window.
func (w WeekWindow) Start() time.Time {
	return w.start
}

// Last returns Sunday 00:00 of the window.
func (w WeekWindow) Last() time.Time {
	return w.start.AddDate(0, 0, 6)
}

// End returns the exclusive end of the window (the following Monday 00:00).
func (w WeekWindow) End() time.Time {
	return w.start.AddDate(0, 0, 7)
}

// Location returns the location calendar dates are compared in.
func (w WeekWindow) Location() *time.Location {
	return w.start.Location()
}

// Days returns the seven consecutive dates of the window.
func (w WeekWindow) Days() [7]time.Time {
	var days [7]time.Time
	for i := range days {
		days[i] = w.start.AddDate(0, 0, i)
	}
	return days
}

// Previous returns the window one week earlier.
func (w WeekWindow) Previous() WeekWindow {
	return WeekWindow{start: w.start.AddDate(0, 0, -7)}
}

// Next returns the window one week later.
func (w WeekWindow) Next() WeekWindow {
	return WeekWindow{start: w.start.AddDate(0, 0, 7)}
}

// Today returns the window containing now, in the receiver's location.
func (w WeekWindow) Today(now time.Time) WeekWindow {
	if !w.start.IsZero() {
		now = now.In(w.Location())
	}
	return NewWeekWindow(now)
}

// Equal reports whether both windows start on the same instant.
func (w WeekWindow) Equal(other WeekWindow) bool {
	return w.start.Equal(other.start)
}

// DayIndex returns 0 (Monday) through 6 (Sunday) for t's local calendar
// date, or -1 if t falls outside the window.
func (w WeekWindow) DayIndex(t time.Time) int {
	local := dateutil.TruncateToDay(t.In(w.Location()))
	for i, day := range w.Days() {
		if day.Equal(local) {
			return i
		}
	}
	return -1
}

// Contains reports whether t's local calendar date is inside the window.
func (w WeekWindow) Contains(t time.Time) bool {
	return w.DayIndex(t) >= 0
}

// FetchRange returns the window padded by one day on each side. Callers
// fetch this range so that timezone skew at the edges never drops items.
func (w WeekWindow) FetchRange() (from, to time.Time) {
	return w.start.AddDate(0, 0, -1), w.End().AddDate(0, 0, 1)
}

// Label formats the window as "Jan 6 - Jan 12, 2025".
func (w WeekWindow) Label() string {
	return fmt.Sprintf("%s - %s", w.start.Format("Jan 2"), w.Last().Format("Jan 2, 2006"))
}

// WeekdayName returns the name of the weekday (0=Monday).
func WeekdayName(weekday int) string {
	names := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return names[weekday]
}

// WeekdayShortName returns the short name of the weekday (0=Monday).
func WeekdayShortName(weekday int) string {
	names := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return names[weekday]
}
