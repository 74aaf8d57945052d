// Package dateutil provides date and clock parsing shared by the CLI and config.
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidClockFormat = errors.New("time must be in HH:MM format")
)

var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

// ParseDate parses a date string in YYYY-MM-DD format in the given location.
// If the string is empty, returns today's date.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if s == "" {
		return TruncateToDay(time.Now().In(loc)), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseClock parses "HH:MM" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidClockFormat
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, ErrInvalidClockFormat
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// FormatClock renders an offset from midnight as "HH:MM".
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format("15:04")
}

// At returns the instant on day's calendar date at the given clock offset.
func At(day time.Time, clock time.Duration) time.Time {
	y, m, d := day.Date()
	h := int(clock / time.Hour)
	mins := int((clock % time.Hour) / time.Minute)
	return time.Date(y, m, d, h, mins, 0, 0, day.Location())
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (monday, sunday time.Time) {
	t = TruncateToDay(t)
	monday = t.AddDate(0, 0, -(ISOWeekday(t) - 1))
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseWeekday parses a weekday name ("monday", "mon") case-insensitively.
func ParseWeekday(s string) (time.Weekday, bool) {
	wd, ok := weekdayMap[strings.ToLower(strings.TrimSpace(s))]
	return wd, ok
}

// ParseRelativeDate parses a date string that can be:
//   - Empty string or "today": returns relativeTo date
//   - Absolute date: "2025-01-15" (YYYY-MM-DD)
//   - Keywords: "tomorrow", "yesterday", "next-week", "last-week"
//   - Weekday names: "monday" through "sunday" (that day of the current ISO week)
//
// Past dates are accepted: browsing the calendar backwards is normal.
func ParseRelativeDate(s string, relativeTo time.Time) (time.Time, error) {
	today := TruncateToDay(relativeTo)
	input := strings.ToLower(strings.TrimSpace(s))

	switch input {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "next-week":
		return today.AddDate(0, 0, 7), nil
	case "last-week", "prev-week":
		return today.AddDate(0, 0, -7), nil
	}

	if wd, ok := weekdayMap[input]; ok {
		monday, _ := WeekRange(today)
		iso := int(wd)
		if iso == 0 {
			iso = 7
		}
		return monday.AddDate(0, 0, iso-1), nil
	}

	result, err := time.ParseInLocation("2006-01-02", input, relativeTo.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return result, nil
}
