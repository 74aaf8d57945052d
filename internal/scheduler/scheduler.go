// Package scheduler finds bookable gaps in a laid-out week.
package scheduler

import (
	"time"

	"github.com/clinicdesk/clinicweek/internal/calendar"
	"github.com/clinicdesk/clinicweek/internal/dateutil"
)

// DefaultMinimum is the shortest gap reported as a free slot.
const DefaultMinimum = 30 * time.Minute

// Slot is a free interval inside the visible day range.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Duration returns the slot length.
func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Scheduler finds free slots between the day start and day end of a
// geometry. Active and passed appointments and personal events that block
// bookings are busy; canceled appointments and other events are not.
type Scheduler struct {
	geometry calendar.Geometry
	minimum  time.Duration
}

// New creates a new Scheduler. A non-positive minimum uses DefaultMinimum.
func New(g calendar.Geometry, minimum time.Duration) *Scheduler {
	if minimum <= 0 {
		minimum = DefaultMinimum
	}
	return &Scheduler{geometry: g, minimum: minimum}
}

// Minimum returns the shortest slot the scheduler reports.
func (s *Scheduler) Minimum() time.Duration {
	return s.minimum
}

// NextAvailableStart returns the earliest bookable instant on day at or
// after now, rounded up to the next quarter hour. The zero time means the
// day has no bookable time left.
func (s *Scheduler) NextAvailableStart(day, now time.Time) time.Time {
	open := dateutil.At(day, s.geometry.DayStart)
	closing := dateutil.At(day, s.geometry.DayEnd)

	start := open
	if now.After(start) {
		start = roundUpTo15Min(now.In(day.Location()))
	}
	if !start.Before(closing) {
		return time.Time{}
	}
	return start
}

// DaySlots returns the free slots of one day column. The day must be laid
// out with the default filter so hidden bookings still count as busy.
func (s *Scheduler) DaySlots(day calendar.DayLayout, now time.Time) []Slot {
	cursor := s.NextAvailableStart(day.Date, now)
	if cursor.IsZero() {
		return nil
	}
	closing := dateutil.At(day.Date, s.geometry.DayEnd)

	var slots []Slot
	add := func(start, end time.Time) {
		if end.After(closing) {
			end = closing
		}
		if end.Sub(start) >= s.minimum {
			slots = append(slots, Slot{Start: start, End: end})
		}
	}

	for _, b := range day.Blocks {
		if !busy(b) {
			continue
		}
		if !cursor.Before(closing) {
			break
		}
		if b.Item.Start.After(cursor) {
			add(cursor, b.Item.Start)
		}
		if b.Item.End.After(cursor) {
			cursor = b.Item.End
		}
	}
	if cursor.Before(closing) {
		add(cursor, closing)
	}
	return slots
}

// WeekSlots returns the free slots of every day, relative to layout.Now.
func (s *Scheduler) WeekSlots(layout *calendar.WeekLayout) [7][]Slot {
	var week [7][]Slot
	for i, d := range layout.Days {
		week[i] = s.DaySlots(d, layout.Now)
	}
	return week
}

// FreeMinutes returns the total length of slots in minutes.
func FreeMinutes(slots []Slot) int {
	total := 0
	for _, sl := range slots {
		total += int(sl.Duration().Minutes())
	}
	return total
}

func busy(b calendar.Block) bool {
	if b.Item.IsAppointment() {
		return b.Status != calendar.StatusCanceled
	}
	return b.Item.BlocksAppointments
}

// roundUpTo15Min rounds a time up to the next 15-minute boundary.
func roundUpTo15Min(t time.Time) time.Time {
	minute := t.Minute()
	remainder := minute % 15
	if remainder == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t
	}
	return t.Add(time.Duration(15-remainder) * time.Minute).Truncate(time.Minute)
}
