package calendar

import "time"

// Status is the display state of a calendar item at a given instant.
type Status string

const (
	StatusActive   Status = "active" // upcoming or in progress
	StatusPassed   Status = "passed"
	StatusCanceled Status = "canceled"
	StatusEvent    Status = "event" // personal events are never classified
)

// Classify returns the status of it at now. Callers take one now snapshot
// per render pass so classification cannot drift mid-render.
func Classify(now time.Time, it *CalendarItem) Status {
	if it.Kind == KindPersonalEvent {
		return StatusEvent
	}
	if it.Canceled {
		return StatusCanceled
	}
	if it.End.Before(now) {
		return StatusPassed
	}
	return StatusActive
}
