package calendar

import (
	"context"
	"time"
)

// Source defines where appointments and personal events come from. The
// clinic REST client and the local SQLite store both implement it.
type Source interface {
	// Appointments returns the appointments visible to the session that
	// start within [from, to).
	Appointments(ctx context.Context, s Session, from, to time.Time) ([]Appointment, error)

	// PersonalEvents returns the doctor's personal events within [from, to).
	// Recurring events may be returned as masters, as occurrences, or both.
	PersonalEvents(ctx context.Context, doctorID string, from, to time.Time) ([]PersonalEvent, error)

	// CancelAppointment marks an appointment as canceled.
	// Returns ErrAppointmentNotFound or ErrAlreadyCanceled.
	CancelAppointment(ctx context.Context, id string, canceledBy Role, reason string) error

	// CreatePersonalEvent stores a new personal event for the doctor.
	CreatePersonalEvent(ctx context.Context, doctorID string, e NewPersonalEvent) (*PersonalEvent, error)

	// DeletePersonalEvent removes a personal event. When deleteAll is set
	// and the event is part of a series, the whole series is removed.
	// Returns ErrEventNotFound.
	DeletePersonalEvent(ctx context.Context, doctorID, id string, deleteAll bool) error

	// Close releases any resources held by the source.
	Close() error
}
