// Package calendar defines the weekly calendar model and its layout engine:
// week windows, item normalization, status classification, visibility
// filters and overlap partitioning.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors.
var (
	ErrEndBeforeStart = errors.New("end time must be after start time")
	ErrEmptyTitle     = errors.New("title cannot be empty")
)

// Domain errors.
var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrEventNotFound       = errors.New("personal event not found")
	ErrAlreadyCanceled     = errors.New("appointment already canceled")
	ErrSlotBlocked         = errors.New("time slot is blocked by a personal event")
)

// Kind identifies which source collection an item came from.
type Kind int

const (
	KindAppointment Kind = iota
	KindPersonalEvent
)

func (k Kind) String() string {
	switch k {
	case KindAppointment:
		return "appointment"
	case KindPersonalEvent:
		return "event"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Role is the perspective the calendar is viewed from.
type Role string

const (
	RoleDoctor       Role = "doctor"
	RolePatient      Role = "patient"
	RoleReceptionist Role = "receptionist"
)

// Valid returns true if r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleDoctor, RolePatient, RoleReceptionist:
		return true
	default:
		return false
	}
}

// Session carries who is looking at the calendar. It is passed explicitly
// into fetching and rendering instead of being read from ambient state.
type Session struct {
	UserID   string
	UserType Role
	ViewAs   Role // optional mode switch for doctors/receptionists
	DoctorID string
}

// EffectiveRole returns the role used for display and cancellation.
func (s Session) EffectiveRole() Role {
	if s.ViewAs == RolePatient {
		return RolePatient
	}
	if s.UserType == "" {
		return RolePatient
	}
	return s.UserType
}

// Appointment is a scheduled, cancelable booking between a doctor and a patient.
type Appointment struct {
	ID              string
	Start           time.Time
	End             time.Time
	Canceled        bool
	DoctorID        string
	PatientID       string
	DoctorName      string
	PatientName     string
	Specialty       string
	PatientAge      int
	Title           string
	Notes           string
	IsDoctorPatient bool
}

// Recurrence describes how a personal event repeats.
type Recurrence struct {
	Pattern    string    // "daily", "weekly" or "monthly"
	DaysOfWeek []int     // 1=Monday .. 7=Sunday, weekly only
	Interval   int       // defaults to 1
	EndDate    time.Time // zero means open-ended
	Count      int       // zero means unlimited
}

// Recurrence patterns.
const (
	PatternDaily   = "daily"
	PatternWeekly  = "weekly"
	PatternMonthly = "monthly"
)

// PersonalEvent is a doctor-authored calendar block.
type PersonalEvent struct {
	ID                 string
	DoctorID           string
	Title              string
	Description        string
	EventType          string
	Start              time.Time
	End                time.Time
	AllDay             bool
	BlocksAppointments bool
	Color              string
	Recurrence         *Recurrence
	ParentID           string // set on occurrences of a recurring event
}

// DefaultEventColor is used when a personal event has no color.
const DefaultEventColor = "#FFB84D"

// NewPersonalEvent is the input for creating a personal event.
type NewPersonalEvent struct {
	Title              string
	Description        string
	EventType          string
	Start              time.Time
	End                time.Time
	BlocksAppointments bool
	Color              string
	Recurrence         *Recurrence
}

// Validate checks the request before it is sent to a source.
func (e NewPersonalEvent) Validate() error {
	if e.Title == "" {
		return ErrEmptyTitle
	}
	if !e.End.After(e.Start) {
		return ErrEndBeforeStart
	}
	if e.Recurrence != nil {
		switch e.Recurrence.Pattern {
		case PatternDaily, PatternMonthly:
		case PatternWeekly:
			if len(e.Recurrence.DaysOfWeek) == 0 {
				return errors.New("weekly recurrence needs at least one day")
			}
		default:
			return fmt.Errorf("unknown recurrence pattern %q", e.Recurrence.Pattern)
		}
	}
	return nil
}

// CalendarItem is the normalized shape shared by appointments and personal
// events. Items are rebuilt on every fetch; layout fields are transient.
type CalendarItem struct {
	ID                 string // unique within a week: "apt:<id>" or "evt:<id>"
	SourceID           string
	Kind               Kind
	Start              time.Time
	End                time.Time
	Canceled           bool
	BlocksAppointments bool
	Color              string
	Title              string

	Appointment *Appointment
	Event       *PersonalEvent

	OverlapsWith    []string
	LayoutSlot      int
	LayoutSlotCount int
}

// Duration returns the item length. Malformed items may report zero or negative.
func (it *CalendarItem) Duration() time.Duration {
	return it.End.Sub(it.Start)
}

// IsAppointment reports whether the item came from the appointment collection.
func (it *CalendarItem) IsAppointment() bool {
	return it.Kind == KindAppointment
}

// Label returns the headline for the item as seen by role: patients see the
// doctor, everybody else sees the patient.
func (it *CalendarItem) Label(role Role) string {
	if it.Kind == KindPersonalEvent || it.Appointment == nil {
		return it.Title
	}
	a := it.Appointment
	if role == RolePatient {
		if a.DoctorName != "" {
			return "Dr. " + a.DoctorName
		}
		return it.Title
	}
	if a.PatientName != "" {
		return a.PatientName
	}
	return it.Title
}

// Detail returns the secondary line for the item as seen by role.
func (it *CalendarItem) Detail(role Role) string {
	if it.Kind == KindPersonalEvent {
		if it.BlocksAppointments {
			return "blocks bookings"
		}
		if it.Event == nil {
			return ""
		}
		return it.Event.EventType
	}
	a := it.Appointment
	if a == nil {
		return ""
	}
	if role == RolePatient {
		return a.Specialty
	}
	if role == RoleDoctor && a.PatientAge > 0 {
		return fmt.Sprintf("age %d", a.PatientAge)
	}
	return it.Title
}

// itemID namespaces source ids so appointments and events never collide.
func itemID(k Kind, sourceID string) string {
	if k == KindPersonalEvent {
		return "evt:" + sourceID
	}
	return "apt:" + sourceID
}
