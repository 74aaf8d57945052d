package clinic

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/clinicdesk/clinicweek/internal/calendar"
)

// The clinic backend has shipped several JSON shapes for the same records
// (snake_case reservations, camelCase appointments, Go-default PascalCase
// keys). Every known variant is listed here, most recent first, so the rest
// of the program only ever sees calendar types.
var (
	appointmentIDKeys    = []string{"appointmentId", "appointment_id", "reservationId", "reservation_id", "id"}
	appointmentStartKeys = []string{"appointmentStart", "AppointmentStart", "reservationStart", "reservation_start", "start"}
	appointmentEndKeys   = []string{"appointmentEnd", "AppointmentEnd", "reservationEnd", "reservation_end", "end"}
	canceledKeys         = []string{"canceled", "Canceled", "isCanceled", "cancelled"}
	doctorIDKeys         = []string{"doctorId", "doctor_id", "DoctorID", "DoctorId"}
	patientIDKeys        = []string{"patientId", "patient_id", "PatientID", "PatientId"}
	specialtyKeys        = []string{"specialty", "doctorSpecialty", "Specialty"}
	ageKeys              = []string{"patientAge", "age", "Age"}
	titleKeys            = []string{"title", "appointmentTitle", "AppointmentTitle"}
	notesKeys            = []string{"notes", "description"}
	doctorPatientKeys    = []string{"isDoctorPatient", "is_doctor_patient"}

	eventIDKeys     = []string{"eventId", "event_id", "id"}
	eventStartKeys  = []string{"startTime", "start_time", "start"}
	eventEndKeys    = []string{"endTime", "end_time", "end"}
	eventTypeKeys   = []string{"eventType", "event_type"}
	blocksKeys      = []string{"blocksAppointments", "blocks_appointments"}
	allDayKeys      = []string{"allDay", "all_day"}
	parentIDKeys    = []string{"parentEventId", "parent_event_id"}
	recurrenceKeys  = []string{"recurringPattern", "recurring_pattern"}
	occurrenceKeys  = []string{"occurrenceCount", "occurrence_count", "count"}
	recurEndKeys    = []string{"endDate", "end_date"}
	daysOfWeekKeys  = []string{"daysOfWeek", "days_of_week"}
	descriptionKeys = []string{"description"}
)

var errMissingTime = errors.New("missing or invalid time")

// first returns the first key of v that is present.
func first(v gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if r := v.Get(k); r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

// list returns the record array of body: either the body itself or the
// first wrapper key holding an array.
func list(body []byte, wrappers ...string) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errors.New("invalid JSON response")
	}
	root := gjson.ParseBytes(body)
	if root.IsArray() {
		return root, nil
	}
	for _, w := range wrappers {
		if r := root.Get(w); r.IsArray() {
			return r, nil
		}
	}
	if root.Type == gjson.Null {
		return gjson.Parse("[]"), nil
	}
	return gjson.Result{}, fmt.Errorf("unexpected response shape: %s", truncate(root.Raw, 80))
}

// object returns the record of a single-object response, unwrapping the
// first wrapper key that holds an object.
func object(body []byte, wrappers ...string) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errors.New("invalid JSON response")
	}
	root := gjson.ParseBytes(body)
	for _, w := range wrappers {
		if r := root.Get(w); r.IsObject() {
			return r, nil
		}
	}
	if root.IsObject() {
		return root, nil
	}
	return gjson.Result{}, fmt.Errorf("unexpected response shape: %s", truncate(root.Raw, 80))
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTime accepts RFC 3339 and the zone-less layouts the backend emits.
// Zone-less values are read in loc.
func parseTime(r gjson.Result, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(r.String())
	if s == "" {
		return time.Time{}, errMissingTime
	}
	for _, layout := range timeLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, loc)
		}
		if err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errMissingTime, s)
}

// fullName joins the name of a person from either a single field or a
// first/last pair.
func fullName(v gjson.Result, prefix string) string {
	if n := first(v, prefix+"Name", prefix+"_name").String(); n != "" {
		return n
	}
	firstName := first(v, prefix+"FirstName", prefix+"_first_name").String()
	lastName := first(v, prefix+"LastName", prefix+"_last_name").String()
	return strings.TrimSpace(firstName + " " + lastName)
}

func parseAppointment(v gjson.Result, loc *time.Location) (calendar.Appointment, error) {
	id := first(v, appointmentIDKeys...).String()
	if id == "" {
		return calendar.Appointment{}, errors.New("appointment without id")
	}
	start, err := parseTime(first(v, appointmentStartKeys...), loc)
	if err != nil {
		return calendar.Appointment{}, fmt.Errorf("appointment %s start: %w", id, err)
	}
	end, err := parseTime(first(v, appointmentEndKeys...), loc)
	if err != nil {
		return calendar.Appointment{}, fmt.Errorf("appointment %s end: %w", id, err)
	}

	return calendar.Appointment{
		ID:              id,
		Start:           start,
		End:             end,
		Canceled:        first(v, canceledKeys...).Bool(),
		DoctorID:        first(v, doctorIDKeys...).String(),
		PatientID:       first(v, patientIDKeys...).String(),
		DoctorName:      fullName(v, "doctor"),
		PatientName:     fullName(v, "patient"),
		Specialty:       first(v, specialtyKeys...).String(),
		PatientAge:      int(first(v, ageKeys...).Int()),
		Title:           first(v, titleKeys...).String(),
		Notes:           first(v, notesKeys...).String(),
		IsDoctorPatient: first(v, doctorPatientKeys...).Bool(),
	}, nil
}

func parseRecurrence(v gjson.Result, loc *time.Location) *calendar.Recurrence {
	// Some backends send the pattern as a JSON-encoded string.
	if v.Type == gjson.String {
		v = gjson.Parse(v.String())
	}
	if !v.IsObject() {
		return nil
	}
	pattern := strings.ToLower(v.Get("pattern").String())
	if pattern == "" || pattern == "none" {
		return nil
	}
	r := &calendar.Recurrence{
		Pattern:  pattern,
		Interval: int(v.Get("interval").Int()),
		Count:    int(first(v, occurrenceKeys...).Int()),
	}
	for _, d := range first(v, daysOfWeekKeys...).Array() {
		r.DaysOfWeek = append(r.DaysOfWeek, int(d.Int()))
	}
	if end, err := parseTime(first(v, recurEndKeys...), loc); err == nil {
		r.EndDate = end
	}
	return r
}

func parseEvent(v gjson.Result, loc *time.Location) (calendar.PersonalEvent, error) {
	id := first(v, eventIDKeys...).String()
	if id == "" {
		return calendar.PersonalEvent{}, errors.New("event without id")
	}
	start, err := parseTime(first(v, eventStartKeys...), loc)
	if err != nil {
		return calendar.PersonalEvent{}, fmt.Errorf("event %s start: %w", id, err)
	}
	end, err := parseTime(first(v, eventEndKeys...), loc)
	if err != nil {
		return calendar.PersonalEvent{}, fmt.Errorf("event %s end: %w", id, err)
	}

	return calendar.PersonalEvent{
		ID:                 id,
		DoctorID:           first(v, doctorIDKeys...).String(),
		Title:              v.Get("title").String(),
		Description:        first(v, descriptionKeys...).String(),
		EventType:          first(v, eventTypeKeys...).String(),
		Start:              start,
		End:                end,
		AllDay:             first(v, allDayKeys...).Bool(),
		BlocksAppointments: first(v, blocksKeys...).Bool(),
		Color:              v.Get("color").String(),
		Recurrence:         parseRecurrence(first(v, recurrenceKeys...), loc),
		ParentID:           first(v, parentIDKeys...).String(),
	}, nil
}

// errorMessage extracts a human readable message from an error body.
func errorMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		root := gjson.ParseBytes(body)
		if m := first(root, "message", "error", "detail"); m.Type == gjson.String {
			return m.String()
		}
	}
	return truncate(strings.TrimSpace(string(body)), 300)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
