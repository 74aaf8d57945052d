// Package db provides the SQLite calendar source used in local mode.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/clinicdesk/clinicweek/internal/calendar"
)

// timeLayout is fixed-width so stored UTC timestamps compare lexically.
const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements calendar.Source using SQLite.
type SQLite struct {
	db  *sql.DB
	loc *time.Location
	now func() time.Time
}

var _ calendar.Source = (*SQLite)(nil)

// New creates a new SQLite source and runs migrations. Times are returned
// in the local timezone.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db, loc: time.Local, now: time.Now}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// SetLocation changes the timezone returned times are expressed in.
func (s *SQLite) SetLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
	}
}

// CreateAppointment stores a new appointment. An empty ID is replaced with a
// generated one. Returns ErrSlotBlocked if the appointment overlaps a
// personal event of the same doctor that blocks bookings.
func (s *SQLite) CreateAppointment(ctx context.Context, a *calendar.Appointment) error {
	if !a.End.After(a.Start) {
		return calendar.ErrEndBeforeStart
	}
	if err := s.checkBlocked(ctx, a.DoctorID, a.Start, a.End); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	query := `
		INSERT INTO appointments (
			id, doctor_id, patient_id, doctor_name, patient_name, specialty, patient_age,
			title, notes, is_doctor_patient, start_at, end_at, canceled, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		a.ID,
		a.DoctorID,
		a.PatientID,
		a.DoctorName,
		a.PatientName,
		a.Specialty,
		a.PatientAge,
		a.Title,
		a.Notes,
		a.IsDoctorPatient,
		formatTime(a.Start),
		formatTime(a.End),
		a.Canceled,
		formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("inserting appointment: %w", err)
	}

	return nil
}

// Appointments returns the appointments visible to the session starting
// within [from, to). Doctors see their own schedule, patients their own
// bookings and receptionists everything.
func (s *SQLite) Appointments(ctx context.Context, sess calendar.Session, from, to time.Time) ([]calendar.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, doctor_name, patient_name, specialty, patient_age,
		       title, notes, is_doctor_patient, start_at, end_at, canceled
		FROM appointments
		WHERE start_at >= ? AND start_at < ?
	`
	args := []any{formatTime(from), formatTime(to)}

	switch sess.EffectiveRole() {
	case calendar.RoleDoctor:
		doctorID := sess.DoctorID
		if doctorID == "" {
			doctorID = sess.UserID
		}
		query += ` AND doctor_id = ?`
		args = append(args, doctorID)
	case calendar.RolePatient:
		query += ` AND patient_id = ?`
		args = append(args, sess.UserID)
	}
	query += ` ORDER BY start_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying appointments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []calendar.Appointment
	for rows.Next() {
		var (
			a          calendar.Appointment
			start, end string
		)
		err := rows.Scan(
			&a.ID,
			&a.DoctorID,
			&a.PatientID,
			&a.DoctorName,
			&a.PatientName,
			&a.Specialty,
			&a.PatientAge,
			&a.Title,
			&a.Notes,
			&a.IsDoctorPatient,
			&start,
			&end,
			&a.Canceled,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning appointment: %w", err)
		}
		if a.Start, err = s.parseTime(start); err != nil {
			return nil, fmt.Errorf("parsing start: %w", err)
		}
		if a.End, err = s.parseTime(end); err != nil {
			return nil, fmt.Errorf("parsing end: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating appointments: %w", err)
	}

	return result, nil
}

// CancelAppointment marks an appointment as canceled.
func (s *SQLite) CancelAppointment(ctx context.Context, id string, canceledBy calendar.Role, reason string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var canceled bool
	err = tx.QueryRowContext(ctx, `SELECT canceled FROM appointments WHERE id = ?`, id).Scan(&canceled)
	if err == sql.ErrNoRows {
		return calendar.ErrAppointmentNotFound
	}
	if err != nil {
		return fmt.Errorf("querying appointment: %w", err)
	}
	if canceled {
		return calendar.ErrAlreadyCanceled
	}

	var by any
	if canceledBy.Valid() {
		by = string(canceledBy)
	}
	query := `
		UPDATE appointments
		SET canceled = 1, canceled_by = ?, cancellation_reason = ?, canceled_at = ?
		WHERE id = ?
	`
	if _, err := tx.ExecContext(ctx, query, by, reason, formatTime(s.now()), id); err != nil {
		return fmt.Errorf("canceling appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// PersonalEvents returns the doctor's events overlapping [from, to).
// Recurring series are stored as materialized occurrences, so masters are
// never returned.
func (s *SQLite) PersonalEvents(ctx context.Context, doctorID string, from, to time.Time) ([]calendar.PersonalEvent, error) {
	query := `
		SELECT id, doctor_id, title, description, event_type, start_at, end_at,
		       all_day, blocks_appointments, color, parent_id
		FROM personal_events
		WHERE doctor_id = ?
		  AND is_master = 0
		  AND start_at < ?
		  AND end_at > ?
		ORDER BY start_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, doctorID, formatTime(to), formatTime(from))
	if err != nil {
		return nil, fmt.Errorf("querying personal events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []calendar.PersonalEvent
	for rows.Next() {
		var (
			e          calendar.PersonalEvent
			start, end string
			parentID   sql.NullString
		)
		err := rows.Scan(
			&e.ID,
			&e.DoctorID,
			&e.Title,
			&e.Description,
			&e.EventType,
			&start,
			&end,
			&e.AllDay,
			&e.BlocksAppointments,
			&e.Color,
			&parentID,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning personal event: %w", err)
		}
		if e.Start, err = s.parseTime(start); err != nil {
			return nil, fmt.Errorf("parsing start: %w", err)
		}
		if e.End, err = s.parseTime(end); err != nil {
			return nil, fmt.Errorf("parsing end: %w", err)
		}
		e.ParentID = parentID.String
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating personal events: %w", err)
	}

	return result, nil
}

// CreatePersonalEvent stores a new personal event. A recurring event is
// stored as a master row plus one row per occurrence. An open-ended
// series is materialized up to calendar.MaxOccurrences rows.
func (s *SQLite) CreatePersonalEvent(ctx context.Context, doctorID string, ne calendar.NewPersonalEvent) (*calendar.PersonalEvent, error) {
	if err := ne.Validate(); err != nil {
		return nil, err
	}

	e := &calendar.PersonalEvent{
		ID:                 uuid.NewString(),
		DoctorID:           doctorID,
		Title:              ne.Title,
		Description:        ne.Description,
		EventType:          ne.EventType,
		Start:              ne.Start,
		End:                ne.End,
		BlocksAppointments: ne.BlocksAppointments,
		Color:              ne.Color,
		Recurrence:         ne.Recurrence,
	}
	if e.EventType == "" {
		e.EventType = "personal"
	}
	if e.Color == "" {
		e.Color = calendar.DefaultEventColor
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.insertEvent(ctx, tx, e, e.Recurrence != nil); err != nil {
		return nil, err
	}

	if e.Recurrence != nil {
		starts, err := e.Recurrence.Series(e.Start)
		if err != nil {
			return nil, fmt.Errorf("building recurrence rule: %w", err)
		}
		dur := e.End.Sub(e.Start)
		for _, start := range starts {
			occ := *e
			occ.ID = uuid.NewString()
			occ.ParentID = e.ID
			occ.Start = start
			occ.End = start.Add(dur)
			occ.Recurrence = nil
			if err := s.insertEvent(ctx, tx, &occ, false); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return e, nil
}

func (s *SQLite) insertEvent(ctx context.Context, tx *sql.Tx, e *calendar.PersonalEvent, master bool) error {
	query := `
		INSERT INTO personal_events (
			id, doctor_id, title, description, event_type, start_at, end_at, all_day,
			blocks_appointments, color, is_master, rec_pattern, rec_days, rec_interval,
			rec_end_date, rec_count, parent_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var pattern, days, endDate, parentID any
	var interval, count any
	if r := e.Recurrence; master && r != nil {
		pattern = r.Pattern
		days = joinDays(r.DaysOfWeek)
		interval = r.Interval
		count = r.Count
		if !r.EndDate.IsZero() {
			endDate = r.EndDate.Format("2006-01-02")
		}
	}
	if e.ParentID != "" {
		parentID = e.ParentID
	}

	_, err := tx.ExecContext(ctx, query,
		e.ID,
		e.DoctorID,
		e.Title,
		e.Description,
		e.EventType,
		formatTime(e.Start),
		formatTime(e.End),
		e.AllDay,
		e.BlocksAppointments,
		e.Color,
		master,
		pattern,
		days,
		interval,
		endDate,
		count,
		parentID,
		formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("inserting personal event: %w", err)
	}
	return nil
}

// DeletePersonalEvent removes one event, or its whole series when
// deleteAll is set.
func (s *SQLite) DeletePersonalEvent(ctx context.Context, doctorID, id string, deleteAll bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var parentID sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT parent_id FROM personal_events WHERE id = ? AND doctor_id = ?`, id, doctorID,
	).Scan(&parentID)
	if err == sql.ErrNoRows {
		return calendar.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("querying personal event: %w", err)
	}

	if deleteAll {
		root := id
		if parentID.Valid {
			root = parentID.String
		}
		_, err = tx.ExecContext(ctx,
			`DELETE FROM personal_events WHERE doctor_id = ? AND (id = ? OR parent_id = ?)`,
			doctorID, root, root)
	} else {
		_, err = tx.ExecContext(ctx, `DELETE FROM personal_events WHERE id = ?`, id)
	}
	if err != nil {
		return fmt.Errorf("deleting personal event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// checkBlocked reports ErrSlotBlocked if [start, end) overlaps a blocking
// personal event of the doctor.
// Two time ranges overlap if: start1 < end2 AND start2 < end1
func (s *SQLite) checkBlocked(ctx context.Context, doctorID string, start, end time.Time) error {
	query := `
		SELECT id, title, start_at, end_at
		FROM personal_events
		WHERE doctor_id = ?
		  AND is_master = 0
		  AND blocks_appointments = 1
		  AND start_at < ?
		  AND end_at > ?
		LIMIT 1
	`

	var id, title, existStart, existEnd string
	err := s.db.QueryRowContext(ctx, query,
		doctorID,
		formatTime(end),
		formatTime(start),
	).Scan(&id, &title, &existStart, &existEnd)

	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking blocked time: %w", err)
	}

	return fmt.Errorf("%w: %q (%s - %s)", calendar.ErrSlotBlocked, title, existStart, existEnd)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func (s *SQLite) parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized time format: %s", v)
	}
	return t.In(s.loc), nil
}

func joinDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}
