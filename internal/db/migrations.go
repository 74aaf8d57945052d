package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS appointments (
			id                  TEXT PRIMARY KEY,
			doctor_id           TEXT NOT NULL,
			patient_id          TEXT NOT NULL,
			doctor_name         TEXT NOT NULL DEFAULT '',
			patient_name        TEXT NOT NULL DEFAULT '',
			specialty           TEXT NOT NULL DEFAULT '',
			patient_age         INTEGER NOT NULL DEFAULT 0,
			title               TEXT NOT NULL DEFAULT '',
			notes               TEXT NOT NULL DEFAULT '',
			is_doctor_patient   INTEGER NOT NULL DEFAULT 0,
			start_at            TEXT NOT NULL,
			end_at              TEXT NOT NULL,
			canceled            INTEGER NOT NULL DEFAULT 0,
			canceled_by         TEXT CHECK(canceled_by IN ('doctor', 'patient', 'receptionist')),
			cancellation_reason TEXT,
			canceled_at         TEXT,
			created_at          TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_appointments_doctor ON appointments(doctor_id, start_at);
		CREATE INDEX IF NOT EXISTS idx_appointments_patient ON appointments(patient_id, start_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating appointments table: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS personal_events (
			id                  TEXT PRIMARY KEY,
			doctor_id           TEXT NOT NULL,
			title               TEXT NOT NULL,
			description         TEXT NOT NULL DEFAULT '',
			event_type          TEXT NOT NULL DEFAULT 'personal',
			start_at            TEXT NOT NULL,
			end_at              TEXT NOT NULL,
			all_day             INTEGER NOT NULL DEFAULT 0,
			blocks_appointments INTEGER NOT NULL DEFAULT 0,
			color               TEXT NOT NULL DEFAULT '',
			is_master           INTEGER NOT NULL DEFAULT 0,
			rec_pattern         TEXT CHECK(rec_pattern IN ('daily', 'weekly', 'monthly')),
			rec_days            TEXT,
			rec_interval        INTEGER,
			rec_end_date        TEXT,
			rec_count           INTEGER,
			parent_id           TEXT REFERENCES personal_events(id) ON DELETE CASCADE,
			created_at          TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_events_doctor ON personal_events(doctor_id, start_at);
		CREATE INDEX IF NOT EXISTS idx_events_parent ON personal_events(parent_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating personal_events table: %w", err)
	}

	return nil
}
