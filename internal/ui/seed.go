package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicweek/internal/calendar"
	"github.com/clinicdesk/clinicweek/internal/dateutil"
	"github.com/clinicdesk/clinicweek/internal/db"
)

// seedAppointment is one demo booking relative to the week's Monday.
type seedAppointment struct {
	day      int // 0 = Monday
	start    string
	minutes  int
	patient  string
	age      int
	title    string
	canceled bool
}

var seedAppointments = []seedAppointment{
	{0, "09:00", 30, "Jane Roe", 34, "Follow-up", false},
	{0, "09:15", 45, "Ali Khan", 58, "Blood pressure review", false},
	{0, "10:00", 30, "Mia Wong", 7, "Vaccination", false},
	{1, "08:30", 60, "Omar Haddad", 41, "Physiotherapy", false},
	{1, "08:30", 60, "Lena Berg", 29, "Consultation", true},
	{2, "11:00", 30, "Sam Ortiz", 63, "Lab results", false},
	{2, "14:00", 30, "Ana Silva", 45, "Consultation", false},
	{2, "14:10", 30, "Tom Becker", 52, "Consultation", false},
	{2, "14:20", 30, "Eva Novak", 36, "Consultation", true},
	{3, "16:00", 45, "Yuki Sato", 27, "Prenatal check", false},
	{4, "09:00", 30, "Jane Roe", 34, "Follow-up", true},
	{4, "15:30", 30, "Noah Smith", 70, "Medication review", false},
}

func (a *App) seedCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the local store with a demo week",
		Long: `Create demo appointments and personal events in the local store for
the week containing --date. Includes overlapping bookings, canceled
appointments that collide with active ones, and a recurring lunch block.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.localStore()
			if err != nil {
				return err
			}
			loc, err := a.config.Location()
			if err != nil {
				return err
			}
			anchor, err := dateutil.ParseRelativeDate(date, a.now().In(loc))
			if err != nil {
				return err
			}

			n, err := seedWeek(context.Background(), store, a.config.CalendarSession(), calendar.NewWeekWindow(anchor))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d appointments and a weekday lunch block\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Any day in the week to seed (default: today)")
	return cmd
}

// seedWeek writes the demo week for the session's doctor.
func seedWeek(ctx context.Context, store *db.SQLite, s calendar.Session, w calendar.WeekWindow) (int, error) {
	doctorID := s.DoctorID
	if doctorID == "" {
		doctorID = s.UserID
	}
	if doctorID == "" {
		return 0, errors.New("seed needs session.doctor_id or session.user_id")
	}

	monday := w.Start()
	lunch := dateutil.At(monday, 12*time.Hour+30*time.Minute)
	if _, err := store.CreatePersonalEvent(ctx, doctorID, calendar.NewPersonalEvent{
		Title:              "Lunch",
		EventType:          "break",
		Start:              lunch,
		End:                lunch.Add(time.Hour),
		BlocksAppointments: true,
		Recurrence: &calendar.Recurrence{
			Pattern:    calendar.PatternWeekly,
			DaysOfWeek: []int{1, 2, 3, 4, 5},
			Count:      5,
		},
	}); err != nil {
		return 0, fmt.Errorf("seeding lunch: %w", err)
	}

	for i, sa := range seedAppointments {
		clock, err := dateutil.ParseClock(sa.start)
		if err != nil {
			return i, err
		}
		start := dateutil.At(monday.AddDate(0, 0, sa.day), clock)
		appt := &calendar.Appointment{
			DoctorID:    doctorID,
			PatientID:   fmt.Sprintf("pat-%d", i+1),
			DoctorName:  "Avery Quinn",
			PatientName: sa.patient,
			PatientAge:  sa.age,
			Specialty:   "General practice",
			Title:       sa.title,
			Start:       start,
			End:         start.Add(time.Duration(sa.minutes) * time.Minute),
			Canceled:    sa.canceled,
		}
		if err := store.CreateAppointment(ctx, appt); err != nil {
			return i, fmt.Errorf("seeding appointment %d: %w", i+1, err)
		}
	}
	return len(seedAppointments), nil
}
