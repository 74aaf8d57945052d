package scheduler

import (
	"testing"
	"time"

	"github.com/clinicdesk/clinicweek/internal/calendar"
)

var monday = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2024, 6, 10, hour, minute, 0, 0, time.UTC)
}

func appt(id string, start, end time.Time, canceled bool) calendar.Appointment {
	return calendar.Appointment{ID: id, DoctorID: "doc-1", Start: start, End: end, Canceled: canceled}
}

// dayLayout lays out monday with the default filter and geometry.
func dayLayout(now time.Time, appts []calendar.Appointment, events []calendar.PersonalEvent) calendar.DayLayout {
	w := calendar.NewWeekWindow(monday)
	return calendar.BuildLayout(now, w, appts, events, calendar.DefaultFilter(), calendar.DefaultGeometry()).Days[0]
}

func clock(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Start.Format("15:04") + "-" + s.End.Format("15:04")
	}
	return out
}

func TestDaySlots(t *testing.T) {
	early := at(0, 0)

	tests := []struct {
		name   string
		now    time.Time
		appts  []calendar.Appointment
		events []calendar.PersonalEvent
		want   []string
	}{
		{
			name: "empty day",
			now:  early,
			want: []string{"06:00-21:00"},
		},
		{
			name:  "one booking",
			now:   early,
			appts: []calendar.Appointment{appt("a1", at(9, 0), at(10, 0), false)},
			want:  []string{"06:00-09:00", "10:00-21:00"},
		},
		{
			name: "overlapping bookings merge",
			now:  early,
			appts: []calendar.Appointment{
				appt("a1", at(9, 0), at(10, 0), false),
				appt("a2", at(9, 30), at(11, 0), false),
				appt("a3", at(9, 45), at(10, 15), false),
			},
			want: []string{"06:00-09:00", "11:00-21:00"},
		},
		{
			name:  "canceled booking frees its time",
			now:   early,
			appts: []calendar.Appointment{appt("a1", at(9, 0), at(10, 0), true)},
			want:  []string{"06:00-21:00"},
		},
		{
			name: "short gaps are dropped",
			now:  early,
			appts: []calendar.Appointment{
				appt("a1", at(9, 0), at(10, 0), false),
				appt("a2", at(10, 15), at(11, 0), false),
			},
			want: []string{"06:00-09:00", "11:00-21:00"},
		},
		{
			name: "blocking event is busy",
			now:  early,
			events: []calendar.PersonalEvent{
				{ID: "e1", Title: "Lunch", Start: at(12, 0), End: at(13, 0), BlocksAppointments: true},
				{ID: "e2", Title: "Reading", Start: at(15, 0), End: at(16, 0)},
			},
			want: []string{"06:00-12:00", "13:00-21:00"},
		},
		{
			name:  "booking past day end",
			now:   early,
			appts: []calendar.Appointment{appt("a1", at(20, 0), at(22, 0), false)},
			want:  []string{"06:00-20:00"},
		},
		{
			name:  "booking before day start",
			now:   early,
			appts: []calendar.Appointment{appt("a1", at(5, 0), at(7, 0), false)},
			want:  []string{"07:00-21:00"},
		},
		{
			name:  "now rounds up",
			now:   at(14, 5),
			appts: []calendar.Appointment{appt("a1", at(16, 0), at(17, 0), false)},
			want:  []string{"14:15-16:00", "17:00-21:00"},
		},
		{
			name: "day over",
			now:  at(20, 50),
			want: nil,
		},
	}

	s := New(calendar.DefaultGeometry(), 0)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := clock(s.DaySlots(dayLayout(tc.now, tc.appts, tc.events), tc.now))
			if len(got) != len(tc.want) {
				t.Fatalf("DaySlots = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("slot %d = %s, want %s", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestWeekSlots(t *testing.T) {
	now := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC) // Wednesday noon
	w := calendar.NewWeekWindow(now)
	layout := calendar.BuildLayout(now, w, nil, nil, calendar.DefaultFilter(), calendar.DefaultGeometry())

	week := New(calendar.DefaultGeometry(), time.Hour).WeekSlots(layout)

	if len(week[0]) != 0 || len(week[1]) != 0 {
		t.Errorf("past days should have no slots, got %v %v", week[0], week[1])
	}
	if got := clock(week[2]); len(got) != 1 || got[0] != "12:00-21:00" {
		t.Errorf("Wednesday = %v", got)
	}
	if got := FreeMinutes(week[6]); got != 15*60 {
		t.Errorf("Sunday free minutes = %d, want %d", got, 15*60)
	}
}

func TestNew_DefaultMinimum(t *testing.T) {
	if got := New(calendar.DefaultGeometry(), -time.Minute).Minimum(); got != DefaultMinimum {
		t.Errorf("Minimum = %v, want %v", got, DefaultMinimum)
	}
}

func TestRoundUpTo15Min(t *testing.T) {
	tests := []struct {
		input time.Time
		want  string
	}{
		{time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC), "10:00"},
		{time.Date(2025, 1, 6, 10, 1, 0, 0, time.UTC), "10:15"},
		{time.Date(2025, 1, 6, 10, 14, 0, 0, time.UTC), "10:15"},
		{time.Date(2025, 1, 6, 10, 15, 0, 0, time.UTC), "10:15"},
		{time.Date(2025, 1, 6, 10, 16, 0, 0, time.UTC), "10:30"},
		{time.Date(2025, 1, 6, 10, 46, 0, 0, time.UTC), "11:00"},
		{time.Date(2025, 1, 6, 10, 0, 1, 0, time.UTC), "10:15"}, // has seconds
	}

	for _, tc := range tests {
		t.Run(tc.input.Format("15:04:05"), func(t *testing.T) {
			got := roundUpTo15Min(tc.input).Format("15:04")
			if got != tc.want {
				t.Errorf("roundUpTo15Min = %s, want %s", got, tc.want)
			}
		})
	}
}
