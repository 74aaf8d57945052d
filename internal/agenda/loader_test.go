package agenda

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicweek/internal/calendar"
)

type fakeSource struct {
	mu sync.Mutex

	appointments []calendar.Appointment
	events       []calendar.PersonalEvent
	apptErr      error
	eventErr     error

	apptRanges [][2]time.Time
	eventCalls int
	canceled   []string
	canceledBy calendar.Role
	created    []calendar.NewPersonalEvent
	deleted    []string
	deleteAll  bool
	block      chan struct{} // when set, Appointments waits on it or ctx
}

func (f *fakeSource) Appointments(ctx context.Context, s calendar.Session, from, to time.Time) ([]calendar.Appointment, error) {
	f.mu.Lock()
	f.apptRanges = append(f.apptRanges, [2]time.Time{from, to})
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.apptErr != nil {
		return nil, f.apptErr
	}
	return f.appointments, nil
}

func (f *fakeSource) PersonalEvents(ctx context.Context, doctorID string, from, to time.Time) ([]calendar.PersonalEvent, error) {
	f.mu.Lock()
	f.eventCalls++
	f.mu.Unlock()
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	return f.events, nil
}

func (f *fakeSource) CancelAppointment(ctx context.Context, id string, canceledBy calendar.Role, reason string) error {
	for _, a := range f.appointments {
		if a.ID == id {
			f.canceled = append(f.canceled, id)
			f.canceledBy = canceledBy
			return nil
		}
	}
	return calendar.ErrAppointmentNotFound
}

func (f *fakeSource) CreatePersonalEvent(ctx context.Context, doctorID string, e calendar.NewPersonalEvent) (*calendar.PersonalEvent, error) {
	f.created = append(f.created, e)
	return &calendar.PersonalEvent{ID: "e-new", DoctorID: doctorID, Title: e.Title, Start: e.Start, End: e.End}, nil
}

func (f *fakeSource) DeletePersonalEvent(ctx context.Context, doctorID, id string, deleteAll bool) error {
	f.deleted = append(f.deleted, id)
	f.deleteAll = deleteAll
	return nil
}

func (f *fakeSource) Close() error { return nil }

var (
	doctor  = calendar.Session{UserID: "u1", UserType: calendar.RoleDoctor, DoctorID: "doc-1"}
	patient = calendar.Session{UserID: "p1", UserType: calendar.RolePatient}
	week    = calendar.NewWeekWindow(time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC))
)

func TestLoad_FetchesPaddedRange(t *testing.T) {
	src := &fakeSource{
		appointments: []calendar.Appointment{{ID: "a1"}},
		events:       []calendar.PersonalEvent{{ID: "e1"}},
	}
	l := NewLoader(src, doctor, zerolog.Nop())

	snap := l.Load(context.Background(), week)

	if snap.Err != nil {
		t.Fatalf("unexpected error: %v", snap.Err)
	}
	if len(snap.Appointments) != 1 || len(snap.Events) != 1 {
		t.Fatalf("got %d appointments, %d events", len(snap.Appointments), len(snap.Events))
	}
	from, to := week.FetchRange()
	if len(src.apptRanges) != 1 || !src.apptRanges[0][0].Equal(from) || !src.apptRanges[0][1].Equal(to) {
		t.Errorf("fetched %v, want [%v, %v)", src.apptRanges, from, to)
	}
	if !snap.Window.Equal(week) {
		t.Errorf("snapshot window = %v, want %v", snap.Window.Start(), week.Start())
	}
}

func TestLoad_EventsOnlyForDoctors(t *testing.T) {
	tests := []struct {
		name    string
		session calendar.Session
		want    int
	}{
		{"doctor", doctor, 1},
		{"doctor without id", calendar.Session{UserID: "u1", UserType: calendar.RoleDoctor}, 0},
		{"doctor viewing as patient", calendar.Session{UserID: "u1", UserType: calendar.RoleDoctor, ViewAs: calendar.RolePatient, DoctorID: "doc-1"}, 0},
		{"patient", patient, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeSource{}
			NewLoader(src, tc.session, zerolog.Nop()).Load(context.Background(), week)
			if src.eventCalls != tc.want {
				t.Errorf("event fetches = %d, want %d", src.eventCalls, tc.want)
			}
		})
	}
}

func TestLoad_PartialFailure(t *testing.T) {
	boom := errors.New("backend down")
	src := &fakeSource{
		appointments: []calendar.Appointment{{ID: "a1"}},
		eventErr:     boom,
	}
	l := NewLoader(src, doctor, zerolog.Nop())

	snap := l.Load(context.Background(), week)

	if !errors.Is(snap.Err, boom) {
		t.Fatalf("Err = %v, want %v", snap.Err, boom)
	}
	if len(snap.Appointments) != 1 {
		t.Errorf("appointments should survive an event failure, got %d", len(snap.Appointments))
	}
	if snap.Events == nil || len(snap.Events) != 0 {
		t.Errorf("failed events should default to empty, got %v", snap.Events)
	}

	// Layout still renders over the partial data.
	layout := snap.Layout(time.Now(), calendar.DefaultFilter(), calendar.DefaultGeometry())
	if layout == nil {
		t.Fatal("expected a layout")
	}
}

func TestTickets_LastWindowWins(t *testing.T) {
	l := NewLoader(&fakeSource{}, doctor, zerolog.Nop())
	ctx := context.Background()

	ctx1, t1 := l.Begin(ctx)
	_, t2 := l.Begin(ctx)

	if t2 <= t1 {
		t.Fatalf("tickets must increase: %d then %d", t1, t2)
	}
	if l.Accept(t1) {
		t.Error("stale ticket accepted")
	}
	if !l.Accept(t2) {
		t.Error("latest ticket rejected")
	}
	if ctx1.Err() == nil {
		t.Error("previous load context should be canceled")
	}
}

func TestLoad_SupersededLoadIsCanceled(t *testing.T) {
	src := &fakeSource{block: make(chan struct{})}
	l := NewLoader(src, patient, zerolog.Nop())

	ctx1, t1 := l.Begin(context.Background())
	done := make(chan *Snapshot)
	go func() { done <- l.Fetch(ctx1, t1, week) }()

	// Navigating away cancels the first fetch.
	_, t2 := l.Begin(context.Background())

	first := <-done
	if !errors.Is(first.Err, context.Canceled) {
		t.Errorf("superseded fetch err = %v, want context.Canceled", first.Err)
	}
	if l.Accept(first.Ticket) {
		t.Error("superseded snapshot must not be accepted")
	}
	if !l.Accept(t2) {
		t.Error("latest ticket rejected")
	}
}

func TestMutations(t *testing.T) {
	src := &fakeSource{appointments: []calendar.Appointment{{ID: "a1"}}}
	l := NewLoader(src, doctor, zerolog.Nop())
	ctx := context.Background()

	if err := l.Cancel(ctx, "a1", "sick"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if src.canceledBy != calendar.RoleDoctor {
		t.Errorf("canceledBy = %s, want doctor", src.canceledBy)
	}
	if err := l.Cancel(ctx, "missing", ""); !errors.Is(err, calendar.ErrAppointmentNotFound) {
		t.Errorf("missing cancel: got %v", err)
	}

	start := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)
	if _, err := l.AddEvent(ctx, calendar.NewPersonalEvent{Title: "", Start: start, End: start.Add(time.Hour)}); !errors.Is(err, calendar.ErrEmptyTitle) {
		t.Errorf("empty title: got %v", err)
	}
	if _, err := l.AddEvent(ctx, calendar.NewPersonalEvent{Title: "Lunch", Start: start, End: start}); !errors.Is(err, calendar.ErrEndBeforeStart) {
		t.Errorf("empty interval: got %v", err)
	}
	e, err := l.AddEvent(ctx, calendar.NewPersonalEvent{Title: "Lunch", Start: start, End: start.Add(time.Hour)})
	if err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	if e.DoctorID != "doc-1" || len(src.created) != 1 {
		t.Errorf("unexpected create: %+v", e)
	}

	if err := l.DeleteEvent(ctx, "e1", true); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}
	if len(src.deleted) != 1 || !src.deleteAll {
		t.Errorf("unexpected delete: %v all=%v", src.deleted, src.deleteAll)
	}

	pl := NewLoader(src, patient, zerolog.Nop())
	if err := pl.DeleteEvent(ctx, "e1", false); !errors.Is(err, ErrNoDoctor) {
		t.Errorf("patient delete: got %v, want %v", err, ErrNoDoctor)
	}
}
