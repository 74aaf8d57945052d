// Package agenda loads calendar data for a week window and applies
// mutations against a calendar.Source.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/clinicdesk/clinicweek/internal/calendar"
)

// Ticket identifies one load. Only the most recently issued ticket is
// accepted; results carrying an older ticket belong to a window the user
// has already navigated away from.
type Ticket uint64

// Snapshot is the data fetched for one window.
type Snapshot struct {
	Ticket       Ticket
	Window       calendar.WeekWindow
	Appointments []calendar.Appointment
	Events       []calendar.PersonalEvent
	FetchedAt    time.Time
	Err          error // fetch failures; the failed collection is empty
}

// Layout runs the layout pipeline over the snapshot.
func (s *Snapshot) Layout(now time.Time, f calendar.Filter, g calendar.Geometry) *calendar.WeekLayout {
	return calendar.BuildLayout(now, s.Window, s.Appointments, s.Events, f, g)
}

// Loader fetches snapshots from a source on behalf of one session.
type Loader struct {
	source  calendar.Source
	session calendar.Session
	logger  zerolog.Logger
	now     func() time.Time

	mu     sync.Mutex
	latest Ticket
	cancel context.CancelFunc
}

// NewLoader creates a loader.
func NewLoader(source calendar.Source, session calendar.Session, logger zerolog.Logger) *Loader {
	return &Loader{
		source:  source,
		session: session,
		logger:  logger,
		now:     time.Now,
	}
}

// Session returns the session the loader fetches for.
func (l *Loader) Session() calendar.Session {
	return l.session
}

// Begin issues a new ticket and cancels the previous in-flight load.
// The returned context is canceled when a newer load begins.
func (l *Loader) Begin(ctx context.Context) (context.Context, Ticket) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}
	ctx, l.cancel = context.WithCancel(ctx)
	l.latest++
	return ctx, l.latest
}

// Accept reports whether t is the most recently issued ticket.
func (l *Loader) Accept(t Ticket) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return t == l.latest
}

// Load begins a new load and fetches the window.
func (l *Loader) Load(ctx context.Context, w calendar.WeekWindow) *Snapshot {
	ctx, ticket := l.Begin(ctx)
	return l.Fetch(ctx, ticket, w)
}

// Fetch fetches appointments and personal events for w concurrently over
// the window's padded fetch range. A failed collection defaults to empty
// and its error is recorded on the snapshot.
func (l *Loader) Fetch(ctx context.Context, ticket Ticket, w calendar.WeekWindow) *Snapshot {
	from, to := w.FetchRange()
	snap := &Snapshot{Ticket: ticket, Window: w}

	var apptErr, eventErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appts, err := l.source.Appointments(gctx, l.session, from, to)
		if err != nil {
			apptErr = fmt.Errorf("fetching appointments: %w", err)
			return nil
		}
		snap.Appointments = appts
		return nil
	})
	if l.wantsEvents() {
		g.Go(func() error {
			events, err := l.source.PersonalEvents(gctx, l.session.DoctorID, from, to)
			if err != nil {
				eventErr = fmt.Errorf("fetching personal events: %w", err)
				return nil
			}
			snap.Events = events
			return nil
		})
	}
	_ = g.Wait()

	if snap.Appointments == nil {
		snap.Appointments = []calendar.Appointment{}
	}
	if snap.Events == nil {
		snap.Events = []calendar.PersonalEvent{}
	}
	snap.Err = errors.Join(apptErr, eventErr)
	snap.FetchedAt = l.now()

	ev := l.logger.Debug()
	if snap.Err != nil {
		ev = l.logger.Warn().Err(snap.Err)
	}
	ev.Uint64("ticket", uint64(ticket)).
		Time("week", w.Start()).
		Int("appointments", len(snap.Appointments)).
		Int("events", len(snap.Events)).
		Msg("loaded week")

	return snap
}

// wantsEvents reports whether personal events apply to the session.
// Only doctors own personal events.
func (l *Loader) wantsEvents() bool {
	return l.session.EffectiveRole() == calendar.RoleDoctor && l.session.DoctorID != ""
}

// Cancel cancels an appointment as the session's effective role.
func (l *Loader) Cancel(ctx context.Context, id, reason string) error {
	if err := l.source.CancelAppointment(ctx, id, l.session.EffectiveRole(), reason); err != nil {
		return fmt.Errorf("canceling appointment %s: %w", id, err)
	}
	l.logger.Info().Str("appointment", id).Msg("appointment canceled")
	return nil
}

// AddEvent creates a personal event for the session's doctor.
func (l *Loader) AddEvent(ctx context.Context, e calendar.NewPersonalEvent) (*calendar.PersonalEvent, error) {
	if l.session.DoctorID == "" {
		return nil, ErrNoDoctor
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	created, err := l.source.CreatePersonalEvent(ctx, l.session.DoctorID, e)
	if err != nil {
		return nil, fmt.Errorf("creating personal event: %w", err)
	}
	l.logger.Info().Str("event", created.ID).Str("title", created.Title).Msg("personal event created")
	return created, nil
}

// DeleteEvent deletes a personal event, or its whole series when all is set.
func (l *Loader) DeleteEvent(ctx context.Context, id string, all bool) error {
	if l.session.DoctorID == "" {
		return ErrNoDoctor
	}
	if err := l.source.DeletePersonalEvent(ctx, l.session.DoctorID, id, all); err != nil {
		return fmt.Errorf("deleting personal event %s: %w", id, err)
	}
	l.logger.Info().Str("event", id).Bool("series", all).Msg("personal event deleted")
	return nil
}

// ErrNoDoctor is returned for event mutations without a doctor id.
var ErrNoDoctor = errors.New("session has no doctor_id")
