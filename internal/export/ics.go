// Package export writes calendar layouts to interchange formats.
package export

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/clinicdesk/clinicweek/internal/calendar"
)

const productID = "-//clinicdesk//clinicweek//EN"

// ICSOptions configures WriteICS.
type ICSOptions struct {
	Name  string        // calendar display name
	Role  calendar.Role // perspective used for event summaries
	Stamp time.Time     // DTSTAMP for every event; zero means now
}

// WriteICS writes every visible block of layout as a VEVENT. Canceled
// appointments carry STATUS:CANCELLED. Events that block bookings are
// OPAQUE; everything else is TRANSPARENT.
func WriteICS(w io.Writer, layout *calendar.WeekLayout, opts ICSOptions) error {
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}
	name := opts.Name
	if name == "" {
		name = "Week of " + layout.Window.Label()
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName(name)

	for _, b := range layout.Blocks() {
		addEvent(cal, b, opts.Role, stamp)
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

func addEvent(cal *ics.Calendar, b calendar.Block, role calendar.Role, stamp time.Time) {
	it := b.Item
	ev := cal.AddEvent(it.ID + "@clinicweek")
	ev.SetDtStampTime(stamp.UTC())
	ev.SetStartAt(it.Start.UTC())
	ev.SetEndAt(it.End.UTC())
	ev.SetSummary(it.Label(role))
	if d := it.Detail(role); d != "" {
		ev.SetDescription(d)
	}
	ev.SetProperty(ics.ComponentPropertyCategories, categoryFor(b.Status))

	switch {
	case b.Status == calendar.StatusCanceled:
		ev.SetStatus(ics.ObjectStatusCancelled)
	case it.IsAppointment():
		ev.SetStatus(ics.ObjectStatusConfirmed)
	}

	transp := "TRANSPARENT"
	if it.BlocksAppointments {
		transp = "OPAQUE"
	}
	ev.SetProperty(ics.ComponentPropertyTransp, transp)

	if it.Color != "" {
		ev.SetProperty(ics.ComponentPropertyColor, it.Color)
	}
}

func categoryFor(s calendar.Status) string {
	switch s {
	case calendar.StatusEvent:
		return "PERSONAL"
	case calendar.StatusCanceled:
		return "CANCELED"
	case calendar.StatusPassed:
		return "PASSED"
	default:
		return "APPOINTMENT"
	}
}
