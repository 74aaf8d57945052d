// Package summary provides week statistics and the optional briefing shared
// by the CLI and the TUI.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicdesk/clinicweek/internal/agenda"
	"github.com/clinicdesk/clinicweek/internal/calendar"
	"github.com/clinicdesk/clinicweek/internal/llm"
)

// Stats counts the visible blocks of a day or week by status.
type Stats struct {
	Upcoming       int
	Passed         int
	Canceled       int
	Events         int
	BlockingEvents int
	BookedMinutes  int // non-canceled appointment time
}

// Appointments returns the number of appointments of any status.
func (s Stats) Appointments() int {
	return s.Upcoming + s.Passed + s.Canceled
}

// Add returns the sum of two stats.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Upcoming:       s.Upcoming + o.Upcoming,
		Passed:         s.Passed + o.Passed,
		Canceled:       s.Canceled + o.Canceled,
		Events:         s.Events + o.Events,
		BlockingEvents: s.BlockingEvents + o.BlockingEvents,
		BookedMinutes:  s.BookedMinutes + o.BookedMinutes,
	}
}

// DayStats computes stats for one day column.
func DayStats(d calendar.DayLayout) Stats {
	var s Stats
	for _, b := range d.Blocks {
		switch b.Status {
		case calendar.StatusActive:
			s.Upcoming++
		case calendar.StatusPassed:
			s.Passed++
		case calendar.StatusCanceled:
			s.Canceled++
		case calendar.StatusEvent:
			s.Events++
			if b.Item.BlocksAppointments {
				s.BlockingEvents++
			}
		}
		if b.Item.IsAppointment() && b.Status != calendar.StatusCanceled {
			if m := int(b.Item.Duration().Minutes()); m > 0 {
				s.BookedMinutes += m
			}
		}
	}
	return s
}

// WeekSummary holds aggregated week data and optional briefing.
type WeekSummary struct {
	Layout   *calendar.WeekLayout
	Days     [7]Stats
	Total    Stats
	Busiest  int // day index with the most booked minutes, -1 if none
	FetchErr error
	Briefing *llm.Briefing
}

// Summarize computes per-day and weekly stats for a layout.
func Summarize(layout *calendar.WeekLayout) *WeekSummary {
	s := &WeekSummary{Layout: layout, Busiest: -1}
	best := 0
	for i, d := range layout.Days {
		s.Days[i] = DayStats(d)
		s.Total = s.Total.Add(s.Days[i])
		if s.Days[i].BookedMinutes > best {
			best = s.Days[i].BookedMinutes
			s.Busiest = i
		}
	}
	return s
}

// BuildWeekSummaryOptions configures the loader-backed summary builder.
type BuildWeekSummaryOptions struct {
	Week     calendar.WeekWindow
	Now      time.Time
	Filter   calendar.Filter
	Geometry calendar.Geometry
	Briefer  *llm.Briefer // nil skips the briefing
}

// BuildWeekSummary loads the requested week, lays it out and optionally adds
// a briefing. Fetch failures are recorded on the summary, not returned.
func BuildWeekSummary(ctx context.Context, loader *agenda.Loader, opts BuildWeekSummaryOptions) (*WeekSummary, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	snap := loader.Load(ctx, opts.Week)
	summary := Summarize(snap.Layout(now, opts.Filter, opts.Geometry))
	summary.FetchErr = snap.Err

	if opts.Briefer != nil {
		b, err := opts.Briefer.BriefWeek(ctx, summary.Layout, loader.Session().EffectiveRole())
		if err != nil {
			return summary, fmt.Errorf("building briefing: %w", err)
		}
		summary.Briefing = b
	}

	return summary, nil
}

// FormatHours renders minutes as "Xh" or "XhYm".
func FormatHours(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02dm", h, m)
	}
}
