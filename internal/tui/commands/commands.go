// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/clinicdesk/clinicweek/internal/agenda"
	"github.com/clinicdesk/clinicweek/internal/calendar"
	"github.com/clinicdesk/clinicweek/internal/llm"
)

// WeekLoadedMsg is sent when a week snapshot has been fetched. The snapshot
// may belong to a window the user already left; check its ticket.
type WeekLoadedMsg struct {
	Snapshot *agenda.Snapshot
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsg is sent for temporary status messages.
type StatusMsg struct {
	Msg string
}

// ClearStatusMsg clears the status message if it is still the one with ID.
type ClearStatusMsg struct {
	ID int
}

// CanceledMsg is sent after an appointment was canceled.
type CanceledMsg struct {
	ID string
}

// BriefingMsg is sent when a week briefing is ready.
type BriefingMsg struct {
	Window   calendar.WeekWindow
	Briefing *llm.Briefing
}

// TickMsg fires periodically so statuses follow the clock.
type TickMsg struct {
	Now time.Time
}

// LoadWeek fetches w under a ticket issued by loader.Begin.
func LoadWeek(ctx context.Context, loader *agenda.Loader, ticket agenda.Ticket, w calendar.WeekWindow) tea.Cmd {
	return func() tea.Msg {
		return WeekLoadedMsg{Snapshot: loader.Fetch(ctx, ticket, w)}
	}
}

// CancelAppointment cancels an appointment through the loader.
func CancelAppointment(loader *agenda.Loader, id, reason string) tea.Cmd {
	return func() tea.Msg {
		if err := loader.Cancel(context.Background(), id, reason); err != nil {
			return ErrMsg{Err: err}
		}
		return CanceledMsg{ID: id}
	}
}

// Brief asks briefer for a summary of layout.
func Brief(briefer *llm.Briefer, layout *calendar.WeekLayout, role calendar.Role) tea.Cmd {
	return func() tea.Msg {
		b, err := briefer.BriefWeek(context.Background(), layout, role)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("briefing: %w", err)}
		}
		return BriefingMsg{Window: layout.Window, Briefing: b}
	}
}

// Yank copies text with write, usually clipboard.WriteAll.
func Yank(text string, write func(string) error) tea.Cmd {
	return func() tea.Msg {
		if err := write(text); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return StatusMsg{Msg: "Week copied to clipboard"}
	}
}

// ClearStatusAfter schedules a ClearStatusMsg.
func ClearStatusAfter(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{ID: id}
	})
}

// Tick schedules the next TickMsg.
func Tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg{Now: t}
	})
}
