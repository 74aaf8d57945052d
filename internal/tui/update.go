package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clinicdesk/clinicweek/internal/calendar"
	"github.com/clinicdesk/clinicweek/internal/dateutil"
	"github.com/clinicdesk/clinicweek/internal/tui/commands"
	"github.com/clinicdesk/clinicweek/internal/tui/view"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampScroll()
		return m, nil

	case commands.WeekLoadedMsg:
		snap := msg.Snapshot
		if !m.loader.Accept(snap.Ticket) || !snap.Window.Equal(m.window) {
			m.logger.Debug().
				Uint64("ticket", uint64(snap.Ticket)).
				Time("week", snap.Window.Start()).
				Msg("dropping stale week")
			return m, nil
		}
		m.snapshot = snap
		m.loading = false
		m.relayout()
		if !m.scrolled {
			m.scrollToStart()
			m.scrolled = true
		}
		m.clampScroll()
		return m, nil

	case commands.CanceledMsg:
		status := m.setStatus("Appointment canceled", false)
		load := m.navigate(m.window)
		return m, tea.Batch(status, load, m.spinner.Tick)

	case commands.BriefingMsg:
		if !msg.Window.Equal(m.window) {
			return m, nil
		}
		m.briefingLoading = false
		m.briefing = msg.Briefing
		m.mode = ModeBriefing
		return m, nil

	case commands.ErrMsg:
		m.briefingLoading = false
		m.logger.Error().Err(msg.Err).Msg("tui command failed")
		cmd := m.setStatus(errorText(msg.Err), true)
		return m, cmd

	case commands.StatusMsg:
		cmd := m.setStatus(msg.Msg, false)
		return m, cmd

	case commands.ClearStatusMsg:
		if msg.ID == m.statusID {
			m.statusMsg = ""
			m.statusErr = false
		}
		return m, nil

	case commands.TickMsg:
		m.relayout()
		return m, commands.Tick(clockInterval)

	case spinner.TickMsg:
		if !m.loading && !m.briefingLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func errorText(err error) string {
	switch {
	case errors.Is(err, calendar.ErrAlreadyCanceled):
		return "Appointment was already canceled"
	case errors.Is(err, calendar.ErrAppointmentNotFound):
		return "Appointment not found"
	}
	return err.Error()
}

// setStatus shows a temporary status message.
func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusID++
	m.statusMsg = msg
	m.statusErr = isErr
	return commands.ClearStatusAfter(m.statusID, statusTimeout)
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeConfirmCancel:
		return m.handleCancelKeys(msg)
	case ModeDetail, ModeBriefing:
		switch msg.String() {
		case "esc", "enter", "q":
			m.mode = ModeNormal
		case "x":
			if m.mode == ModeDetail {
				return m.startCancel()
			}
		}
		return m, nil
	}
	return m.handleNormalKeys(msg)
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.PrevWeek):
		cmd := m.navigate(m.window.Previous())
		return m, tea.Batch(cmd, m.spinner.Tick)
	case key.Matches(msg, m.keys.NextWeek):
		cmd := m.navigate(m.window.Next())
		return m, tea.Batch(cmd, m.spinner.Tick)
	case key.Matches(msg, m.keys.Today):
		now := m.now()
		cmd := m.navigate(m.window.Today(now))
		m.focusDay = m.window.DayIndex(now)
		return m, tea.Batch(cmd, m.spinner.Tick)
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.navigate(m.window)
		return m, tea.Batch(cmd, m.spinner.Tick)

	case key.Matches(msg, m.keys.PrevDay):
		m.moveFocus(-1)
	case key.Matches(msg, m.keys.NextDay):
		m.moveFocus(1)
	case key.Matches(msg, m.keys.NextBlock):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.PrevBlock):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.ScrollDown):
		m.scroll += max(m.gridHeight()-1, 1)
		m.clampScroll()
	case key.Matches(msg, m.keys.ScrollUp):
		m.scroll -= max(m.gridHeight()-1, 1)
		m.clampScroll()

	case key.Matches(msg, m.keys.ToggleUpcoming):
		m.toggle(calendar.StatusActive)
	case key.Matches(msg, m.keys.TogglePassed):
		m.toggle(calendar.StatusPassed)
	case key.Matches(msg, m.keys.ToggleCanceled):
		m.toggle(calendar.StatusCanceled)

	case key.Matches(msg, m.keys.Detail):
		if _, ok := m.selectedBlock(); ok {
			m.mode = ModeDetail
		}
	case key.Matches(msg, m.keys.Cancel):
		return m.startCancel()

	case key.Matches(msg, m.keys.Brief):
		if m.briefer == nil {
			cmd := m.setStatus("Briefings are disabled (set [llm] provider)", true)
			return m, cmd
		}
		if m.loading || m.briefingLoading {
			return m, nil
		}
		m.briefingLoading = true
		return m, tea.Batch(commands.Brief(m.briefer, m.layout, m.role), m.spinner.Tick)

	case key.Matches(msg, m.keys.Yank):
		if m.focusDay < 0 {
			return m, nil
		}
		return m, commands.Yank(dayAgenda(m.layout.Days[m.focusDay], m.focusDay, m.role), m.write)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.clampScroll()
	}
	return m, nil
}

// handleCancelKeys handles the cancel-reason prompt.
func (m Model) handleCancelKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.reason.Blur()
		return m, nil
	case "enter":
		b, ok := m.selectedBlock()
		m.mode = ModeNormal
		m.reason.Blur()
		if !ok {
			return m, nil
		}
		return m, commands.CancelAppointment(m.loader, b.Item.SourceID, strings.TrimSpace(m.reason.Value()))
	}

	var cmd tea.Cmd
	m.reason, cmd = m.reason.Update(msg)
	return m, cmd
}

// startCancel opens the cancel prompt for the selected appointment.
func (m Model) startCancel() (tea.Model, tea.Cmd) {
	b, ok := m.selectedBlock()
	var problem string
	switch {
	case !ok:
		problem = "Select an appointment first (tab)"
	case !b.Item.IsAppointment():
		problem = "Personal events cannot be canceled"
	case b.Status == calendar.StatusCanceled:
		problem = "Appointment was already canceled"
	}
	if problem != "" {
		cmd := m.setStatus(problem, true)
		return m, cmd
	}
	m.mode = ModeConfirmCancel
	m.reason.SetValue("")
	cmd := m.reason.Focus()
	return m, cmd
}

// toggle flips a status filter and relays out the current data.
func (m *Model) toggle(s calendar.Status) {
	m.filter = m.filter.Toggle(s)
	m.relayout()
	m.clampScroll()
}

// moveFocus moves the focused day, wrapping around the week.
func (m *Model) moveFocus(delta int) {
	m.focusDay = ((m.focusDay+delta)%7 + 7) % 7
	m.selected = ""
}

// moveSelection steps through the blocks of the focused day.
func (m *Model) moveSelection(delta int) {
	if m.focusDay < 0 {
		m.focusDay = 0
	}
	blocks := m.layout.Days[m.focusDay].Blocks
	if len(blocks) == 0 {
		m.selected = ""
		return
	}

	idx := -1
	for i, b := range blocks {
		if b.Item.ID == m.selected {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && delta > 0:
		idx = 0
	case idx < 0:
		idx = len(blocks) - 1
	default:
		idx = ((idx+delta)%len(blocks) + len(blocks)) % len(blocks)
	}
	m.selected = blocks[idx].Item.ID
	m.ensureSelectedVisible()
}

// scrollToStart scrolls to the current time on today's week, or to the
// first block of the week otherwise.
func (m *Model) scrollToStart() {
	state := m.gridState()
	rows := view.GridRows(m.geometry, rowMinutes)

	target := -1
	if col := m.todayCol(); col >= 0 {
		origin := dateutil.At(m.layout.Days[col].Date, m.geometry.DayStart)
		target = int(m.now().Sub(origin).Minutes()) / rowMinutes
	}
	if target < 0 || target >= rows {
		target = rows
		for _, day := range state.Days {
			for _, b := range day.Blocks {
				first, _ := view.BlockRows(b, m.geometry, rowMinutes)
				target = min(target, first)
			}
		}
	}
	if target >= rows {
		target = 0
	}
	m.scroll = max(target-1, 0)
}

// ensureSelectedVisible scrolls so the selected block is on screen.
func (m *Model) ensureSelectedVisible() {
	first, last, ok := view.SelectedRows(m.gridState(), m.selected)
	if !ok {
		return
	}
	h := m.gridHeight()
	switch {
	case first < m.scroll:
		m.scroll = first
	case h > 0 && last > m.scroll+h:
		m.scroll = min(first, last-h)
	}
	m.clampScroll()
}

func (m *Model) clampScroll() {
	rows := view.GridRows(m.geometry, rowMinutes)
	h := m.gridHeight()
	if h <= 0 {
		return
	}
	m.scroll = min(m.scroll, max(rows-h, 0))
	m.scroll = max(m.scroll, 0)
}

// dayAgenda renders one day as plain text for the clipboard.
func dayAgenda(d calendar.DayLayout, dayIndex int, role calendar.Role) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", calendar.WeekdayName(dayIndex), d.Date.Format("Jan 2, 2006"))
	if len(d.Blocks) == 0 {
		b.WriteString("  Nothing scheduled\n")
	}
	for _, blk := range d.Blocks {
		it := blk.Item
		fmt.Fprintf(&b, "  %s-%s  %s%s", it.Start.Format("15:04"), it.End.Format("15:04"), view.Glyph(blk), it.Label(role))
		if detail := it.Detail(role); detail != "" {
			fmt.Fprintf(&b, " (%s)", detail)
		}
		if blk.Status == calendar.StatusCanceled {
			b.WriteString(" [canceled]")
		}
		b.WriteString("\n")
	}
	if d.Hidden > 0 {
		fmt.Fprintf(&b, "  %d hidden by filter\n", d.Hidden)
	}
	return b.String()
}
