package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/clinicdesk/clinicweek/internal/calendar"
	"github.com/clinicdesk/clinicweek/internal/summary"
	"github.com/clinicdesk/clinicweek/internal/tui/view"
)

const minColWidth = 6

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.colWidth() < minColWidth {
		return "Terminal too small"
	}

	base := m.renderBase()
	modal := m.renderModal()
	if modal == "" {
		return base
	}
	return view.RenderModalOverlay(base, modal, m.width, m.height, m.styles.ModalBg())
}

func (m Model) renderBase() string {
	parts := []string{m.titleLine()}

	grid := view.RenderGrid(m.gridState())
	if msg := m.emptyMessage(); msg != "" {
		lines := strings.Split(grid, "\n")
		if len(lines) > 2 {
			mid := 1 + (len(lines)-1)/2
			lines[mid] = m.styles.EmptyStyle.Render(msg)
		}
		grid = strings.Join(lines, "\n")
	}
	parts = append(parts, grid)

	footer := view.RenderFooter(m.footerState())
	if footer != "" {
		parts = append(parts, footer)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return view.PadLinesWithBackground(content, m.width, m.height, m.styles.palette.Bg)
}

func (m Model) titleLine() string {
	var b strings.Builder
	b.WriteString(m.styles.TitleStyle.Render("clinicweek"))
	b.WriteString(m.styles.MutedStyle.Render("  "))
	b.WriteString(m.styles.WeekStyle.Render(m.window.Label()))
	b.WriteString(m.styles.MutedStyle.Render(fmt.Sprintf("  as %s", m.role)))
	if !m.filter.IsDefault() {
		b.WriteString(m.styles.MutedStyle.Render("  " + filterLabel(m.filter)))
	}
	if m.loading || m.briefingLoading {
		b.WriteString(m.styles.MutedStyle.Render("  "))
		b.WriteString(m.spinner.View())
	}
	return b.String()
}

// emptyMessage is shown across the grid when nothing is visible.
func (m Model) emptyMessage() string {
	if m.loading || m.layout == nil || !m.layout.Empty() {
		return ""
	}
	if m.fetchErr() != nil {
		return "  Calendar data could not be loaded. Press r to retry."
	}
	hidden := 0
	for _, d := range m.layout.Days {
		hidden += d.Hidden
	}
	if hidden > 0 {
		return fmt.Sprintf("  All %d items are hidden by the filter.", hidden)
	}
	return "  Nothing scheduled this week."
}

func filterLabel(f calendar.Filter) string {
	var hidden []string
	if !f.ShowUpcoming {
		hidden = append(hidden, "upcoming")
	}
	if !f.ShowPassed {
		hidden = append(hidden, "passed")
	}
	if !f.ShowCanceled {
		hidden = append(hidden, "canceled")
	}
	return "hiding " + strings.Join(hidden, ", ")
}

// colWidth returns the width of one day column.
func (m Model) colWidth() int {
	return (m.width-(view.TimeColumnWidth-1))/7 - 1
}

// gridHeight returns the number of body rows that fit on screen.
func (m Model) gridHeight() int {
	if m.height == 0 {
		return 0
	}
	footer := len(m.footerState().Lines())
	// title and day header
	return max(m.height-footer-2, 1)
}

func (m Model) gridState() view.GridState {
	return view.GridState{
		Days:       m.layout.Days,
		Geometry:   m.geometry,
		Role:       m.role,
		Now:        m.now(),
		TodayCol:   m.todayCol(),
		FocusDay:   m.focusDay,
		Selected:   m.selected,
		ColWidth:   m.colWidth(),
		RowMinutes: rowMinutes,
		Scroll:     m.scroll,
		Height:     m.gridHeight(),
		Styles:     m.styles.Grid,
	}
}

func (m Model) footerState() view.FooterViewState {
	return view.FooterViewState{
		InnerW:     m.width,
		StatsLine:  m.statsLine(),
		StatusLine: m.statusLine(),
		HelpLine:   m.help.View(m.keys),
		Bg:         m.styles.palette.Bg,
	}
}

func (m Model) statsLine() string {
	if m.layout == nil || m.loading {
		return ""
	}
	s := summary.Summarize(m.layout)
	t := s.Total
	line := fmt.Sprintf("%d upcoming · %d passed · %d canceled · %d events · booked %s",
		t.Upcoming, t.Passed, t.Canceled, t.Events, summary.FormatHours(t.BookedMinutes))
	if s.Busiest >= 0 {
		line += " · busiest " + calendar.WeekdayShortName(s.Busiest)
	}
	return m.styles.MutedStyle.Render(line)
}

func (m Model) statusLine() string {
	switch {
	case m.statusMsg != "" && m.statusErr:
		return m.styles.ErrorStyle.Render(m.statusMsg)
	case m.statusMsg != "":
		return m.styles.StatusStyle.Render(m.statusMsg)
	case m.fetchErr() != nil:
		return m.styles.ErrorStyle.Render("Some data could not be loaded: " + m.fetchErr().Error())
	case m.briefing != nil && m.mode != ModeBriefing:
		return m.styles.StatusStyle.Render(m.briefing.Headline)
	}
	return ""
}

func (m Model) renderModal() string {
	switch m.mode {
	case ModeDetail:
		b, ok := m.selectedBlock()
		if !ok {
			return ""
		}
		body := view.RenderDetails(view.BlockDetails(b, m.role, m.loc), m.styles.Modal)
		footer := "esc close"
		if b.Item.IsAppointment() && b.Status != calendar.StatusCanceled {
			footer = "x cancel · esc close"
		}
		return view.RenderModalFrame(b.Item.Label(m.role), body, footer, m.styles.Modal)

	case ModeConfirmCancel:
		b, ok := m.selectedBlock()
		if !ok {
			return ""
		}
		it := b.Item
		body := fmt.Sprintf("%s %s-%s\n\n%s",
			it.Start.Format("Mon Jan 2"), it.Start.Format("15:04"), it.End.Format("15:04"),
			m.reason.View())
		return view.RenderModalFrame("Cancel "+it.Label(m.role)+"?", body, "enter confirm · esc back", m.styles.Modal)

	case ModeBriefing:
		if m.briefing == nil {
			return ""
		}
		var body strings.Builder
		for i, n := range m.briefing.Notes {
			if i > 0 {
				body.WriteString("\n")
			}
			body.WriteString("• " + n)
		}
		return view.RenderModalFrame(m.briefing.Headline, body.String(), "esc close", m.styles.Modal)
	}
	return ""
}
