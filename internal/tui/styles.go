package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/clinicdesk/clinicweek/internal/calendar"
	"github.com/clinicdesk/clinicweek/internal/tui/theme"
	"github.com/clinicdesk/clinicweek/internal/tui/view"
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	TitleStyle   lipgloss.Style
	WeekStyle    lipgloss.Style
	MutedStyle   lipgloss.Style
	StatusStyle  lipgloss.Style
	ErrorStyle   lipgloss.Style
	SpinnerStyle lipgloss.Style
	EmptyStyle   lipgloss.Style

	// Input for the cancel reason
	InputTextStyle   lipgloss.Style
	InputPromptStyle lipgloss.Style

	Grid  view.GridStyles
	Modal view.ModalStyles
	Help  help.Styles
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	s := &Styles{palette: p}

	base := lipgloss.NewStyle().Foreground(p.Fg).Background(p.Bg)

	s.TitleStyle = base.Bold(true).Foreground(p.Accent)
	s.WeekStyle = base.Bold(true)
	s.MutedStyle = base.Foreground(p.FgMuted)
	s.StatusStyle = base.Foreground(p.Fg)
	s.ErrorStyle = base.Bold(true).Foreground(p.Error)
	s.SpinnerStyle = base.Foreground(p.Accent)
	s.EmptyStyle = base.Italic(true).Foreground(p.FgMuted)

	s.InputTextStyle = lipgloss.NewStyle().Foreground(p.Fg).Background(p.BgHighlight)
	s.InputPromptStyle = s.InputTextStyle.Foreground(p.Accent)

	s.Grid = view.GridStyles{
		Time:        base.Foreground(p.FgMuted),
		Now:         base.Bold(true).Foreground(p.Today),
		Separator:   base.Foreground(p.BgSelection),
		Cell:        base,
		CellHour:    lipgloss.NewStyle().Background(p.BgHighlight),
		CellFocus:   lipgloss.NewStyle().Background(p.BgSelection),
		Header:      base.Bold(true),
		HeaderToday: base.Bold(true).Foreground(p.Today),
		HeaderFocus: lipgloss.NewStyle().Bold(true).Foreground(p.TextOnAccent).Background(p.Accent),
		Block:       s.blockStyle,
	}

	modalBg := p.BgHighlight
	s.Modal = view.ModalStyles{
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			BorderBackground(modalBg).
			Background(modalBg).
			Foreground(p.Fg).
			Padding(1, 2),
		Title:  lipgloss.NewStyle().Bold(true).Foreground(p.Accent).Background(modalBg),
		Label:  lipgloss.NewStyle().Foreground(p.FgMuted).Background(modalBg),
		Body:   lipgloss.NewStyle().Foreground(p.Fg).Background(modalBg),
		Footer: lipgloss.NewStyle().Italic(true).Foreground(p.FgMuted).Background(modalBg),
	}

	s.Help = help.New().Styles
	s.Help.ShortKey = base.Foreground(p.Accent)
	s.Help.ShortDesc = base.Foreground(p.FgMuted)
	s.Help.ShortSeparator = base.Foreground(p.BgSelection)
	s.Help.FullKey = s.Help.ShortKey
	s.Help.FullDesc = s.Help.ShortDesc
	s.Help.FullSeparator = s.Help.ShortSeparator

	return s
}

// blockStyle colors one block segment by status.
func (s *Styles) blockStyle(b calendar.Block, alt, selected bool) lipgloss.Style {
	if selected {
		return lipgloss.NewStyle().
			Bold(true).
			Foreground(s.palette.TextOnAccent).
			Background(s.palette.Accent)
	}

	colors := s.palette.Block(b)
	bg := colors.Bg
	if alt {
		bg = colors.BgAlt
	}
	style := lipgloss.NewStyle().Foreground(colors.Fg).Background(bg)
	switch b.Status {
	case calendar.StatusCanceled:
		style = style.Strikethrough(true)
	case calendar.StatusPassed:
		style = style.Faint(true)
	}
	return style
}

// ModalBg returns the modal background color for overlays.
func (s *Styles) ModalBg() lipgloss.Color {
	return s.palette.BgHighlight
}
