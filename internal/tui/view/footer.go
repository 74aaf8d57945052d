package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// FooterViewState holds the strings needed to render the footer section.
type FooterViewState struct {
	InnerW     int
	StatsLine  string
	StatusLine string
	HelpLine   string
	Bg         lipgloss.Color
}

// Lines returns the non-empty footer lines truncated to the inner width.
func (s FooterViewState) Lines() []string {
	var lines []string
	for _, l := range []string{s.StatsLine, s.StatusLine, s.HelpLine} {
		if l == "" {
			continue
		}
		for _, part := range strings.Split(l, "\n") {
			lines = append(lines, ansi.Truncate(part, s.InnerW, "…"))
		}
	}
	return lines
}

// RenderFooter renders stats, status and help lines.
func RenderFooter(s FooterViewState) string {
	lines := s.Lines()
	if len(lines) == 0 {
		return ""
	}
	return PlaceBox(s.InnerW, len(lines), lipgloss.Bottom, strings.Join(lines, "\n"), s.Bg)
}
