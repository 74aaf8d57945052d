// Package view provides rendering helpers for the TUI.
package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// PlaceBox renders content in a lipgloss.Place box with background fill.
func PlaceBox(w, h int, vAlign lipgloss.Position, content string, bg lipgloss.Color) string {
	placed := lipgloss.Place(
		w,
		h,
		lipgloss.Left,
		vAlign,
		content,
		lipgloss.WithWhitespaceBackground(bg),
	)
	return PadLinesWithBackground(placed, w, h, bg)
}

// PadLinesWithBackground pads or crops content to exactly width x height.
func PadLinesWithBackground(content string, width, height int, bg lipgloss.Color) string {
	if width <= 0 || height <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}

	pad := lipgloss.NewStyle().Background(bg)
	for i, line := range lines {
		w := lipgloss.Width(line)
		switch {
		case w > width:
			lines[i] = ansi.Cut(line, 0, width)
		case w < width:
			lines[i] = line + pad.Render(strings.Repeat(" ", width-w))
		}
	}
	return strings.Join(lines, "\n")
}

// RenderModalOverlay centers modal and splices it over base.
func RenderModalOverlay(base, modal string, width, height int, modalBg lipgloss.Color) string {
	modalLines := strings.Split(modal, "\n")
	modalWidth := 0
	for _, line := range modalLines {
		modalWidth = max(modalWidth, lipgloss.Width(line))
	}
	if modalWidth == 0 {
		return base
	}
	modalWidth = min(modalWidth, width)
	modalHeight := min(len(modalLines), height)

	top := max((height-modalHeight)/2, 0)
	left := max((width-modalWidth)/2, 0)

	pad := lipgloss.NewStyle().Background(modalBg)
	for i, line := range modalLines {
		w := lipgloss.Width(line)
		if w > modalWidth {
			line = ansi.Cut(line, 0, modalWidth)
		} else if w < modalWidth {
			line += pad.Render(strings.Repeat(" ", modalWidth-w))
		}
		modalLines[i] = applyBackgroundResets(line, modalBg) + ansi.ResetStyle
	}

	baseLines := strings.Split(PadLinesWithBackground(base, width, height, lipgloss.Color("")), "\n")
	for row := top; row < top+modalHeight; row++ {
		baseLine := baseLines[row]
		baseLines[row] = ansi.Cut(baseLine, 0, left) + modalLines[row-top] + ansi.Cut(baseLine, left+modalWidth, width)
	}
	return strings.Join(baseLines, "\n")
}

// applyBackgroundResets reapplies bg after every ANSI reset so nested
// styles do not punch holes into the modal.
func applyBackgroundResets(line string, bg lipgloss.Color) string {
	if bg == "" {
		return line
	}
	seq := ansi.Style{}.BackgroundColor(ansi.HexColor(string(bg))).String()
	line = strings.ReplaceAll(line, ansi.ResetStyle, ansi.ResetStyle+seq)
	line = strings.ReplaceAll(line, "\x1b[0m", "\x1b[0m"+seq)
	line = strings.ReplaceAll(line, "\x1b[49m", "\x1b[49m"+seq)
	return line
}

// fit truncates s to width cells and pads it with spaces.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, "…")
	if w := ansi.StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// center pads s on both sides to width cells.
func center(s string, width int) string {
	s = ansi.Truncate(s, width, "…")
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}
