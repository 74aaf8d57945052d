package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the UI.
var (
	// Upcoming appointments: green, they still need attention
	colorActive = color.New(color.FgGreen)

	// Passed appointments: dim
	colorPassed = color.New(color.FgWhite, color.Faint)

	// Canceled appointments: red, struck through where supported
	colorCanceled = color.New(color.FgRed, color.CrossedOut)

	// Personal events: yellow, matching the default event color
	colorEvent = color.New(color.FgYellow)

	// Briefing text
	colorBriefing = color.New(color.FgCyan)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	colorStats = color.New(color.FgGreen, color.Bold)
	colorMuted = color.New(color.FgWhite, color.Faint)
	colorError = color.New(color.FgRed, color.Bold)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isTerminal reports whether stdout is a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatStats(s string) string {
	return colorStats.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

func formatError(s string) string {
	return colorError.Sprint(s)
}
