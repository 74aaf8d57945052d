package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/clinicdesk/clinicweek/internal/calendar"
	"github.com/clinicdesk/clinicweek/internal/llm"
	"github.com/clinicdesk/clinicweek/internal/summary"
)

const ruleWidth = 74

// statusSymbol returns the marker printed before a block.
func statusSymbol(b calendar.Block) string {
	switch b.Status {
	case calendar.StatusActive:
		return "○"
	case calendar.StatusPassed:
		return "✓"
	case calendar.StatusCanceled:
		return "✗"
	}
	if b.Item.BlocksAppointments {
		return "■"
	}
	return "◆"
}

// columnLabel describes where a block sits horizontally in its day column.
func columnLabel(p calendar.Placement) string {
	switch p.Mode {
	case calendar.PlacementShared:
		return fmt.Sprintf("[%d/%d]", p.Slot+1, p.SlotCount)
	case calendar.PlacementSplitLeft, calendar.PlacementSplitRight:
		side := "L"
		if p.Mode == calendar.PlacementSplitRight {
			side = "R"
		}
		if p.SlotCount > 1 {
			return fmt.Sprintf("%s%d/%d", side, p.Slot+1, p.SlotCount)
		}
		return side + "½"
	default:
		return ""
	}
}

func colorize(b calendar.Block, s string) string {
	switch b.Status {
	case calendar.StatusActive:
		return colorActive.Sprint(s)
	case calendar.StatusPassed:
		return colorPassed.Sprint(s)
	case calendar.StatusCanceled:
		return colorCanceled.Sprint(s)
	default:
		return colorEvent.Sprint(s)
	}
}

// printBlock prints one block row: marker, time range, column, label, detail.
func printBlock(w io.Writer, b calendar.Block, role calendar.Role, loc *time.Location, maxLabel int) {
	it := b.Item
	label := truncate(it.Label(role), maxLabel)
	detail := it.Detail(role)

	line := fmt.Sprintf("%s %s-%s  %-6s %-*s",
		statusSymbol(b),
		it.Start.In(loc).Format("15:04"),
		it.End.In(loc).Format("15:04"),
		columnLabel(b.Placement),
		maxLabel, label)
	line = colorize(b, line)
	if detail != "" {
		line += "  " + formatMuted(detail)
	}
	fmt.Fprintf(w, "    %s\n", strings.TrimRight(line, " "))
}

// printWeek prints the week grouped by day, followed by stats.
func printWeek(w io.Writer, s *summary.WeekSummary, role calendar.Role, width int) {
	layout := s.Layout
	header := fmt.Sprintf("WEEK: %s", layout.Window.Label())
	if !layout.Filter.IsDefault() {
		header += "  " + formatMuted(filterLabel(layout.Filter))
	}
	fmt.Fprintf(w, "\n  %s\n", formatHeader(header))
	fmt.Fprintln(w, strings.Repeat("─", ruleWidth))

	if s.FetchErr != nil {
		fmt.Fprintf(w, "  %s\n", formatError("Some calendar data could not be loaded: "+s.FetchErr.Error()))
	}

	maxLabel := max(width-40, 16)
	if layout.Empty() {
		fmt.Fprintln(w, "  Nothing to show this week.")
	}
	for i, day := range layout.Days {
		if len(day.Blocks) == 0 && day.Hidden == 0 {
			continue
		}
		title := fmt.Sprintf("%s %s", calendar.WeekdayShortName(i), day.Date.Format("Jan 2"))
		if layout.Now.In(day.Date.Location()).Format("2006-01-02") == day.Date.Format("2006-01-02") {
			title += " (today)"
		}
		fmt.Fprintf(w, "  %s\n", formatHeader(title))
		for _, b := range day.Blocks {
			printBlock(w, b, role, layout.Window.Location(), maxLabel)
		}
		if day.Hidden > 0 {
			fmt.Fprintf(w, "    %s\n", formatMuted(fmt.Sprintf("(%d hidden)", day.Hidden)))
		}
	}

	fmt.Fprintln(w, strings.Repeat("─", ruleWidth))
	printStats(w, s)
}

func printStats(w io.Writer, s *summary.WeekSummary) {
	t := s.Total
	fmt.Fprintf(w, "  Upcoming: %d  |  Passed: %d  |  Canceled: %d  |  Events: %d\n",
		t.Upcoming, t.Passed, t.Canceled, t.Events)
	fmt.Fprintf(w, "  Booked: %s", formatStats(summary.FormatHours(t.BookedMinutes)))
	if s.Busiest >= 0 {
		fmt.Fprintf(w, "  |  Busiest: %s (%s)",
			calendar.WeekdayName(s.Busiest),
			summary.FormatHours(s.Days[s.Busiest].BookedMinutes))
	}
	fmt.Fprintln(w)
	if t.BlockingEvents > 0 {
		fmt.Fprintf(w, "  %s\n", formatMuted(fmt.Sprintf("%d event(s) block bookings", t.BlockingEvents)))
	}
}

// printBriefing prints the LLM briefing wrapped to width.
func printBriefing(w io.Writer, b *llm.Briefing, width int) {
	fmt.Fprintf(w, "\n  %s\n", formatHeader("BRIEFING"))
	fmt.Fprintln(w, strings.Repeat("─", ruleWidth))
	wrapAndPrint(w, b.Headline, "  ", width-2)
	for _, n := range b.Notes {
		wrapAndPrint(w, n, "    • ", width-6)
	}
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

// wrapAndPrint wraps text to width and prints with the given prefix.
func wrapAndPrint(w io.Writer, text, prefix string, width int) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return
	}

	continuation := strings.Repeat(" ", len([]rune(prefix)))
	current := prefix
	line := ""
	for _, word := range words {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			fmt.Fprintln(w, colorBriefing.Sprint(current+line))
			current = continuation
			line = word
		}
	}
	fmt.Fprintln(w, colorBriefing.Sprint(current+line))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
