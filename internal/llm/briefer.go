package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clinicdesk/clinicweek/internal/calendar"
)

const briefingSystemPrompt = `You are a clinic scheduling assistant. You read a week of appointments and personal blocks and write a short briefing for the person who owns the calendar. Reply with JSON only.`

const briefingPromptTemplate = `Summarize this week for a %s.

Reply with exactly this JSON shape:
{"headline": "one sentence, under 80 characters", "notes": ["up to 4 short notes"]}

Notes should point out the busiest day, free gaps longer than an hour
inside working hours, canceled slots that could be rebooked, and blocks
that prevent bookings. Use times from the data. Skip a note if it does
not apply.

Week: %s
Status markers: [+] upcoming, [x] passed, [-] canceled, [E] personal event, [B] blocking event

%s`

// Briefing is a short natural-language summary of a week.
type Briefing struct {
	Headline string   `json:"headline"`
	Notes    []string `json:"notes"`
}

// String renders the briefing as plain text.
func (b *Briefing) String() string {
	var sb strings.Builder
	sb.WriteString(b.Headline)
	for _, n := range b.Notes {
		sb.WriteString("\n- ")
		sb.WriteString(n)
	}
	return sb.String()
}

// Briefer produces week briefings with an LLM client.
type Briefer struct {
	client Client
}

// NewBriefer creates a briefer.
func NewBriefer(client Client) *Briefer {
	return &Briefer{client: client}
}

// BriefWeek asks the model to summarize the visible blocks of layout as
// seen by role.
func (b *Briefer) BriefWeek(ctx context.Context, layout *calendar.WeekLayout, role calendar.Role) (*Briefing, error) {
	if layout.Empty() {
		return &Briefing{Headline: "Nothing scheduled this week."}, nil
	}

	prompt := fmt.Sprintf(briefingPromptTemplate, role, layout.Window.Label(), FormatWeek(layout, role))

	var result Briefing
	if err := b.client.ChatJSON(ctx, []Message{
		{Role: RoleSystem, Content: briefingSystemPrompt},
		{Role: RoleUser, Content: prompt},
	}, &result); err != nil {
		return nil, fmt.Errorf("briefing week: %w", err)
	}
	if strings.TrimSpace(result.Headline) == "" {
		return nil, errors.New("briefing week: empty headline")
	}
	return &result, nil
}

// FormatWeek renders the layout as a compact agenda for the prompt.
func FormatWeek(layout *calendar.WeekLayout, role calendar.Role) string {
	var sb strings.Builder
	for i, day := range layout.Days {
		if len(day.Blocks) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s %s\n", calendar.WeekdayShortName(i), day.Date.Format("Jan 2"))
		for _, blk := range day.Blocks {
			it := blk.Item
			fmt.Fprintf(&sb, "  %s %s-%s  %s  %s\n",
				marker(blk),
				it.Start.In(day.Date.Location()).Format("15:04"),
				it.End.In(day.Date.Location()).Format("15:04"),
				it.Label(role),
				formatMinutes(int(it.Duration().Minutes())))
		}
	}
	return sb.String()
}

func marker(b calendar.Block) string {
	switch b.Status {
	case calendar.StatusActive:
		return "[+]"
	case calendar.StatusPassed:
		return "[x]"
	case calendar.StatusCanceled:
		return "[-]"
	}
	if b.Item.BlocksAppointments {
		return "[B]"
	}
	return "[E]"
}

// formatMinutes formats minutes as a human-readable duration.
func formatMinutes(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}
