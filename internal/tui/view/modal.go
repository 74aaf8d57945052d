package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/clinicdesk/clinicweek/internal/calendar"
)

// ModalStyles groups the styles needed to render modal frames.
type ModalStyles struct {
	Frame  lipgloss.Style
	Title  lipgloss.Style
	Label  lipgloss.Style
	Body   lipgloss.Style
	Footer lipgloss.Style
}

// RenderModalFrame renders a modal with the provided title, body, and footer.
func RenderModalFrame(title, body, footer string, styles ModalStyles) string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(title))
	if body != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Body.Render(body))
	}
	if footer != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Footer.Render(footer))
	}

	return styles.Frame.Render(b.String())
}

// DetailField is one labeled row of the block detail modal.
type DetailField struct {
	Label string
	Value string
}

// BlockDetails lists what the detail modal shows for b.
func BlockDetails(b calendar.Block, role calendar.Role, loc *time.Location) []DetailField {
	it := b.Item
	if loc == nil {
		loc = it.Start.Location()
	}
	fields := []DetailField{
		{"When", fmt.Sprintf("%s %s-%s", it.Start.In(loc).Format("Mon Jan 2"), it.Start.In(loc).Format("15:04"), it.End.In(loc).Format("15:04"))},
		{"Status", string(b.Status)},
	}

	if a := it.Appointment; a != nil {
		if role != calendar.RolePatient && a.PatientName != "" {
			patient := a.PatientName
			if a.PatientAge > 0 {
				patient += fmt.Sprintf(" (%d)", a.PatientAge)
			}
			fields = append(fields, DetailField{"Patient", patient})
		}
		if role != calendar.RoleDoctor && a.DoctorName != "" {
			fields = append(fields, DetailField{"Doctor", "Dr. " + a.DoctorName})
		}
		if a.Specialty != "" {
			fields = append(fields, DetailField{"Specialty", a.Specialty})
		}
		if a.Notes != "" {
			fields = append(fields, DetailField{"Notes", a.Notes})
		}
	}
	if e := it.Event; e != nil {
		if e.EventType != "" {
			fields = append(fields, DetailField{"Type", e.EventType})
		}
		if e.Description != "" {
			fields = append(fields, DetailField{"Notes", e.Description})
		}
		if it.BlocksAppointments {
			fields = append(fields, DetailField{"Bookings", "blocked"})
		}
		if e.ParentID != "" {
			fields = append(fields, DetailField{"Series", e.ParentID})
		}
	}
	if n := len(it.OverlapsWith); n > 0 {
		fields = append(fields, DetailField{"Overlaps", fmt.Sprintf("%d item(s)", n)})
	}
	return fields
}

// RenderDetails renders fields as aligned "Label  value" rows.
func RenderDetails(fields []DetailField, styles ModalStyles) string {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Label))
	}
	lines := make([]string, len(fields))
	for i, f := range fields {
		lines[i] = styles.Label.Render(fmt.Sprintf("%-*s", width, f.Label)) + "  " + f.Value
	}
	return strings.Join(lines, "\n")
}
