package view

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/clinicdesk/clinicweek/internal/calendar"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 6, day, hour, minute, 0, 0, time.UTC)
}

func testLayout(t *testing.T) *calendar.WeekLayout {
	t.Helper()
	appts := []calendar.Appointment{
		{ID: "a1", PatientName: "Jane Roe", Title: "Checkup", Start: at(11, 9, 0), End: at(11, 10, 0)},
		{ID: "a2", PatientName: "John Doe", Title: "Follow-up", Start: at(11, 9, 30), End: at(11, 10, 30)},
		{ID: "a3", PatientName: "Early Bird", Start: at(12, 4, 0), End: at(12, 5, 0)},
	}
	events := []calendar.PersonalEvent{
		{ID: "e1", Title: "Lunch", Start: at(13, 12, 30), End: at(13, 13, 30), BlocksAppointments: true},
	}
	now := at(10, 8, 0)
	return calendar.BuildLayout(now, calendar.NewWeekWindow(now), appts, events, calendar.DefaultFilter(), calendar.DefaultGeometry())
}

func testState(layout *calendar.WeekLayout) GridState {
	return GridState{
		Days:       layout.Days,
		Geometry:   layout.Geometry,
		Role:       calendar.RoleDoctor,
		Now:        layout.Now,
		TodayCol:   0,
		FocusDay:   1,
		ColWidth:   20,
		RowMinutes: 30,
	}
}

func TestGridRows(t *testing.T) {
	tests := []struct {
		name       string
		geometry   calendar.Geometry
		rowMinutes int
		want       int
	}{
		{"default half hours", calendar.DefaultGeometry(), 30, 30},
		{"default hours", calendar.DefaultGeometry(), 60, 15},
		{"partial last row", calendar.Geometry{DayStart: 8 * time.Hour, DayEnd: 9*time.Hour + 15*time.Minute, PixelsPerHour: 60}, 30, 3},
		{"zero scale", calendar.Geometry{DayStart: 8 * time.Hour, DayEnd: 9 * time.Hour}, 30, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := GridRows(tc.geometry, tc.rowMinutes); got != tc.want {
				t.Errorf("GridRows = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestBlockRows(t *testing.T) {
	g := calendar.DefaultGeometry()
	tests := []struct {
		name        string
		top, height float64
		first, last int
	}{
		{"aligned hour", 180, 60, 6, 8},
		{"unaligned", 195, 30, 6, 8},
		{"min height", 180, 30, 6, 7},
		{"tiny", 180, 1, 6, 7},
		{"before grid", -120, 60, 0, 1},
		{"straddles start", -30, 60, 0, 1},
		{"after grid", 900, 60, 29, 30},
		{"straddles end", 870, 60, 29, 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			first, last := BlockRows(calendar.Block{Top: tc.top, Height: tc.height}, g, 30)
			if first != tc.first || last != tc.last {
				t.Errorf("BlockRows = [%d, %d), want [%d, %d)", first, last, tc.first, tc.last)
			}
		})
	}
}

func TestBlockCols(t *testing.T) {
	tests := []struct {
		name        string
		placement   calendar.Placement
		width       int
		first, last int
	}{
		{"full", calendar.Placement{Left: 0, Width: 100}, 20, 0, 20},
		{"left half", calendar.Placement{Left: 0, Width: 50}, 20, 0, 10},
		{"right half", calendar.Placement{Left: 50, Width: 50}, 20, 10, 20},
		{"third", calendar.Placement{Left: 100.0 / 3, Width: 100.0 / 3}, 20, 7, 13},
		{"narrow keeps one cell", calendar.Placement{Left: 99, Width: 1}, 10, 9, 10},
		{"zero width column", calendar.Placement{Width: 100}, 0, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			first, last := BlockCols(tc.placement, tc.width)
			if first != tc.first || last != tc.last {
				t.Errorf("BlockCols = [%d, %d), want [%d, %d)", first, last, tc.first, tc.last)
			}
		})
	}
}

func TestRenderGrid(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	state := testState(testLayout(t))
	state.Scroll = 6
	state.Height = 3

	lines := strings.Split(RenderGrid(state), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines:\n%s", len(lines), strings.Join(lines, "\n"))
	}

	header := lines[0]
	for _, want := range []string{"Mon 10", "Tue 11", "Sun 16"} {
		if !strings.Contains(header, want) {
			t.Errorf("header %q missing %q", header, want)
		}
	}
	if !strings.Contains(header, "•Mon 10") {
		t.Errorf("today should be marked in %q", header)
	}

	if !strings.HasPrefix(lines[1], " 09:00") {
		t.Errorf("row 09:00 label missing: %q", lines[1])
	}
	if !strings.Contains(lines[1], "09:00 Jan") {
		t.Errorf("Jane Roe block missing from %q", lines[1])
	}
	if !strings.Contains(lines[2], "09:30 Joh") {
		t.Errorf("John Doe block missing from %q", lines[2])
	}
	if !strings.Contains(lines[2], "Checkup") {
		t.Errorf("Jane Roe detail missing from %q", lines[2])
	}

	for i, line := range lines {
		want := TimeColumnWidth - 1 + 7*(1+state.ColWidth)
		if got := lipgloss.Width(line); got != want {
			t.Errorf("line %d width = %d, want %d", i, got, want)
		}
	}
}

func TestRenderGrid_PinsOffHoursBlocks(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	state := testState(testLayout(t))
	state.Height = 1

	lines := strings.Split(RenderGrid(state), "\n")
	if !strings.Contains(lines[1], "04:00 Early") {
		t.Errorf("04:00 appointment should be pinned to the first row: %q", lines[1])
	}
}

func TestRenderGrid_NowMarker(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	state := testState(testLayout(t))
	state.Scroll = 4
	state.Height = 1

	lines := strings.Split(RenderGrid(state), "\n")
	if !strings.HasPrefix(lines[1], "▸08:00") {
		t.Errorf("now marker missing: %q", lines[1])
	}
}

func TestBlockText(t *testing.T) {
	layout := testLayout(t)

	lunch := layout.Days[3].Blocks[0]
	if got := BlockText(lunch, calendar.RoleDoctor); got[0] != "12:30 ■ Lunch" || got[1] != "blocks bookings" {
		t.Errorf("lunch text = %q", got)
	}

	jane := layout.Days[1].Blocks[0]
	if got := BlockText(jane, calendar.RoleDoctor); got[0] != "09:00 Jane Roe" {
		t.Errorf("jane text = %q", got)
	}
}

func TestSelectedRows(t *testing.T) {
	state := testState(testLayout(t))

	first, last, ok := SelectedRows(state, "apt:a2")
	if !ok || first != 7 || last != 9 {
		t.Errorf("SelectedRows = %d, %d, %v", first, last, ok)
	}
	if _, _, ok := SelectedRows(state, "apt:missing"); ok {
		t.Error("missing block should not be found")
	}
}
