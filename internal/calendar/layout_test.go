package calendar

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	w := NewWeekWindow(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC))

	appts := []Appointment{
		{ID: "late", Start: time.Date(2024, 6, 11, 15, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 11, 16, 0, 0, 0, time.UTC)},
		{ID: "early", Start: time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 11, 10, 0, 0, 0, time.UTC), Title: "Checkup"},
		{ID: "buffer", Start: time.Date(2024, 6, 9, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC)},
	}
	events := []PersonalEvent{
		{ID: "gym", Title: "Gym", Start: time.Date(2024, 6, 16, 7, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 16, 8, 0, 0, 0, time.UTC)},
		{ID: "next", Title: "Next week", Start: time.Date(2024, 6, 17, 7, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 17, 8, 0, 0, 0, time.UTC)},
	}

	week := Normalize(w, appts, events)

	if week.Len() != 3 {
		t.Fatalf("expected 3 items in window, got %d", week.Len())
	}

	tue := week.Days[1].Items
	if len(tue) != 2 || tue[0].SourceID != "early" || tue[1].SourceID != "late" {
		t.Fatalf("tuesday = %v, want [early late]", ids(tue))
	}
	if tue[0].Title != "Checkup" || tue[1].Title != "Consultation" {
		t.Errorf("titles = %q, %q", tue[0].Title, tue[1].Title)
	}
	if tue[0].Kind != KindAppointment || tue[0].ID != "apt:early" {
		t.Errorf("unexpected appointment item: %+v", tue[0])
	}

	sun := week.Days[6].Items
	if len(sun) != 1 || sun[0].Kind != KindPersonalEvent {
		t.Fatalf("sunday = %v", ids(sun))
	}
	if sun[0].Color != DefaultEventColor {
		t.Errorf("color = %q, want default", sun[0].Color)
	}

	for i, d := range week.Days {
		if d.Items == nil {
			t.Errorf("day %d has nil items", i)
		}
	}
}

func TestNormalize_Empty(t *testing.T) {
	w := NewWeekWindow(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC))
	week := Normalize(w, nil, nil)
	if week.Len() != 0 {
		t.Errorf("expected empty week, got %d", week.Len())
	}
}

func TestGeometry(t *testing.T) {
	g := DefaultGeometry()
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		start, end time.Time
		top        float64
		height     float64
	}{
		{"grid start", day.Add(6 * time.Hour), day.Add(7 * time.Hour), 0, 60},
		{"half hour", day.Add(9*time.Hour + 30*time.Minute), day.Add(10 * time.Hour), 210, 30},
		{"short item clamped", day.Add(10 * time.Hour), day.Add(10*time.Hour + 10*time.Minute), 240, 30},
		{"zero length clamped", day.Add(11 * time.Hour), day.Add(11 * time.Hour), 300, 30},
		{"negative clamped", day.Add(12 * time.Hour), day.Add(11 * time.Hour), 360, 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			it := &CalendarItem{Start: tc.start, End: tc.end}
			if got := g.Top(day, it); got != tc.top {
				t.Errorf("Top() = %.1f, want %.1f", got, tc.top)
			}
			if got := g.Height(it); got != tc.height {
				t.Errorf("Height() = %.1f, want %.1f", got, tc.height)
			}
		})
	}

	if got := g.GridHeight(); got != 900 {
		t.Errorf("GridHeight() = %.1f, want 900", got)
	}
	labels := g.HourLabels()
	if len(labels) != 15 || labels[0] != "06:00" || labels[14] != "20:00" {
		t.Errorf("HourLabels() = %v", labels)
	}
}

func TestBuildLayout(t *testing.T) {
	w := NewWeekWindow(frozenNow)
	appts := []Appointment{
		{ID: "a", Start: time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 14, 10, 30, 0, 0, time.UTC)},
		{ID: "b", Start: time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 14, 10, 30, 0, 0, time.UTC), Canceled: true},
		{ID: "c", Start: time.Date(2024, 6, 16, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 16, 10, 0, 0, 0, time.UTC)},
	}
	events := []PersonalEvent{
		{ID: "e", Title: "Admin", Start: time.Date(2024, 6, 16, 9, 30, 0, 0, time.UTC), End: time.Date(2024, 6, 16, 10, 30, 0, 0, time.UTC), BlocksAppointments: true},
	}

	t.Run("default filter", func(t *testing.T) {
		l := BuildLayout(frozenNow, w, appts, events, DefaultFilter(), DefaultGeometry())

		fri := l.Days[4]
		if len(fri.Blocks) != 2 || fri.Hidden != 0 {
			t.Fatalf("friday: %d blocks, %d hidden", len(fri.Blocks), fri.Hidden)
		}
		a, _ := l.Find("apt:a")
		b, _ := l.Find("apt:b")
		if a.Status != StatusPassed || a.Placement.Mode != PlacementSplitRight {
			t.Errorf("a: %s %s", a.Status, a.Placement.Mode)
		}
		if b.Status != StatusCanceled || b.Placement.Mode != PlacementSplitLeft {
			t.Errorf("b: %s %s", b.Status, b.Placement.Mode)
		}

		c, ok := l.Find("apt:c")
		if !ok {
			t.Fatal("apt:c missing")
		}
		if c.Status != StatusActive || c.Placement.Mode != PlacementShared || c.Top != 180 {
			t.Errorf("c: %+v", c)
		}
		e, _ := l.Find("evt:e")
		if e.Status != StatusEvent || e.Placement.Left != 50 {
			t.Errorf("e: %+v", e)
		}
	})

	t.Run("hiding canceled widens the survivor", func(t *testing.T) {
		f := DefaultFilter().Toggle(StatusCanceled)
		l := BuildLayout(frozenNow, w, appts, events, f, DefaultGeometry())

		fri := l.Days[4]
		if len(fri.Blocks) != 1 || fri.Hidden != 1 {
			t.Fatalf("friday: %d blocks, %d hidden", len(fri.Blocks), fri.Hidden)
		}
		if p := fri.Blocks[0].Placement; p.Mode != PlacementFull || p.Width != 100 {
			t.Errorf("placement = %+v, want full", p)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		l := BuildLayout(frozenNow, w, nil, nil, DefaultFilter(), DefaultGeometry())
		if !l.Empty() {
			t.Error("expected empty layout")
		}
	})
}
