package calendar

import (
	"time"

	"github.com/clinicdesk/clinicweek/internal/dateutil"
)

// Default vertical geometry of the week grid.
const (
	DefaultDayStart      = 6 * time.Hour
	DefaultDayEnd        = 21 * time.Hour
	DefaultPixelsPerHour = 60
	DefaultMinHeight     = 30
)

// Geometry maps times onto the vertical axis of a day column.
type Geometry struct {
	DayStart      time.Duration // offset from midnight of the first grid row
	DayEnd        time.Duration // offset from midnight of the grid bottom
	PixelsPerHour float64
	MinHeight     float64 // floor that keeps very short items clickable
}

// DefaultGeometry returns the 06:00-21:00, 60 px/hour grid.
func DefaultGeometry() Geometry {
	return Geometry{
		DayStart:      DefaultDayStart,
		DayEnd:        DefaultDayEnd,
		PixelsPerHour: DefaultPixelsPerHour,
		MinHeight:     DefaultMinHeight,
	}
}

// Top returns the offset of it from the top of day's column.
// Items starting before DayStart get a negative offset.
func (g Geometry) Top(day time.Time, it *CalendarItem) float64 {
	origin := dateutil.At(day, g.DayStart)
	return it.Start.Sub(origin).Hours() * g.PixelsPerHour
}

// Height returns the rendered height of it. Zero or negative durations are
// clamped to MinHeight rather than rejected.
func (g Geometry) Height(it *CalendarItem) float64 {
	h := it.Duration().Hours() * g.PixelsPerHour
	if h < g.MinHeight {
		return g.MinHeight
	}
	return h
}

// GridHeight returns the full height of a day column.
func (g Geometry) GridHeight() float64 {
	return (g.DayEnd - g.DayStart).Hours() * g.PixelsPerHour
}

// HourLabels returns the "HH:00" labels of the grid rows.
func (g Geometry) HourLabels() []string {
	var labels []string
	for h := g.DayStart.Truncate(time.Hour); h < g.DayEnd; h += time.Hour {
		labels = append(labels, dateutil.FormatClock(h))
	}
	return labels
}
