package calendar

import "time"

// Filter is the user-toggleable visibility state of the calendar.
type Filter struct {
	ShowUpcoming bool
	ShowPassed   bool
	ShowCanceled bool
}

// DefaultFilter shows everything.
func DefaultFilter() Filter {
	return Filter{ShowUpcoming: true, ShowPassed: true, ShowCanceled: true}
}

// Allows reports whether items with status s are visible.
// Personal events are always visible.
func (f Filter) Allows(s Status) bool {
	switch s {
	case StatusActive:
		return f.ShowUpcoming
	case StatusPassed:
		return f.ShowPassed
	case StatusCanceled:
		return f.ShowCanceled
	default:
		return true
	}
}

// Toggle flips the flag controlling status s.
func (f Filter) Toggle(s Status) Filter {
	switch s {
	case StatusActive:
		f.ShowUpcoming = !f.ShowUpcoming
	case StatusPassed:
		f.ShowPassed = !f.ShowPassed
	case StatusCanceled:
		f.ShowCanceled = !f.ShowCanceled
	}
	return f
}

// IsDefault reports whether nothing is hidden.
func (f Filter) IsDefault() bool {
	return f == DefaultFilter()
}

// Apply returns the items visible under f at now, preserving order.
// The input slice is not modified.
func (f Filter) Apply(now time.Time, items []*CalendarItem) []*CalendarItem {
	result := make([]*CalendarItem, 0, len(items))
	for _, it := range items {
		if f.Allows(Classify(now, it)) {
			result = append(result, it)
		}
	}
	return result
}
