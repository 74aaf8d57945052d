package calendar

import (
	"time"

	"github.com/teambition/rrule-go"
)

// MaxOccurrences caps an explicit occurrence count, and the number of
// occurrences a store materializes for an open-ended series.
const MaxOccurrences = 365

var isoWeekdays = [...]rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

// RRule builds the recurrence rule for an event starting at dtstart.
// Without a count or end date the rule is unbounded; callers bound it
// with Between or Series.
func (r Recurrence) RRule(dtstart time.Time) (*rrule.RRule, error) {
	opt := rrule.ROption{
		Dtstart:  dtstart,
		Interval: max(r.Interval, 1),
		Count:    max(r.Count, 0),
	}
	switch r.Pattern {
	case PatternDaily:
		opt.Freq = rrule.DAILY
	case PatternWeekly:
		opt.Freq = rrule.WEEKLY
		for _, d := range r.DaysOfWeek {
			if d >= 1 && d <= 7 {
				opt.Byweekday = append(opt.Byweekday, isoWeekdays[d-1])
			}
		}
	case PatternMonthly:
		opt.Freq = rrule.MONTHLY
	default:
		opt.Freq = rrule.DAILY
		opt.Count = 1
	}
	if opt.Count > MaxOccurrences {
		opt.Count = MaxOccurrences
	}
	if !r.EndDate.IsZero() {
		// The end date is inclusive of the whole day.
		y, m, d := r.EndDate.Date()
		opt.Until = time.Date(y, m, d, 23, 59, 59, 0, dtstart.Location())
	}
	return rrule.NewRRule(opt)
}

// Series returns the first occurrence starts of the rule for an event
// starting at dtstart, stopping after MaxOccurrences.
func (r Recurrence) Series(dtstart time.Time) ([]time.Time, error) {
	rule, err := r.RRule(dtstart)
	if err != nil {
		return nil, err
	}
	var starts []time.Time
	next := rule.Iterator()
	for len(starts) < MaxOccurrences {
		start, ok := next()
		if !ok {
			break
		}
		starts = append(starts, start)
	}
	return starts, nil
}

// ExpandRecurring replaces every recurring master event with its
// occurrences that overlap [from, to). Masters whose occurrences are
// already present (events carrying the master id as ParentID) are dropped
// instead of being expanded a second time. Non-recurring events pass
// through unchanged. Masters with an invalid rule are kept as a single
// event.
func ExpandRecurring(events []PersonalEvent, from, to time.Time) []PersonalEvent {
	children := make(map[string]bool)
	for _, e := range events {
		if e.ParentID != "" {
			children[e.ParentID] = true
		}
	}

	result := make([]PersonalEvent, 0, len(events))
	for _, e := range events {
		if e.Recurrence == nil || e.ParentID != "" {
			result = append(result, e)
			continue
		}
		if children[e.ID] {
			continue
		}
		occ, err := occurrences(e, from, to)
		if err != nil {
			result = append(result, e)
			continue
		}
		result = append(result, occ...)
	}
	return result
}

// OccurrenceID returns the id of the occurrence of master starting at start.
func OccurrenceID(masterID string, start time.Time) string {
	return masterID + "@" + start.Format("20060102")
}

func occurrences(master PersonalEvent, from, to time.Time) ([]PersonalEvent, error) {
	rule, err := master.Recurrence.RRule(master.Start)
	if err != nil {
		return nil, err
	}

	dur := master.End.Sub(master.Start)
	loc := master.Start.Location()
	starts := rule.Between(from.Add(-dur).In(loc), to.In(loc), true)

	var out []PersonalEvent
	for _, start := range starts {
		end := start.Add(dur)
		if !start.Before(to) || !end.After(from) {
			continue
		}
		occ := master
		occ.ID = OccurrenceID(master.ID, start)
		occ.ParentID = master.ID
		occ.Start = start
		occ.End = end
		occ.Recurrence = nil
		out = append(out, occ)
	}
	return out, nil
}
