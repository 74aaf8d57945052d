package calendar

import "time"

// Block is one positioned item in a day column.
type Block struct {
	Item      *CalendarItem
	Status    Status
	Placement Placement
	Top       float64
	Height    float64
}

// DayLayout is the positioned content of one day column.
type DayLayout struct {
	Date   time.Time
	Blocks []Block // stable order: start, then id
	Hidden int     // items removed by the filter
}

// WeekLayout is the result of one render pass.
type WeekLayout struct {
	Window   WeekWindow
	Now      time.Time
	Filter   Filter
	Geometry Geometry
	Days     [7]DayLayout
}

// Blocks returns every block of the week in day order.
func (l *WeekLayout) Blocks() []Block {
	var result []Block
	for _, d := range l.Days {
		result = append(result, d.Blocks...)
	}
	return result
}

// Find returns the block for the item with the given id.
func (l *WeekLayout) Find(id string) (Block, bool) {
	for _, d := range l.Days {
		for _, b := range d.Blocks {
			if b.Item.ID == id {
				return b, true
			}
		}
	}
	return Block{}, false
}

// Empty reports whether no block is visible.
func (l *WeekLayout) Empty() bool {
	for _, d := range l.Days {
		if len(d.Blocks) > 0 {
			return false
		}
	}
	return true
}

// BuildLayout runs the full pipeline for one window: recurring events are
// expanded, everything is normalized into days, filtered, partitioned and
// positioned. now is read once so every item is classified against the
// same instant.
func BuildLayout(now time.Time, w WeekWindow, appointments []Appointment, events []PersonalEvent, f Filter, g Geometry) *WeekLayout {
	events = ExpandRecurring(events, w.Start(), w.End())
	return Arrange(now, Normalize(w, appointments, events), f, g)
}

// Arrange filters, partitions and positions an already normalized week.
func Arrange(now time.Time, week *Week, f Filter, g Geometry) *WeekLayout {
	layout := &WeekLayout{
		Window:   week.Window,
		Now:      now,
		Filter:   f,
		Geometry: g,
	}

	for i, day := range week.Days {
		visible := f.Apply(now, day.Items)
		placements := Partition(visible)

		blocks := make([]Block, len(visible))
		for k, it := range visible {
			blocks[k] = Block{
				Item:      it,
				Status:    Classify(now, it),
				Placement: placements[k],
				Top:       g.Top(day.Date, it),
				Height:    g.Height(it),
			}
		}
		layout.Days[i] = DayLayout{
			Date:   day.Date,
			Blocks: blocks,
			Hidden: len(day.Items) - len(visible),
		}
	}
	return layout
}
