package calendar

import "slices"

// PlacementMode describes how an item shares its day column.
type PlacementMode int

const (
	PlacementFull       PlacementMode = iota // no overlap partner
	PlacementShared                          // one of n equal slots in its overlap cluster
	PlacementSplitLeft                       // canceled side of a canceled/active split
	PlacementSplitRight                      // active side of a canceled/active split
)

func (m PlacementMode) String() string {
	switch m {
	case PlacementFull:
		return "full"
	case PlacementShared:
		return "shared"
	case PlacementSplitLeft:
		return "split-left"
	case PlacementSplitRight:
		return "split-right"
	default:
		return "unknown"
	}
}

// Placement is the horizontal position of an item inside its day column.
// Left and Width are percentages of the column.
type Placement struct {
	Mode      PlacementMode
	Slot      int
	SlotCount int
	Left      float64
	Width     float64
}

// Right returns the right edge as a percentage of the column.
func (p Placement) Right() float64 {
	return p.Left + p.Width
}

// Overlaps reports whether a and b intersect as half-open intervals.
// Touching boundaries do not overlap.
func Overlaps(a, b *CalendarItem) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// LinkOverlaps fills OverlapsWith on every item and returns the overlap
// graph as adjacency lists of indices into items.
func LinkOverlaps(items []*CalendarItem) [][]int {
	adj := make([][]int, len(items))
	for i := range items {
		items[i].OverlapsWith = nil
	}
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if Overlaps(items[i], items[j]) {
				adj[i] = append(adj[i], j)
				adj[j] = append(adj[j], i)
				items[i].OverlapsWith = append(items[i].OverlapsWith, items[j].ID)
				items[j].OverlapsWith = append(items[j].OverlapsWith, items[i].ID)
			}
		}
	}
	return adj
}

// Clusters returns the connected components of the overlap graph, each in
// stable order (start, then id), ordered by their first member.
func Clusters(items []*CalendarItem) [][]*CalendarItem {
	adj := LinkOverlaps(items)
	comps := components(items, adj, allIndices(len(items)))
	result := make([][]*CalendarItem, len(comps))
	for i, comp := range comps {
		cluster := make([]*CalendarItem, len(comp))
		for k, idx := range comp {
			cluster[k] = items[idx]
		}
		result[i] = cluster
	}
	return result
}

// Partition assigns a horizontal placement to every item of one day. The
// returned slice is aligned with items. LayoutSlot and LayoutSlotCount are
// rewritten on each item.
//
// A cluster containing a canceled appointment that overlaps an active
// appointment is split in halves: canceled appointments on the left,
// everything else on the right, each half divided among its own overlaps.
// Any other cluster of n items is divided into n equal slots.
func Partition(items []*CalendarItem) []Placement {
	out := make([]Placement, len(items))
	adj := LinkOverlaps(items)

	for _, comp := range components(items, adj, allIndices(len(items))) {
		if len(comp) == 1 {
			out[comp[0]] = Placement{Mode: PlacementFull, SlotCount: 1, Width: 100}
			continue
		}

		if !splitApplies(items, adj, comp) {
			placeSlots(comp, 0, 100, PlacementShared, out)
			continue
		}

		var left, right []int
		for _, idx := range comp {
			if items[idx].IsAppointment() && items[idx].Canceled {
				left = append(left, idx)
			} else {
				right = append(right, idx)
			}
		}
		for _, sub := range components(items, adj, left) {
			placeSlots(sub, 0, 50, PlacementSplitLeft, out)
		}
		for _, sub := range components(items, adj, right) {
			placeSlots(sub, 50, 50, PlacementSplitRight, out)
		}
	}

	for i, p := range out {
		items[i].LayoutSlot = p.Slot
		items[i].LayoutSlotCount = p.SlotCount
	}
	return out
}

// splitApplies reports whether a canceled appointment in comp overlaps an
// active appointment.
func splitApplies(items []*CalendarItem, adj [][]int, comp []int) bool {
	for _, i := range comp {
		a := items[i]
		if !a.IsAppointment() || !a.Canceled {
			continue
		}
		for _, j := range adj[i] {
			b := items[j]
			if b.IsAppointment() && !b.Canceled {
				return true
			}
		}
	}
	return false
}

// placeSlots divides [base, base+span) evenly across group, which must
// already be in stable order.
func placeSlots(group []int, base, span float64, mode PlacementMode, out []Placement) {
	n := len(group)
	width := span / float64(n)
	for k, idx := range group {
		out[idx] = Placement{
			Mode:      mode,
			Slot:      k,
			SlotCount: n,
			Left:      base + float64(k)*width,
			Width:     width,
		}
	}
}

// components returns the connected components of the subgraph induced by
// members. Each component is sorted by start then id; components are
// ordered by their first item.
func components(items []*CalendarItem, adj [][]int, members []int) [][]int {
	inSet := make(map[int]bool, len(members))
	for _, m := range members {
		inSet[m] = true
	}

	seen := make(map[int]bool, len(members))
	var comps [][]int
	for _, start := range members {
		if seen[start] {
			continue
		}
		var comp []int
		queue := []int{start}
		seen[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)
			for _, next := range adj[cur] {
				if inSet[next] && !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}
		slices.SortFunc(comp, func(a, b int) int {
			return compareItems(items[a], items[b])
		})
		comps = append(comps, comp)
	}

	slices.SortFunc(comps, func(a, b []int) int {
		return compareItems(items[a[0]], items[b[0]])
	})
	return comps
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
