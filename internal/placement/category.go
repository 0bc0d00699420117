package placement

import "sort"

// Placement is the outcome of resolving a category drag
type Placement struct {
	// Before is the id the dragged category goes in front of, or End
	Before string `json:"before"`
	// Suppressed means the gesture must have no visible effect
	Suppressed bool `json:"suppressed"`
}

// ResolveCategoryDrop resolves a hover over the category list while
// keeping the pinned category at the top. Dragging the pinned category
// itself is suppressed. When the list resolver picks the pinned category
// as the insertion point, the drop moves to just after it instead. The
// next sibling is taken in top-to-bottom order, whatever order elems
// arrive in.
func ResolveCategoryDrop(elems []Element, y float64, dragged, pinned string) Placement {
	if dragged == pinned {
		return Placement{Suppressed: true}
	}

	before, ok := ResolveList(elems, y)
	if !ok {
		return Placement{Before: End}
	}
	if before != pinned {
		return Placement{Before: before}
	}

	rendered := make([]Element, len(elems))
	copy(rendered, elems)
	sort.SliceStable(rendered, func(i, j int) bool {
		return rendered[i].Rect.Top < rendered[j].Rect.Top
	})

	// next rendered sibling of the pinned item
	for i, e := range rendered {
		if e.ID != pinned {
			continue
		}
		if i+1 < len(rendered) {
			next := rendered[i+1]
			if next.ID == dragged || next.Dragging {
				// already directly after the pinned item
				return Placement{Suppressed: true}
			}
			return Placement{Before: next.ID}
		}
		return Placement{Before: End}
	}
	return Placement{Suppressed: true}
}
