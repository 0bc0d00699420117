package order

import (
	"slices"
	"sort"
)

// Kind identifies which ordered collection an id belongs to
type Kind string

const (
	KindScripts    Kind = "scripts"
	KindCategories Kind = "categories"
)

// PinnedCategory is the synthetic "all scripts" category. It is always
// rendered first and never stored in a category order.
const PinnedCategory = "all"

// Valid reports whether k names one of the two live collections
func (k Kind) Valid() bool {
	return k == KindScripts || k == KindCategories
}

// Collection is the in-memory ordered sequence of ids that the UI renders
// and the store persists. It is not safe for concurrent use; callers
// serialise access (see dragdrop.Engine).
type Collection struct {
	kind Kind
	ids  []string
}

// New creates a collection from ids. The slice is copied. For category
// collections the pinned category is dropped.
func New(kind Kind, ids []string) *Collection {
	c := &Collection{kind: kind}
	c.ids = c.filter(ids)
	return c
}

// Kind returns the collection kind
func (c *Collection) Kind() Kind {
	return c.kind
}

// Len returns the number of ids
func (c *Collection) Len() int {
	return len(c.ids)
}

// Current returns a copy of the present order
func (c *Collection) Current() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Contains reports whether id is a member
func (c *Collection) Contains(id string) bool {
	return c.indexOf(id) >= 0
}

// Reorder removes draggedID and reinserts it at the index targetID held
// before the removal, counted in the shortened sequence. Dragging forward
// therefore lands one slot past the target:
//
//	["a","b","c"] Reorder("a","c") -> ["b","c","a"]
//	["a","b","c"] Reorder("c","a") -> ["c","a","b"]
//
// Equal ids, unknown ids and the pinned category are ignored.
func (c *Collection) Reorder(draggedID, targetID string) bool {
	if draggedID == targetID || c.isPinned(draggedID) || c.isPinned(targetID) {
		return false
	}
	from := c.indexOf(draggedID)
	to := c.indexOf(targetID)
	if from < 0 || to < 0 {
		return false
	}

	ids := slices.Delete(slices.Clone(c.ids), from, from+1)
	c.ids = slices.Insert(ids, to, draggedID)
	return true
}

// Move places draggedID immediately before beforeID, or at the end when
// beforeID is empty. This mirrors the DOM insertBefore performed while
// hovering.
func (c *Collection) Move(draggedID, beforeID string) bool {
	if draggedID == beforeID || c.isPinned(draggedID) {
		return false
	}
	from := c.indexOf(draggedID)
	if from < 0 {
		return false
	}
	if beforeID != "" && (c.isPinned(beforeID) || c.indexOf(beforeID) < 0) {
		return false
	}

	ids := slices.Delete(slices.Clone(c.ids), from, from+1)
	to := len(ids)
	if beforeID != "" {
		to = slices.Index(ids, beforeID)
	}
	next := slices.Insert(ids, to, draggedID)
	if slices.Equal(next, c.ids) {
		return false
	}
	c.ids = next
	return true
}

// Sync rearranges the collection to match a rendered order. visual may
// cover every member or only the visible subset (a filtered grid); the
// listed ids are written, in visual order, into the slots those same ids
// occupy now, so hidden members keep their positions. Unknown or repeated
// ids make the whole call a no-op.
func (c *Collection) Sync(visual []string) bool {
	shown := c.filter(visual)
	want := make(map[string]struct{}, len(shown))
	for _, id := range shown {
		if _, dup := want[id]; dup || !c.Contains(id) {
			return false
		}
		want[id] = struct{}{}
	}

	next := slices.Clone(c.ids)
	k := 0
	for i, id := range c.ids {
		if _, ok := want[id]; ok {
			next[i] = shown[k]
			k++
		}
	}
	if slices.Equal(next, c.ids) {
		return false
	}
	c.ids = next
	return true
}

// Append adds id at the end if it is not already present
func (c *Collection) Append(id string) bool {
	if id == "" || c.isPinned(id) || c.Contains(id) {
		return false
	}
	c.ids = append(c.ids, id)
	return true
}

// Remove drops id from the collection
func (c *Collection) Remove(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.ids = slices.Delete(c.ids, i, i+1)
	return true
}

// Reset replaces the contents wholesale, used on load and refresh
func (c *Collection) Reset(ids []string) {
	c.ids = c.filter(ids)
}

func (c *Collection) indexOf(id string) int {
	return slices.Index(c.ids, id)
}

func (c *Collection) isPinned(id string) bool {
	return c.kind == KindCategories && id == PinnedCategory
}

func (c *Collection) filter(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if c.isPinned(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// ApplyOrder sorts ids by their position in saved. Ids missing from saved
// keep their relative order and go last.
func ApplyOrder(ids, saved []string) []string {
	out := slices.Clone(ids)
	if len(saved) == 0 {
		return out
	}
	pos := make(map[string]int, len(saved))
	for i, id := range saved {
		if _, seen := pos[id]; !seen {
			pos[id] = i
		}
	}
	rank := func(id string) int {
		if p, ok := pos[id]; ok {
			return p
		}
		return len(saved)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i]) < rank(out[j])
	})
	return out
}

// MergeNew appends the discovered ids that saved does not know about to
// the end of saved, leaving the existing order alone.
func MergeNew(saved, discovered []string) []string {
	out := slices.Clone(saved)
	known := make(map[string]struct{}, len(saved))
	for _, id := range saved {
		known[id] = struct{}{}
	}
	for _, id := range discovered {
		if _, ok := known[id]; ok {
			continue
		}
		known[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
