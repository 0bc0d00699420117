package order

import (
	"slices"
	"sort"
	"testing"
)

func TestReorder_SpliceThenInsertAtTargetIndex(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		dragged string
		target  string
		want    []string
		changed bool
	}{
		{"forward lands past target", []string{"a", "b", "c"}, "a", "c", []string{"b", "c", "a"}, true},
		{"backward lands on target slot", []string{"a", "b", "c"}, "c", "a", []string{"c", "a", "b"}, true},
		{"adjacent forward", []string{"a", "b", "c", "d"}, "b", "c", []string{"a", "c", "b", "d"}, true},
		{"adjacent backward", []string{"a", "b", "c", "d"}, "c", "b", []string{"a", "c", "b", "d"}, true},
		{"same id", []string{"a", "b", "c"}, "b", "b", []string{"a", "b", "c"}, false},
		{"unknown dragged", []string{"a", "b", "c"}, "z", "b", []string{"a", "b", "c"}, false},
		{"unknown target", []string{"a", "b", "c"}, "a", "z", []string{"a", "b", "c"}, false},
		{"empty", nil, "a", "b", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(KindScripts, tt.ids)
			changed := c.Reorder(tt.dragged, tt.target)
			if changed != tt.changed {
				t.Errorf("Reorder changed = %v, want %v", changed, tt.changed)
			}
			if got := c.Current(); !slices.Equal(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestReorder_PreservesMembership(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f"}
	for _, dragged := range ids {
		for _, target := range ids {
			c := New(KindScripts, ids)
			c.Reorder(dragged, target)

			got := c.Current()
			sort.Strings(got)
			if !slices.Equal(got, ids) {
				t.Fatalf("Reorder(%q, %q) changed membership: %v", dragged, target, c.Current())
			}
		}
	}
}

func TestReorder_SameIDIsNoop(t *testing.T) {
	ids := []string{"a", "b", "c"}
	c := New(KindScripts, ids)
	for _, id := range ids {
		c.Reorder(id, id)
	}
	if got := c.Current(); !slices.Equal(got, ids) {
		t.Errorf("Expected %v, got %v", ids, got)
	}
}

func TestCategories_PinnedIsNeverMoved(t *testing.T) {
	c := New(KindCategories, []string{PinnedCategory, "x", "y"})
	if got := c.Current(); !slices.Equal(got, []string{"x", "y"}) {
		t.Fatalf("Pinned category should be filtered, got %v", got)
	}

	if c.Reorder(PinnedCategory, "y") {
		t.Error("Dragging the pinned category must be ignored")
	}
	if c.Reorder("y", PinnedCategory) {
		t.Error("Dropping on the pinned category must be ignored")
	}
	if c.Move(PinnedCategory, "") {
		t.Error("Moving the pinned category must be ignored")
	}
	if c.Append(PinnedCategory) {
		t.Error("Appending the pinned category must be ignored")
	}

	rendered := append([]string{PinnedCategory}, c.Current()...)
	if want := []string{PinnedCategory, "x", "y"}; !slices.Equal(rendered, want) {
		t.Errorf("Expected %v, got %v", want, rendered)
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		name    string
		dragged string
		before  string
		want    []string
		changed bool
	}{
		{"before earlier", "d", "b", []string{"a", "d", "b", "c"}, true},
		{"before later", "a", "c", []string{"b", "a", "c", "d"}, true},
		{"to end", "b", "", []string{"a", "c", "d", "b"}, true},
		{"already in place", "b", "c", []string{"a", "b", "c", "d"}, false},
		{"already last", "d", "", []string{"a", "b", "c", "d"}, false},
		{"unknown before", "a", "z", []string{"a", "b", "c", "d"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(KindScripts, []string{"a", "b", "c", "d"})
			if changed := c.Move(tt.dragged, tt.before); changed != tt.changed {
				t.Errorf("Move changed = %v, want %v", changed, tt.changed)
			}
			if got := c.Current(); !slices.Equal(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSync(t *testing.T) {
	tests := []struct {
		name    string
		visual  []string
		want    []string
		changed bool
	}{
		{"full permutation", []string{"d", "c", "b", "a"}, []string{"d", "c", "b", "a"}, true},
		{"visible subset keeps hidden slots", []string{"d", "b"}, []string{"a", "d", "c", "b"}, true},
		{"same order", []string{"a", "b", "c", "d"}, []string{"a", "b", "c", "d"}, false},
		{"unknown id", []string{"a", "b", "c", "d", "e"}, []string{"a", "b", "c", "d"}, false},
		{"duplicate id", []string{"b", "b"}, []string{"a", "b", "c", "d"}, false},
		{"empty", nil, []string{"a", "b", "c", "d"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(KindScripts, []string{"a", "b", "c", "d"})
			if changed := c.Sync(tt.visual); changed != tt.changed {
				t.Errorf("Sync changed = %v, want %v", changed, tt.changed)
			}
			if got := c.Current(); !slices.Equal(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSync_IgnoresPinnedCategory(t *testing.T) {
	c := New(KindCategories, []string{"x", "y"})
	if !c.Sync([]string{PinnedCategory, "y", "x"}) {
		t.Fatal("Sync should accept a rendered order that includes the pinned category")
	}
	if got := c.Current(); !slices.Equal(got, []string{"y", "x"}) {
		t.Errorf("Expected [y x], got %v", got)
	}
}

func TestAppendRemove(t *testing.T) {
	c := New(KindCategories, []string{"x"})
	if !c.Append("y") || c.Append("y") {
		t.Error("Append should add once")
	}
	if !c.Remove("x") || c.Remove("x") {
		t.Error("Remove should drop once")
	}
	if got := c.Current(); !slices.Equal(got, []string{"y"}) {
		t.Errorf("Expected [y], got %v", got)
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	c := New(KindScripts, []string{"a", "b"})
	got := c.Current()
	got[0] = "mutated"
	if c.Current()[0] != "a" {
		t.Error("Current should not expose internal storage")
	}
}

func TestApplyOrder(t *testing.T) {
	discovered := []string{"new1", "b", "a", "new2", "c"}
	saved := []string{"a", "b", "c", "gone"}

	got := ApplyOrder(discovered, saved)
	want := []string{"a", "b", "c", "new1", "new2"}
	if !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if got := ApplyOrder(discovered, nil); !slices.Equal(got, discovered) {
		t.Errorf("Empty saved order should keep discovery order, got %v", got)
	}
}

func TestMergeNew(t *testing.T) {
	got := MergeNew([]string{"b", "a"}, []string{"a", "c", "b", "d", "c"})
	want := []string{"b", "a", "c", "d"}
	if !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
