package dragdrop

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"

	"script-toolbox/internal/gateway"
	"script-toolbox/internal/order"
	"script-toolbox/internal/placement"
)

// HoverResult tells the frontend where to move the dragged element
type HoverResult struct {
	SessionID string `json:"sessionId"`
	// Before is the id to insert in front of; empty with AtEnd set means append
	Before     string `json:"before"`
	AtEnd      bool   `json:"atEnd"`
	Suppressed bool   `json:"suppressed"`
	// Moved reports that the hover moved the item in the category order
	Moved bool `json:"moved"`
}

// Engine owns the two ordered collections and applies drag gestures to
// them. Every mutation is applied locally first and then handed to the
// gateway, so the caller never waits on the store.
//
// Script cards follow the card-on-card path: hover only advises and Drop
// reorders. Category items move in the model while hovering, and Drop
// persists what the hovers produced.
type Engine struct {
	mu          sync.Mutex
	collections map[order.Kind]*order.Collection
	starts      map[order.Kind][]string
	tracker     *Tracker
	gw          *gateway.Gateway

	// OnChange, when set, is called after a local mutation with the new order
	OnChange func(kind order.Kind, ids []string)
}

// NewEngine creates an engine with empty collections
func NewEngine(gw *gateway.Gateway) *Engine {
	return &Engine{
		collections: map[order.Kind]*order.Collection{
			order.KindScripts:    order.New(order.KindScripts, nil),
			order.KindCategories: order.New(order.KindCategories, nil),
		},
		starts:  map[order.Kind][]string{},
		tracker: NewTracker(),
		gw:      gw,
	}
}

// Load replaces both collections with the stored orders. A failed read
// leaves that collection as it was.
func (e *Engine) Load(ctx context.Context) error {
	var firstErr error
	for _, kind := range []order.Kind{order.KindScripts, order.KindCategories} {
		ids, err := e.gw.Load(ctx, kind)
		if err != nil {
			log.Printf("⚠️ [Order] Failed to load %s order: %v", kind, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to load %s order: %v", kind, err)
			}
			continue
		}
		e.mu.Lock()
		e.collections[kind].Reset(ids)
		e.mu.Unlock()
	}
	return firstErr
}

// Order returns the current order for kind
func (e *Engine) Order(kind order.Kind) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.collections[kind]
	if !ok {
		return nil
	}
	return c.Current()
}

// SetOrder replaces the order in memory without persisting it
func (e *Engine) SetOrder(kind order.Kind, ids []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.collections[kind]; ok {
		c.Reset(ids)
	}
}

// BeginDrag starts a drag session for itemID
func (e *Engine) BeginDrag(kind order.Kind, itemID string) (Session, error) {
	if !kind.Valid() {
		return Session{}, fmt.Errorf("unknown order kind %q", kind)
	}
	if kind == order.KindCategories && itemID == order.PinnedCategory {
		return Session{}, ErrPinned
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.collections[kind]
	if !c.Contains(itemID) {
		return Session{}, ErrUnknownItem
	}
	s, err := e.tracker.Begin(kind, itemID)
	if err != nil {
		return Session{}, err
	}
	e.starts[kind] = c.Current()
	return s, nil
}

// Hover resolves where the dragged element should sit for the pointer.
// For scripts it only advises. For categories the item is also moved in
// the model, without persisting; Drop or EndDrag persists it.
func (e *Engine) Hover(sessionID string, elems []placement.Element, p placement.Point) (HoverResult, error) {
	s, err := e.tracker.Lookup(sessionID)
	if err != nil {
		return HoverResult{}, err
	}

	marked := markDragging(elems, s.ItemID)
	res := HoverResult{SessionID: s.ID}

	switch s.Kind {
	case order.KindScripts:
		before, ok := placement.ResolveGrid(marked, p)
		res.Before, res.AtEnd = before, !ok
	case order.KindCategories:
		pl := placement.ResolveCategoryDrop(marked, p.Y, s.ItemID, order.PinnedCategory)
		res.Suppressed = pl.Suppressed
		res.Before = pl.Before
		res.AtEnd = !pl.Suppressed && pl.Before == placement.End
		if !pl.Suppressed {
			e.mu.Lock()
			res.Moved = e.collections[s.Kind].Move(s.ItemID, pl.Before)
			e.mu.Unlock()
		}
	}
	return res, nil
}

// Drop finishes the gesture on targetID and reports whether the order
// changed. A script drop reorders the dragged card onto the target;
// invalid targets are a silent no-op. A category drop ignores targetID
// and persists the order the hovers produced, reporting a change when it
// differs from the order at BeginDrag.
func (e *Engine) Drop(sessionID, targetID string) (bool, error) {
	s, err := e.tracker.Lookup(sessionID)
	if err != nil {
		return false, err
	}

	e.mu.Lock()
	c := e.collections[s.Kind]
	var changed bool
	if s.Kind == order.KindCategories {
		changed = !slices.Equal(c.Current(), e.starts[s.Kind])
	} else {
		changed = c.Reorder(s.ItemID, targetID)
	}
	ids := c.Current()
	e.mu.Unlock()

	switch {
	case changed:
		e.commit(s.Kind, ids)
	case s.Kind == order.KindCategories:
		e.gw.Persist(s.Kind, ids)
	}
	return changed, nil
}

// EndDrag finishes the session unconditionally. When visual is non-nil it
// is the rendered order after the gesture and the model is resynchronised
// from it. The resulting order is always persisted.
func (e *Engine) EndDrag(sessionID string, visual []string) (Session, error) {
	s, err := e.tracker.End(sessionID)
	if err != nil {
		return Session{}, err
	}

	e.mu.Lock()
	delete(e.starts, s.Kind)
	c := e.collections[s.Kind]
	changed := false
	if visual != nil {
		changed = c.Sync(visual)
	}
	ids := c.Current()
	e.mu.Unlock()

	if changed && e.OnChange != nil {
		e.OnChange(s.Kind, ids)
	}
	e.gw.Persist(s.Kind, ids)
	return s, nil
}

// CancelDrag clears any session for kind without touching the order and
// reports whether one was open
func (e *Engine) CancelDrag(kind order.Kind) bool {
	e.mu.Lock()
	delete(e.starts, kind)
	e.mu.Unlock()
	return e.tracker.Clear(kind)
}

// ActiveDrag returns the running session for kind
func (e *Engine) ActiveDrag(kind order.Kind) (Session, bool) {
	return e.tracker.Active(kind)
}

// SyncVisual resynchronises kind from a rendered order and persists it
func (e *Engine) SyncVisual(kind order.Kind, visual []string) bool {
	e.mu.Lock()
	c, ok := e.collections[kind]
	if !ok {
		e.mu.Unlock()
		return false
	}
	changed := c.Sync(visual)
	ids := c.Current()
	e.mu.Unlock()

	if changed {
		e.commit(kind, ids)
	}
	return changed
}

// MergeNew appends ids missing from kind, in the given order, without
// persisting. It returns the resulting order and whether it grew.
func (e *Engine) MergeNew(kind order.Kind, ids []string) ([]string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.collections[kind]
	if !ok {
		return nil, false
	}
	before := c.Len()
	c.Reset(order.MergeNew(c.Current(), ids))
	return c.Current(), c.Len() != before
}

// Seed sets the order for kind and persists it, but only while kind is
// still empty
func (e *Engine) Seed(kind order.Kind, ids []string) bool {
	return e.mutate(kind, func(c *order.Collection) bool {
		if c.Len() > 0 {
			return false
		}
		c.Reset(ids)
		return c.Len() > 0
	})
}

// Add appends id to kind and persists the new membership
func (e *Engine) Add(kind order.Kind, id string) bool {
	return e.mutate(kind, func(c *order.Collection) bool { return c.Append(id) })
}

// Remove drops id from kind and persists the new membership
func (e *Engine) Remove(kind order.Kind, id string) bool {
	return e.mutate(kind, func(c *order.Collection) bool { return c.Remove(id) })
}

// Flush persists both collections as they are in memory
func (e *Engine) Flush() {
	for _, kind := range []order.Kind{order.KindScripts, order.KindCategories} {
		e.gw.Persist(kind, e.Order(kind))
	}
}

func (e *Engine) mutate(kind order.Kind, fn func(*order.Collection) bool) bool {
	e.mu.Lock()
	c, ok := e.collections[kind]
	if !ok {
		e.mu.Unlock()
		return false
	}
	changed := fn(c)
	ids := c.Current()
	e.mu.Unlock()

	if changed {
		e.commit(kind, ids)
	}
	return changed
}

func (e *Engine) commit(kind order.Kind, ids []string) {
	if e.OnChange != nil {
		e.OnChange(kind, ids)
	}
	e.gw.Persist(kind, ids)
}

// markDragging flags the element for itemID so the resolvers skip it even
// when the frontend did not mark it.
func markDragging(elems []placement.Element, itemID string) []placement.Element {
	out := make([]placement.Element, len(elems))
	for i, el := range elems {
		if el.ID == itemID {
			el.Dragging = true
		}
		out[i] = el
	}
	return out
}
