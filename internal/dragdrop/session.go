package dragdrop

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"script-toolbox/internal/order"
)

var (
	// ErrPinned is returned when the pinned category is picked up
	ErrPinned = errors.New("the pinned category cannot be dragged")
	// ErrNoSession is returned for an unknown or finished session id
	ErrNoSession = errors.New("no such drag session")
	// ErrUnknownItem is returned when the dragged id is not in the collection
	ErrUnknownItem = errors.New("item is not part of the collection")
)

// Session is one drag gesture, alive from drag-start to drag-end
type Session struct {
	ID        string     `json:"id"`
	Kind      order.Kind `json:"kind"`
	ItemID    string     `json:"itemId"`
	StartedAt time.Time  `json:"startedAt"`
}

// Tracker holds at most one session per collection kind
type Tracker struct {
	mu     sync.Mutex
	active map[order.Kind]Session
	now    func() time.Time
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		active: make(map[order.Kind]Session),
		now:    time.Now,
	}
}

// Begin opens a session for itemID. A session still open for kind belongs
// to a gesture whose drag-end never arrived and is replaced.
func (t *Tracker) Begin(kind order.Kind, itemID string) (Session, error) {
	if kind == order.KindCategories && itemID == order.PinnedCategory {
		return Session{}, ErrPinned
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if stale, busy := t.active[kind]; busy {
		log.Printf("⚠️ [Drag] Replacing stale %s session %s (item %s)", kind, stale.ID, stale.ItemID)
	}
	s := Session{
		ID:        uuid.NewString(),
		Kind:      kind,
		ItemID:    itemID,
		StartedAt: t.now(),
	}
	t.active[kind] = s
	return s, nil
}

// Lookup returns the live session with the given id
func (t *Tracker) Lookup(sessionID string) (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.active {
		if s.ID == sessionID {
			return s, nil
		}
	}
	return Session{}, ErrNoSession
}

// Active returns the live session for kind, if any
func (t *Tracker) Active(kind order.Kind) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.active[kind]
	return s, ok
}

// End closes the session and returns it. It always succeeds for a live
// session.
func (t *Tracker) End(sessionID string) (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for kind, s := range t.active {
		if s.ID == sessionID {
			delete(t.active, kind)
			return s, nil
		}
	}
	return Session{}, ErrNoSession
}

// Clear drops whatever session is active for kind and reports whether
// there was one
func (t *Tracker) Clear(kind order.Kind) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[kind]
	delete(t.active, kind)
	return ok
}
