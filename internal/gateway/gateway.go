package gateway

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"script-toolbox/internal/order"
)

// DefaultPersistTimeout bounds a single background write
const DefaultPersistTimeout = 5 * time.Second

// Store is the host-side persistence for both ordered collections
type Store interface {
	ScriptOrder(ctx context.Context) ([]string, error)
	SaveScriptOrder(ctx context.Context, ids []string) error
	CategoryOrder(ctx context.Context) ([]string, error)
	SaveCategoryOrder(ctx context.Context, ids []string) error
}

// Result describes the outcome of one background write
type Result struct {
	Kind order.Kind `json:"kind"`
	IDs  []string   `json:"ids"`
	Err  error      `json:"-"`
}

// Gateway pushes orders to a Store without blocking the caller.
// Writes are never retried; a failed write is logged and the next
// successful write carries the in-memory order again. Writes of one kind
// reach the store in call order, and a write that is overtaken by a newer
// one before it starts is skipped.
type Gateway struct {
	store   Store
	timeout time.Duration

	// OnPersisted, when set, is called from the writer goroutine
	OnPersisted func(Result)

	mu      sync.Mutex
	latest  map[order.Kind]uint64
	writeMu sync.Mutex
	wg      sync.WaitGroup
}

// New creates a gateway. A zero timeout selects DefaultPersistTimeout.
func New(store Store, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultPersistTimeout
	}
	return &Gateway{store: store, timeout: timeout, latest: map[order.Kind]uint64{}}
}

// Persist starts a background write of ids for kind and returns at once
func (g *Gateway) Persist(kind order.Kind, ids []string) {
	snapshot := slices.Clone(ids)
	if kind == order.KindCategories {
		snapshot = slices.DeleteFunc(snapshot, func(id string) bool {
			return id == order.PinnedCategory
		})
	}

	g.mu.Lock()
	g.latest[kind]++
	seq := g.latest[kind]
	g.mu.Unlock()

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		g.writeMu.Lock()
		defer g.writeMu.Unlock()
		if g.stale(kind, seq) {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
		defer cancel()

		err := g.save(ctx, kind, snapshot)
		if err != nil {
			log.Printf("⚠️ [Order] Failed to save %s order: %v", kind, err)
		}
		if g.OnPersisted != nil {
			g.OnPersisted(Result{Kind: kind, IDs: snapshot, Err: err})
		}
	}()
}

func (g *Gateway) stale(kind order.Kind, seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return seq < g.latest[kind]
}

// Wait blocks until every write started so far has finished
func (g *Gateway) Wait() {
	g.wg.Wait()
}

// Load reads the stored order for kind
func (g *Gateway) Load(ctx context.Context, kind order.Kind) ([]string, error) {
	switch kind {
	case order.KindScripts:
		return g.store.ScriptOrder(ctx)
	case order.KindCategories:
		return g.store.CategoryOrder(ctx)
	}
	return nil, fmt.Errorf("unknown order kind %q", kind)
}

func (g *Gateway) save(ctx context.Context, kind order.Kind, ids []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("store panic: %v", r)
		}
	}()

	switch kind {
	case order.KindScripts:
		return g.store.SaveScriptOrder(ctx, ids)
	case order.KindCategories:
		return g.store.SaveCategoryOrder(ctx, ids)
	}
	return fmt.Errorf("unknown order kind %q", kind)
}
