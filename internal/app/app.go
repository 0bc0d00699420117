package app

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"script-toolbox/internal/config"
	"script-toolbox/internal/discovery"
	"script-toolbox/internal/dragdrop"
	"script-toolbox/internal/gateway"
	"script-toolbox/internal/order"
	"script-toolbox/internal/prefs"
)

// Events emitted to the frontend
const (
	EventOrderChanged       = "order:changed"
	EventOrderPersistFailed = "order:persist-failed"
	EventScriptsChanged     = "scripts:changed"
)

// OrderEvent is the payload of order:changed and order:persist-failed
type OrderEvent struct {
	Kind  order.Kind `json:"kind"`
	IDs   []string   `json:"ids"`
	Error string     `json:"error,omitempty"`
}

// App struct
type App struct {
	ctx context.Context
	cfg *config.Config

	prefs   *prefs.Store
	scanner *discovery.Scanner
	gw      *gateway.Gateway
	engine  *dragdrop.Engine

	mu      sync.RWMutex
	scripts []discovery.Script

	loaded  bool
	loadErr error

	stopWatcher context.CancelFunc
}

// NewApp creates a new App application struct. A nil cfg loads the
// default config.yaml at startup.
func NewApp(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

// Startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	if err := a.load(); err != nil {
		a.loadErr = err
		log.Printf("⚠️ Failed to initialise: %v", err)
		return
	}

	if a.cfg.WatchEnabled() {
		watchCtx, cancel := context.WithCancel(ctx)
		a.stopWatcher = cancel
		w := discovery.NewWatcher(a.scanner.Dir(), 0, a.onScriptsDirChanged)
		if err := w.Start(watchCtx); err != nil {
			log.Printf("⚠️ [Discovery] Failed to start watcher: %v", err)
		}
	}
}

// Shutdown stops the watcher, writes both orders one last time and waits
// for the writes to land
func (a *App) Shutdown(ctx context.Context) {
	if a.stopWatcher != nil {
		a.stopWatcher()
	}
	if a.loaded {
		a.engine.Flush()
		a.gw.Wait()
	}
	log.Println("✅ Shutdown complete")
}

// ready fails every binding that needs the stores when Startup could not
// load them
func (a *App) ready() error {
	if a.loaded {
		return nil
	}
	if a.loadErr != nil {
		return fmt.Errorf("app not initialised: %v", a.loadErr)
	}
	return fmt.Errorf("app not initialised")
}

// load wires the stores and loads everything the frontend asks for first
func (a *App) load() error {
	if a.cfg == nil {
		cfg, err := config.Load("")
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	store, err := prefs.Open(a.cfg.ProfilePath)
	if err != nil {
		return err
	}
	a.prefs = store

	scanner, err := discovery.NewScanner(a.cfg.ScriptsDir, store)
	if err != nil {
		return err
	}
	a.scanner = scanner

	a.gw = gateway.New(store, a.cfg.PersistTimeout)
	a.gw.OnPersisted = a.onPersisted
	a.engine = dragdrop.NewEngine(a.gw)
	a.engine.OnChange = a.onOrderChanged

	if err := a.engine.Load(context.Background()); err != nil {
		log.Printf("⚠️ [Order] Starting with partial orders: %v", err)
	}

	if _, err := a.reload(); err != nil {
		return err
	}

	// Persist id mappings and make sure the profile file exists
	if err := store.Save(); err != nil {
		log.Printf("⚠️ [Prefs] Failed to save profile: %v", err)
	}
	a.loaded = true
	log.Printf("📂 Loaded %d scripts from %s", len(a.Scripts()), a.scanner.Dir())
	return nil
}

// reload rescans the scripts directory and merges newly found scripts
// and categories into the orders.
func (a *App) reload() ([]discovery.Script, error) {
	scripts, err := a.scanner.Scan()
	if err != nil {
		return nil, err
	}

	if merged, grew := a.engine.MergeNew(order.KindScripts, discovery.IDs(scripts)); grew {
		a.prefs.SetScriptOrderInMemory(merged)
	}

	initial := []string{}
	for _, c := range discovery.Categories(scripts) {
		if c != prefs.Uncategorized {
			initial = append(initial, c)
		}
	}
	a.engine.Seed(order.KindCategories, initial)

	sorted := discovery.SortByOrder(scripts, a.engine.Order(order.KindScripts))
	a.mu.Lock()
	a.scripts = sorted
	a.mu.Unlock()
	return sorted, nil
}

// Scripts returns the last scan result in display order
func (a *App) Scripts() []discovery.Script {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]discovery.Script, len(a.scripts))
	copy(out, a.scripts)
	return out
}

func (a *App) onScriptsDirChanged() {
	scripts, err := a.reload()
	if err != nil {
		log.Printf("⚠️ [Discovery] Rescan failed: %v", err)
		return
	}
	a.emit(EventScriptsChanged, scripts)
}

func (a *App) onOrderChanged(kind order.Kind, ids []string) {
	if kind == order.KindScripts {
		a.mu.Lock()
		a.scripts = discovery.SortByOrder(a.scripts, ids)
		a.mu.Unlock()
	}
	a.emit(EventOrderChanged, OrderEvent{Kind: kind, IDs: ids})
}

func (a *App) onPersisted(res gateway.Result) {
	if res.Err == nil {
		return
	}
	a.recordPersistFailure(res)
	a.emit(EventOrderPersistFailed, OrderEvent{Kind: res.Kind, IDs: res.IDs, Error: res.Err.Error()})
}

func (a *App) emit(topic string, payload interface{}) {
	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, topic, payload)
	}
}
