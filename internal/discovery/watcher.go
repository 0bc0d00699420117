package discovery

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounceDelay coalesces bursts of file events into one rescan
const WatchDebounceDelay = 500 * time.Millisecond

// Watcher calls OnChange when script folders appear, disappear or change
type Watcher struct {
	dir      string
	delay    time.Duration
	onChange func()

	mu            sync.Mutex
	debounceTimer *time.Timer
}

// NewWatcher creates a watcher for dir. A zero delay selects
// WatchDebounceDelay.
func NewWatcher(dir string, delay time.Duration, onChange func()) *Watcher {
	if delay <= 0 {
		delay = WatchDebounceDelay
	}
	return &Watcher{dir: dir, delay: delay, onChange: onChange}
}

// Start watches the scripts directory and its immediate script folders
// until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %v", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %v", w.dir, err)
	}

	entries, _ := os.ReadDir(w.dir)
	for _, entry := range entries {
		if entry.IsDir() && !ignored(entry.Name()) {
			watcher.Add(filepath.Join(w.dir, entry.Name()))
		}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				w.stopTimer()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ignored(filepath.Base(event.Name)) {
					continue
				}
				// new script folders are one level below the root
				if event.Has(fsnotify.Create) && filepath.Dir(event.Name) == filepath.Clean(w.dir) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						watcher.Add(event.Name)
					}
				}
				w.schedule()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️ [Discovery] fsnotify error: %v", err)
			}
		}
	}()

	log.Printf("👀 [Discovery] Watching %s", w.dir)
	return nil
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.delay, w.onChange)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
}

func ignored(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") || strings.HasSuffix(name, ".tmp") ||
		name == "__pycache__" || strings.HasSuffix(name, ".pyc")
}
