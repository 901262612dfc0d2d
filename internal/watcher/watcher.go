package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/sechaba/ragwatch/pkg/types"
)

// DefaultDebounceWindow is how long a path must stay quiet before its event
// is emitted
const DefaultDebounceWindow = 500 * time.Millisecond

// Config holds watcher settings
type Config struct {
	// Root is the directory tree to watch
	Root string

	// DebounceWindow coalesces rapid write bursts on the same path.
	// Non-positive selects DefaultDebounceWindow.
	DebounceWindow time.Duration

	// IgnorePaths are absolute path prefixes that never produce events,
	// typically the tool's own data directory
	IgnorePaths []string
}

// Watcher observes a directory tree and emits debounced file events.
// Rapid write bursts on one path collapse into a single event; deletions and
// renames bypass the debounce so downstream cleanup is never delayed.
type Watcher struct {
	config  Config
	watcher *fsnotify.Watcher
	logger  *log.Logger
	events  chan types.FileEvent

	debounceTimers map[string]*time.Timer
	debounceKinds  map[string]types.EventKind
	debounceMu     sync.Mutex

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// emitMu orders in-flight emits before the events channel closes
	emitMu  sync.RWMutex
	stopped bool
}

// New creates a Watcher for the configured root
func New(config Config, logger *log.Logger) (*Watcher, error) {
	root, err := types.NormalizePath(config.Root)
	if err != nil {
		return nil, err
	}
	config.Root = root

	if config.DebounceWindow <= 0 {
		config.DebounceWindow = DefaultDebounceWindow
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		config:         config,
		watcher:        fsw,
		logger:         logger,
		events:         make(chan types.FileEvent, 256),
		debounceTimers: make(map[string]*time.Timer),
		debounceKinds:  make(map[string]types.EventKind),
		stopCh:         make(chan struct{}),
	}, nil
}

// Events returns the channel of debounced file events. The channel closes
// when the watcher stops.
func (w *Watcher) Events() <-chan types.FileEvent {
	return w.events
}

// Start registers the directory tree, emits a created event for every
// existing file, and begins streaming filesystem events
func (w *Watcher) Start() error {
	w.logger.Info("starting watcher", "root", w.config.Root)

	if err := w.addDirRecursive(w.config.Root); err != nil {
		return err
	}

	count := w.scanExisting(w.config.Root)
	w.logger.Info("initial scan complete", "files", count)

	w.wg.Add(1)
	go w.watchLoop()

	return nil
}

// Stop halts event delivery and closes the events channel
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()

		w.debounceMu.Lock()
		for _, timer := range w.debounceTimers {
			timer.Stop()
		}
		w.debounceTimers = make(map[string]*time.Timer)
		w.debounceKinds = make(map[string]types.EventKind)
		w.debounceMu.Unlock()

		w.wg.Wait()

		w.emitMu.Lock()
		w.stopped = true
		w.emitMu.Unlock()
		close(w.events)

		w.logger.Info("watcher stopped")
	})
}

// scanExisting walks the tree and emits a created event per regular file so
// startup reconciles files changed while the process was down
func (w *Watcher) scanExisting(root string) int {
	count := 0
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if w.ignored(path) && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if w.ignored(path) {
			return nil
		}

		w.emit(types.FileEvent{
			Path:       path,
			Kind:       types.EventCreated,
			ObservedAt: time.Now(),
		})
		count++
		return nil
	})
	return count
}

func (w *Watcher) addDirRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable directories
		}
		if !info.IsDir() {
			return nil
		}
		if w.ignored(path) && path != dir {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Debug("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// ignored reports whether path is hidden or under an ignored prefix
func (w *Watcher) ignored(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") && path != w.config.Root {
		return true
	}
	for _, prefix := range w.config.IgnorePaths {
		if path == prefix || strings.HasPrefix(path, prefix+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) watchLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleFsEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if w.ignored(path) {
		return
	}

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		// fsnotify reports a rename against the old path; the new path
		// arrives as a separate create. Both map cleanly onto delete
		// plus create downstream.
		w.cancelDebounce(path)
		w.emit(types.FileEvent{
			Path:       path,
			Kind:       types.EventDeleted,
			ObservedAt: time.Now(),
		})

	case event.Has(fsnotify.Create):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			// Watch new directories and pick up files created inside
			// them before the watch was registered
			if err := w.addDirRecursive(path); err == nil {
				w.scanExisting(path)
			}
			return
		}
		w.debounced(path, types.EventCreated)

	case event.Has(fsnotify.Write):
		w.debounced(path, types.EventModified)
	}
}

// debounced schedules an event for path, resetting any pending timer.
// A create followed by writes within the window stays a create.
func (w *Watcher) debounced(path string, kind types.EventKind) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
		kind = w.debounceKinds[path]
	}
	w.debounceKinds[path] = kind

	w.debounceTimers[path] = time.AfterFunc(w.config.DebounceWindow, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, path)
		kind := w.debounceKinds[path]
		delete(w.debounceKinds, path)
		w.debounceMu.Unlock()

		w.fire(path, kind)
	})
}

func (w *Watcher) cancelDebounce(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
		delete(w.debounceTimers, path)
		delete(w.debounceKinds, path)
	}
}

// fire emits the settled state of a path. A path that vanished during the
// debounce window becomes a deletion.
func (w *Watcher) fire(path string, kind types.EventKind) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			kind = types.EventDeleted
		} else {
			w.logger.Warn("stat failed after debounce", "path", path, "error", err)
			return
		}
	}

	w.emit(types.FileEvent{
		Path:       path,
		Kind:       kind,
		ObservedAt: time.Now(),
	})
}

func (w *Watcher) emit(event types.FileEvent) {
	w.emitMu.RLock()
	defer w.emitMu.RUnlock()
	if w.stopped {
		return
	}

	select {
	case w.events <- event:
	case <-w.stopCh:
	}
}
