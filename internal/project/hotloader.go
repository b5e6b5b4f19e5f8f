package project

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zot/ui-builder/internal/config"
	"github.com/zot/ui-builder/internal/ir"
)

// ReloadFunc receives the freshly reloaded document.
type ReloadFunc func(doc *ir.Document)

// HotLoader watches the project file for changes and triggers reloads.
// Editors replace files on save, so the watch covers the containing
// directory and filters by name.
type HotLoader struct {
	config  *config.Config
	path    string
	watcher *fsnotify.Watcher
	reload  ReloadFunc

	// Debouncing
	pendingReload time.Time
	pendingSet    bool
	debounceMu    sync.Mutex
	debounceDelay time.Duration

	done chan struct{}
}

// NewHotLoader creates a hot loader for the given project file.
func NewHotLoader(cfg *config.Config, path string, reload ReloadFunc) (*HotLoader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &HotLoader{
		config:        cfg,
		path:          path,
		watcher:       watcher,
		reload:        reload,
		debounceDelay: 100 * time.Millisecond,
		done:          make(chan struct{}),
	}, nil
}

// Start begins watching for file changes.
func (h *HotLoader) Start() error {
	if err := h.watcher.Add(filepath.Dir(h.path)); err != nil {
		return err
	}
	go h.eventLoop()
	go h.debounceLoop()
	h.config.Log(1, "HotLoader: watching %s for changes", h.path)
	return nil
}

// Stop stops the hot loader.
func (h *HotLoader) Stop() error {
	close(h.done)
	return h.watcher.Close()
}

// eventLoop processes file system events.
func (h *HotLoader) eventLoop() {
	for {
		select {
		case <-h.done:
			return
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			h.handleEvent(event)
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.config.Log(1, "HotLoader: watcher error: %v", err)
		}
	}
}

// handleEvent queues a reload for write/create/rename events on the
// project file.
func (h *HotLoader) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != filepath.Base(h.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	h.config.Log(3, "HotLoader: event %s on %s", event.Op, event.Name)
	h.debounceMu.Lock()
	h.pendingReload = time.Now()
	h.pendingSet = true
	h.debounceMu.Unlock()
}

// debounceLoop fires reloads after changes settle.
func (h *HotLoader) debounceLoop() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.processPending()
		}
	}
}

func (h *HotLoader) processPending() {
	h.debounceMu.Lock()
	fire := h.pendingSet && time.Since(h.pendingReload) >= h.debounceDelay
	if fire {
		h.pendingSet = false
	}
	h.debounceMu.Unlock()
	if !fire {
		return
	}
	doc, err := Load(h.path)
	if err != nil {
		h.config.Log(0, "HotLoader: reload failed: %v", err)
		return
	}
	h.config.Log(1, "HotLoader: reloaded %s", h.path)
	if h.reload != nil {
		h.reload(doc)
	}
}
