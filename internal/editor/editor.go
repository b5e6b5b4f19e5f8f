// Package editor implements the facade the visual layer talks to. It
// wraps the store, runs each operation in its own transaction, and fans
// committed changes out to change/preview/error observers. Selection
// and clipboard state live here, not in the core.
package editor

import (
	"sync"
	"time"

	"github.com/zot/ui-builder/internal/compiler"
	"github.com/zot/ui-builder/internal/ir"
	"github.com/zot/ui-builder/internal/store"
)

// ChangeEvent describes one committed transaction.
type ChangeEvent struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
	Snapshot  *ir.Snapshot   `json:"-"`
	CanUndo   bool           `json:"canUndo"`
	CanRedo   bool           `json:"canRedo"`
}

// ChangeHook observes committed transactions.
type ChangeHook func(ChangeEvent)

// PreviewHook receives freshly compiled output after each change.
type PreviewHook func(source string)

// ErrorHook receives wrapped mutation and compile failures.
type ErrorHook func(stage string, err error)

// Editor is the store facade.
type Editor struct {
	store    *store.Store
	compiler *compiler.Compiler

	changeHooks  []ChangeHook
	previewHooks []PreviewHook
	errorHooks   []ErrorHook

	selection string
	clipboard *clipNode
	mu        sync.Mutex
}

// New creates an editor over a fresh store.
func New() *Editor {
	return &Editor{
		store:    store.New(),
		compiler: compiler.New(),
	}
}

// Store exposes the underlying store for direct queries.
func (e *Editor) Store() *store.Store {
	return e.store
}

// OnChange registers a change observer.
func (e *Editor) OnChange(hook ChangeHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.changeHooks = append(e.changeHooks, hook)
}

// OnPreview registers a preview observer.
func (e *Editor) OnPreview(hook PreviewHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.previewHooks = append(e.previewHooks, hook)
}

// OnError registers an error observer.
func (e *Editor) OnError(hook ErrorHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errorHooks = append(e.errorHooks, hook)
}

// Apply runs fn inside a transaction and, on commit, emits a change
// event labelled changeType plus a recompiled preview. Failures roll
// back, reach the error hooks, and propagate.
func (e *Editor) Apply(changeType string, data map[string]any, fn func(s *store.Store) error) error {
	err := e.store.Tx(changeType, func() error {
		return fn(e.store)
	})
	if err != nil {
		e.emitError("mutation", err)
		return err
	}
	e.emitChange(changeType, data)
	e.emitPreview()
	return nil
}

// Undo steps history back and notifies observers when it moved.
func (e *Editor) Undo() bool {
	if !e.store.Undo() {
		return false
	}
	e.emitChange("undo", nil)
	e.emitPreview()
	return true
}

// Redo steps history forward and notifies observers when it moved.
func (e *Editor) Redo() bool {
	if !e.store.Redo() {
		return false
	}
	e.emitChange("redo", nil)
	e.emitPreview()
	return true
}

// Compile compiles the current document.
func (e *Editor) Compile() (string, error) {
	source, err := e.compiler.Compile(e.store.GetIR())
	if err != nil {
		e.emitError("compile", err)
		return "", err
	}
	return source, nil
}

// Export returns the encoded snapshot of the current document.
func (e *Editor) Export() ([]byte, error) {
	return ir.Encode(e.store.GetIR().Export())
}

func (e *Editor) emitChange(changeType string, data map[string]any) {
	e.mu.Lock()
	hooks := append([]ChangeHook(nil), e.changeHooks...)
	if sel := e.selection; sel != "" {
		if _, err := e.store.Get(sel); err != nil {
			e.selection = ""
		}
	}
	e.mu.Unlock()
	if len(hooks) == 0 {
		return
	}
	event := ChangeEvent{
		Type:      changeType,
		Timestamp: time.Now(),
		Data:      data,
		Snapshot:  e.store.GetIR(),
		CanUndo:   e.store.CanUndo(),
		CanRedo:   e.store.CanRedo(),
	}
	for _, hook := range hooks {
		hook(event)
	}
}

func (e *Editor) emitPreview() {
	e.mu.Lock()
	hooks := append([]PreviewHook(nil), e.previewHooks...)
	e.mu.Unlock()
	if len(hooks) == 0 {
		return
	}
	source, err := e.compiler.Compile(e.store.GetIR())
	if err != nil {
		e.emitError("compile", err)
		return
	}
	for _, hook := range hooks {
		hook(source)
	}
}

func (e *Editor) emitError(stage string, err error) {
	e.mu.Lock()
	hooks := append([]ErrorHook(nil), e.errorHooks...)
	e.mu.Unlock()
	for _, hook := range hooks {
		hook(stage, err)
	}
}

// Select marks an element as selected. An empty id clears the
// selection.
func (e *Editor) Select(id string) error {
	if id != "" {
		if _, err := e.store.Get(id); err != nil {
			return err
		}
	}
	e.mu.Lock()
	e.selection = id
	e.mu.Unlock()
	return nil
}

// Selection returns the selected element id, or "".
func (e *Editor) Selection() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection
}
