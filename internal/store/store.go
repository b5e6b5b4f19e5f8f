// Package store implements the transactional, undoable mutation layer
// over the IR document. All mutators require an open transaction;
// committed outermost transactions land in a bounded history ring that
// backs undo/redo. Every value handed out is a deep clone, so callers
// can never corrupt store state through a query result.
package store

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zot/ui-builder/internal/ir"
)

// HistoryLimit bounds the undo ring.
const HistoryLimit = 50

// Sentinel errors, one per taxonomy class. Wrap with %w so callers can
// classify with errors.Is.
var (
	// ErrNoTransaction is returned when a mutator runs outside a transaction.
	ErrNoTransaction = errors.New("no open transaction")
	// ErrTransactionOpen is returned when undo/redo run during a transaction.
	ErrTransactionOpen = errors.New("transaction open")
	// ErrNotFound is returned for unknown elements, variables or groups.
	ErrNotFound = errors.New("not found")
	// ErrStateViolation is returned when an operation would break a
	// structural invariant.
	ErrStateViolation = errors.New("state violation")
)

// ValidationError describes a single non-fatal shape violation.
type ValidationError struct {
	GroupID   string `json:"groupId,omitempty"`
	ElementID string `json:"elementId,omitempty"`
	Message   string `json:"message"`
}

// ValidationResult collects shape violations. Validators return these
// instead of failing.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors"`
}

// txFrame is one entry of the transaction stack. The snapshot is a deep
// clone taken when the frame was opened; rollback restores it wholesale.
type txFrame struct {
	label    string
	snapshot *ir.Document
	started  time.Time
}

// Store owns the IR document. Single writer; the mutex only guards
// against accidental cross-goroutine use, the model itself is
// single-threaded and every mutator runs to completion.
type Store struct {
	doc       *ir.Document
	tx        []txFrame
	history   []*ir.Document
	histIdx   int
	counters  map[string]int64
	verbosity int
	mu        sync.Mutex
}

// New creates a store with an empty document. The initial state seeds
// the history ring so the first undo target is the empty document.
func New() *Store {
	doc := ir.NewDocument()
	return &Store{
		doc:      doc,
		history:  []*ir.Document{doc.Clone()},
		histIdx:  0,
		counters: make(map[string]int64),
	}
}

// SetVerbosity sets the mutation logging level (0=off, 3=mutations,
// 4=values).
func (s *Store) SetVerbosity(level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verbosity = level
}

func (s *Store) logf(level int, format string, args ...interface{}) {
	if s.verbosity >= level {
		log.Printf("[v%d] %s", level, fmt.Sprintf(format, args...))
	}
}

// mintID allocates a unique id of the form {type}_{counter}_{timestamp}.
// Counters are per-type and monotonic for the store's lifetime.
func (s *Store) mintID(entityType string) string {
	s.counters[entityType]++
	return fmt.Sprintf("%s_%d_%d", entityType, s.counters[entityType], time.Now().UnixMilli())
}

// inTx reports whether any transaction frame is open.
func (s *Store) inTx() bool {
	return len(s.tx) > 0
}

// requireTx is the gate every mutator passes through.
func (s *Store) requireTx(op string) error {
	if !s.inTx() {
		return fmt.Errorf("%s: %w", op, ErrNoTransaction)
	}
	return nil
}

// BeginTx opens a transaction frame with a deep clone of the current
// document for rollback.
func (s *Store) BeginTx(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tx = append(s.tx, txFrame{
		label:    label,
		snapshot: s.doc.Clone(),
		started:  time.Now(),
	})
	s.logf(3, "tx begin %q depth=%d", label, len(s.tx))
}

// Commit pops the innermost frame. Only the outermost commit pushes the
// document into history; inner commits merely collapse their frames.
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inTx() {
		return fmt.Errorf("commit: %w", ErrNoTransaction)
	}
	frame := s.tx[len(s.tx)-1]
	s.tx = s.tx[:len(s.tx)-1]
	s.logf(3, "tx commit %q depth=%d", frame.label, len(s.tx))
	if len(s.tx) == 0 {
		s.pushHistory()
	}
	return nil
}

// Rollback pops the innermost frame and restores its snapshot,
// discarding every change made since the frame was opened.
func (s *Store) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inTx() {
		return fmt.Errorf("rollback: %w", ErrNoTransaction)
	}
	frame := s.tx[len(s.tx)-1]
	s.tx = s.tx[:len(s.tx)-1]
	s.doc = frame.snapshot
	s.logf(3, "tx rollback %q depth=%d", frame.label, len(s.tx))
	return nil
}

// Tx is the scoped transaction form: open, run, commit; on error from fn,
// rollback and propagate.
func (s *Store) Tx(label string, fn func() error) error {
	s.BeginTx(label)
	if err := fn(); err != nil {
		if rbErr := s.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	return s.Commit()
}

// pushHistory appends the committed document to the ring, truncating any
// forward (redo) entries first. Overflow drops the oldest entry.
// Caller holds the lock.
func (s *Store) pushHistory() {
	s.history = append(s.history[:s.histIdx+1], s.doc.Clone())
	s.histIdx++
	if len(s.history) > HistoryLimit {
		s.history = s.history[1:]
		s.histIdx--
	}
}

// CanUndo reports whether undo would move.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.histIdx > 0
}

// CanRedo reports whether redo would move.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.histIdx < len(s.history)-1
}

// Undo restores the previous history entry. It refuses to act while a
// transaction is open and returns whether it moved. Restoration clones,
// so later mutations cannot corrupt the ring.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inTx() || s.histIdx == 0 {
		return false
	}
	s.histIdx--
	s.doc = s.history[s.histIdx].Clone()
	s.logf(3, "undo -> history %d/%d", s.histIdx, len(s.history)-1)
	return true
}

// Redo steps forward through history. Same discipline as Undo.
func (s *Store) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inTx() || s.histIdx >= len(s.history)-1 {
		return false
	}
	s.histIdx++
	s.doc = s.history[s.histIdx].Clone()
	s.logf(3, "redo -> history %d/%d", s.histIdx, len(s.history)-1)
	return true
}

// TxDepth returns the number of open transaction frames.
func (s *Store) TxDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tx)
}

// Reset replaces the document wholesale, e.g. when opening a saved
// project. History restarts at the new state and id counters advance
// past any ids in the document so future mints stay unique.
func (s *Store) Reset(doc *ir.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inTx() {
		return fmt.Errorf("reset: %w", ErrTransactionOpen)
	}
	s.doc = doc.Clone()
	s.history = []*ir.Document{s.doc.Clone()}
	s.histIdx = 0
	s.reseedCounters()
	s.logf(3, "store reset: %d elements", len(s.doc.Elements.Nodes))
	return nil
}

// reseedCounters bumps per-type counters past every id in the
// document. Caller holds the lock.
func (s *Store) reseedCounters() {
	bump := func(id string) {
		parts := strings.SplitN(id, "_", 3)
		if len(parts) < 2 {
			return
		}
		if n, err := strconv.ParseInt(parts[1], 10, 64); err == nil && n > s.counters[parts[0]] {
			s.counters[parts[0]] = n
		}
	}
	for id := range s.doc.Elements.Nodes {
		bump(id)
	}
	for _, v := range s.doc.AllVariables() {
		bump(v.ID)
	}
	for _, b := range s.doc.Bindings {
		bump(b.ID)
	}
	for _, events := range s.doc.Events {
		for _, e := range events {
			bump(e.ID)
		}
	}
	for id := range s.doc.ConditionalGroups {
		bump(id)
	}
}

// GetIR returns a frozen snapshot of the current document.
func (s *Store) GetIR() *ir.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.NewSnapshot(s.doc)
}

// DirtyFlags returns a copy of the current dirty flags.
func (s *Store) DirtyFlags() ir.DirtyFlags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Dirty.Clone()
}

// ClearDirty resets all dirty flags. The store itself never clears
// flags; this is for the renderers that consume them.
func (s *Store) ClearDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Dirty = ir.NewDirtyFlags()
}
