package store

import (
	"fmt"
	"regexp"

	"github.com/zot/ui-builder/internal/ir"
)

// identRe matches a syntactically valid JS identifier.
var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// LoopSpec describes a loop descriptor. Index and Key are optional.
type LoopSpec struct {
	Source string
	Alias  string
	Index  string
	Key    string
}

// SetLoop attaches a loop descriptor to an element. The source must
// name an existing variable and alias/index must be valid identifiers.
func (s *Store) SetLoop(elementID string, spec LoopSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("setLoop"); err != nil {
		return err
	}
	el := s.doc.Element(elementID)
	if el == nil {
		return fmt.Errorf("setLoop: element %s: %w", elementID, ErrNotFound)
	}
	if _, ok := s.doc.FindVariable(spec.Source); !ok {
		return fmt.Errorf("setLoop: source variable %s: %w", spec.Source, ErrNotFound)
	}
	if !identRe.MatchString(spec.Alias) {
		return fmt.Errorf("setLoop: invalid alias %q: %w", spec.Alias, ErrStateViolation)
	}
	if spec.Index != "" && !identRe.MatchString(spec.Index) {
		return fmt.Errorf("setLoop: invalid index %q: %w", spec.Index, ErrStateViolation)
	}
	el.Loop = &ir.Loop{Source: spec.Source, Alias: spec.Alias, Index: spec.Index, Key: spec.Key}
	s.doc.Dirty.Loops.Add(elementID)
	s.doc.Touch()
	s.logf(3, "loop set: element=%s source=%s alias=%s", elementID, spec.Source, spec.Alias)
	return nil
}

// UpdateLoop merges non-empty fields into an existing loop descriptor.
func (s *Store) UpdateLoop(elementID string, spec LoopSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("updateLoop"); err != nil {
		return err
	}
	el := s.doc.Element(elementID)
	if el == nil {
		return fmt.Errorf("updateLoop: element %s: %w", elementID, ErrNotFound)
	}
	if el.Loop == nil {
		return fmt.Errorf("updateLoop: element %s has no loop: %w", elementID, ErrStateViolation)
	}
	if spec.Source != "" {
		if _, ok := s.doc.FindVariable(spec.Source); !ok {
			return fmt.Errorf("updateLoop: source variable %s: %w", spec.Source, ErrNotFound)
		}
		el.Loop.Source = spec.Source
	}
	if spec.Alias != "" {
		if !identRe.MatchString(spec.Alias) {
			return fmt.Errorf("updateLoop: invalid alias %q: %w", spec.Alias, ErrStateViolation)
		}
		el.Loop.Alias = spec.Alias
	}
	if spec.Index != "" {
		if !identRe.MatchString(spec.Index) {
			return fmt.Errorf("updateLoop: invalid index %q: %w", spec.Index, ErrStateViolation)
		}
		el.Loop.Index = spec.Index
	}
	if spec.Key != "" {
		el.Loop.Key = spec.Key
	}
	s.doc.Dirty.Loops.Add(elementID)
	s.doc.Touch()
	return nil
}

// RemoveLoop clears the loop descriptor.
func (s *Store) RemoveLoop(elementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("removeLoop"); err != nil {
		return err
	}
	el := s.doc.Element(elementID)
	if el == nil {
		return fmt.Errorf("removeLoop: element %s: %w", elementID, ErrNotFound)
	}
	el.Loop = nil
	s.doc.Dirty.Loops.Add(elementID)
	s.doc.Touch()
	return nil
}

// GetLoop returns a clone of the element's loop descriptor, or nil.
func (s *Store) GetLoop(elementID string) (*ir.Loop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el := s.doc.Element(elementID)
	if el == nil {
		return nil, fmt.Errorf("getLoop: element %s: %w", elementID, ErrNotFound)
	}
	return el.Loop.Clone(), nil
}

// ValidateLoops collects loop descriptor violations: missing sources
// and malformed alias/index identifiers.
func (s *Store) ValidateLoops() ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []ValidationError
	for _, id := range s.sortedElementIDs() {
		el := s.doc.Elements.Nodes[id]
		if el.Loop == nil {
			continue
		}
		if _, ok := s.doc.FindVariable(el.Loop.Source); !ok {
			errs = append(errs, ValidationError{ElementID: id, Message: fmt.Sprintf("loop source %q does not exist", el.Loop.Source)})
		}
		if !identRe.MatchString(el.Loop.Alias) {
			errs = append(errs, ValidationError{ElementID: id, Message: fmt.Sprintf("loop alias %q is not a valid identifier", el.Loop.Alias)})
		}
		if el.Loop.Index != "" && !identRe.MatchString(el.Loop.Index) {
			errs = append(errs, ValidationError{ElementID: id, Message: fmt.Sprintf("loop index %q is not a valid identifier", el.Loop.Index)})
		}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
