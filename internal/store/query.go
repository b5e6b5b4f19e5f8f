package store

import (
	"fmt"
	"sort"

	"github.com/zot/ui-builder/internal/ir"
)

// Queries hand out deep clones only; callers may mutate results freely
// without touching store state.

// Get returns a clone of the element with the given id.
func (s *Store) Get(id string) (*ir.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el := s.doc.Element(id)
	if el == nil {
		return nil, fmt.Errorf("get: element %s: %w", id, ErrNotFound)
	}
	return el.Clone(), nil
}

// Root returns the root element id, or "" for an empty tree.
func (s *Store) Root() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Elements.RootID
}

// Children returns clones of an element's children in render order.
func (s *Store) Children(id string) ([]*ir.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el := s.doc.Element(id)
	if el == nil {
		return nil, fmt.Errorf("children: element %s: %w", id, ErrNotFound)
	}
	out := make([]*ir.Element, 0, len(el.Children))
	for _, childID := range el.Children {
		if child := s.doc.Element(childID); child != nil {
			out = append(out, child.Clone())
		}
	}
	return out, nil
}

// Parent returns a clone of the element's parent, or nil for the root.
func (s *Store) Parent(id string) (*ir.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el := s.doc.Element(id)
	if el == nil {
		return nil, fmt.Errorf("parent: element %s: %w", id, ErrNotFound)
	}
	if el.Parent == "" {
		return nil, nil
	}
	parent := s.doc.Element(el.Parent)
	if parent == nil {
		return nil, fmt.Errorf("parent: element %s: %w", el.Parent, ErrNotFound)
	}
	return parent.Clone(), nil
}

// Vars returns clones of every variable, sorted by name.
func (s *Store) Vars() []*ir.Variable {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.doc.AllVariables()
	out := make([]*ir.Variable, len(all))
	for i, v := range all {
		out[i] = v.Clone()
	}
	return out
}

// GetVar returns a clone of the named variable.
func (s *Store) GetVar(name string) (*ir.Variable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.doc.FindVariable(name)
	if !ok {
		return nil, fmt.Errorf("getVar: variable %s: %w", name, ErrNotFound)
	}
	return v.Clone(), nil
}

// GetGroup returns a clone of the conditional group.
func (s *Store) GetGroup(groupID string) (*ir.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.doc.ConditionalGroups[groupID]
	if !ok {
		return nil, fmt.Errorf("getGroup: group %s: %w", groupID, ErrNotFound)
	}
	return g.Clone(), nil
}

// sortedElementIDs returns element ids in sorted order for
// deterministic iteration. Caller holds the lock.
func (s *Store) sortedElementIDs() []string {
	ids := make([]string, 0, len(s.doc.Elements.Nodes))
	for id := range s.doc.Elements.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
