package store

import (
	"fmt"

	"github.com/zot/ui-builder/internal/ir"
)

// Macro operations compose the primitives and run inside an auto-opened
// transaction, so a failing step rolls the whole macro back.

// Duplicate deep-copies an element subtree and inserts the copy right
// after the original among its siblings. Bindings and events are copied
// with fresh ids; loop descriptors are preserved, conditional membership
// is not (a second if in one group would break the group shape).
func (s *Store) Duplicate(id string) (string, error) {
	var copyID string
	err := s.Tx("duplicate", func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		orig := s.doc.Element(id)
		if orig == nil {
			return fmt.Errorf("duplicate: element %s: %w", id, ErrNotFound)
		}
		if orig.Parent == "" {
			return fmt.Errorf("duplicate: cannot duplicate the root: %w", ErrStateViolation)
		}
		copyID = s.copySubtreeLocked(orig, orig.Parent)
		parent := s.doc.Element(orig.Parent)
		parent.Children = removeID(parent.Children, copyID)
		for i, childID := range parent.Children {
			if childID == id {
				parent.Children = append(parent.Children, "")
				copy(parent.Children[i+2:], parent.Children[i+1:])
				parent.Children[i+1] = copyID
				break
			}
		}
		s.markStructure(copyID)
		return nil
	})
	if err != nil {
		return "", err
	}
	return copyID, nil
}

// copySubtreeLocked clones one element into parentID and recurses over
// its children, duplicating bindings and events along the way.
func (s *Store) copySubtreeLocked(src *ir.Element, parentID string) string {
	id := s.mintID("element")
	clone := src.Clone()
	clone.ID = id
	clone.Parent = parentID
	clone.Children = nil
	clone.Control = nil
	s.doc.Elements.Nodes[id] = clone
	if parent := s.doc.Element(parentID); parent != nil {
		parent.Children = append(parent.Children, id)
	}
	s.doc.Dirty.Elements.Add(id)

	for _, b := range s.doc.Bindings {
		if b.ElementID != src.ID {
			continue
		}
		bindingID := s.mintID("binding")
		s.doc.Bindings = append(s.doc.Bindings, &ir.Binding{
			ID:        bindingID,
			ElementID: id,
			Variable:  b.Variable,
			Kind:      b.Kind,
			Key:       b.Key,
		})
		s.doc.Dirty.Bindings.Add(bindingID)
	}
	for _, eventType := range s.doc.EventTypes() {
		for _, e := range s.doc.Events[eventType] {
			if e.Target != src.ID {
				continue
			}
			eventID := s.mintID("event")
			s.doc.Events[eventType] = append(s.doc.Events[eventType], &ir.Event{
				ID:     eventID,
				Target: id,
				Action: e.Action.Clone(),
			})
			s.doc.Dirty.Events.Add(eventID)
		}
	}
	for _, childID := range src.Children {
		if child := s.doc.Element(childID); child != nil {
			s.copySubtreeLocked(child, id)
		}
	}
	return id
}

// Wrap splices a layout/div container into the element's position and
// re-parents the element into it. Wrapping the root makes the container
// the new root.
func (s *Store) Wrap(id string) (string, error) {
	var containerID string
	err := s.Tx("wrap", func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		el := s.doc.Element(id)
		if el == nil {
			return fmt.Errorf("wrap: element %s: %w", id, ErrNotFound)
		}
		containerID = s.mintID("element")
		container := &ir.Element{
			ID:      containerID,
			Kind:    "layout",
			Tag:     "div",
			Parent:  el.Parent,
			Styles:  make(map[string]string),
			Attrs:   make(map[string]string),
			Classes: []string{},
		}
		s.doc.Elements.Nodes[containerID] = container
		if el.Parent != "" {
			parent := s.doc.Element(el.Parent)
			for i, childID := range parent.Children {
				if childID == id {
					parent.Children[i] = containerID
					break
				}
			}
		} else if s.doc.Elements.RootID == id {
			s.doc.Elements.RootID = containerID
		}
		container.Children = []string{id}
		el.Parent = containerID
		s.markStructure(containerID)
		return nil
	})
	if err != nil {
		return "", err
	}
	return containerID, nil
}

// Convert changes an element's kind only.
func (s *Store) Convert(id, newKind string) error {
	return s.Tx("convert", func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		el := s.doc.Element(id)
		if el == nil {
			return fmt.Errorf("convert: element %s: %w", id, ErrNotFound)
		}
		if newKind == "" {
			return fmt.Errorf("convert: empty kind: %w", ErrStateViolation)
		}
		el.Kind = newKind
		s.markElement(id)
		return nil
	})
}
