package store

import (
	"fmt"

	"github.com/zot/ui-builder/internal/ir"
)

// ElementSpec describes a new element. Parent is optional; the first
// parentless element becomes the root.
type ElementSpec struct {
	Kind    string
	Tag     string
	Parent  string
	Text    *string
	Styles  map[string]string
	Classes []string
	Attrs   map[string]string
}

// Create allocates a new element and links it into the tree. With no
// parent and no existing root it installs the element as root.
func (s *Store) Create(spec ElementSpec) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("create"); err != nil {
		return "", err
	}
	if spec.Kind == "" || spec.Tag == "" {
		return "", fmt.Errorf("create: kind and tag are required: %w", ErrStateViolation)
	}
	var parent *ir.Element
	if spec.Parent != "" {
		parent = s.doc.Element(spec.Parent)
		if parent == nil {
			return "", fmt.Errorf("create: parent %s: %w", spec.Parent, ErrNotFound)
		}
	} else if s.doc.Elements.RootID != "" {
		return "", fmt.Errorf("create: root already exists: %w", ErrStateViolation)
	}

	id := s.mintID("element")
	el := &ir.Element{
		ID:      id,
		Kind:    spec.Kind,
		Tag:     spec.Tag,
		Parent:  spec.Parent,
		Styles:  make(map[string]string),
		Attrs:   make(map[string]string),
		Classes: []string{},
	}
	if spec.Text != nil {
		text := *spec.Text
		el.Text = &text
	}
	for k, v := range spec.Styles {
		el.Styles[k] = v
	}
	for k, v := range spec.Attrs {
		el.Attrs[k] = v
	}
	for _, class := range spec.Classes {
		el.Classes = addClass(el.Classes, class)
	}

	s.doc.Elements.Nodes[id] = el
	if parent != nil {
		parent.Children = append(parent.Children, id)
	} else {
		s.doc.Elements.RootID = id
	}
	s.markStructure(id)
	s.logf(3, "element created: id=%s kind=%s tag=%s parent=%s", id, spec.Kind, spec.Tag, spec.Parent)
	return id, nil
}

// Append detaches child from its previous parent (if any) and pushes it
// onto parent's child list.
func (s *Store) Append(parentID, childID string) error {
	return s.insertAt(parentID, childID, -1, "append")
}

// Insert is Append at a specific index. Out-of-range indexes clamp.
func (s *Store) Insert(parentID, childID string, index int) error {
	return s.insertAt(parentID, childID, index, "insert")
}

func (s *Store) insertAt(parentID, childID string, index int, op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx(op); err != nil {
		return err
	}
	parent := s.doc.Element(parentID)
	if parent == nil {
		return fmt.Errorf("%s: parent %s: %w", op, parentID, ErrNotFound)
	}
	child := s.doc.Element(childID)
	if child == nil {
		return fmt.Errorf("%s: child %s: %w", op, childID, ErrNotFound)
	}
	if parentID == childID || s.isAncestor(childID, parentID) {
		return fmt.Errorf("%s: %s into its own subtree: %w", op, childID, ErrStateViolation)
	}
	if child.Parent != "" {
		if prev := s.doc.Element(child.Parent); prev != nil {
			prev.Children = removeID(prev.Children, childID)
		}
	} else if s.doc.Elements.RootID == childID {
		s.doc.Elements.RootID = ""
	}
	child.Parent = parentID
	if index < 0 || index >= len(parent.Children) {
		parent.Children = append(parent.Children, childID)
	} else {
		parent.Children = append(parent.Children, "")
		copy(parent.Children[index+1:], parent.Children[index:])
		parent.Children[index] = childID
	}
	s.markStructure(parentID)
	s.doc.Dirty.Elements.Add(childID)
	return nil
}

// isAncestor reports whether ancestorID is an ancestor of id.
func (s *Store) isAncestor(ancestorID, id string) bool {
	for id != "" {
		el := s.doc.Element(id)
		if el == nil {
			return false
		}
		if el.Parent == ancestorID {
			return true
		}
		id = el.Parent
	}
	return false
}

// Delete removes an element and cascades: children first, then events
// targeting it, bindings referring to it, and conditional-group
// membership. Deleting a group's if dissolves the whole group. Deleting
// the root clears the root pointer.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("delete"); err != nil {
		return err
	}
	if s.doc.Element(id) == nil {
		return fmt.Errorf("delete: element %s: %w", id, ErrNotFound)
	}
	s.deleteLocked(id)
	return nil
}

func (s *Store) deleteLocked(id string) {
	el := s.doc.Element(id)
	if el == nil {
		return
	}
	for _, child := range append([]string(nil), el.Children...) {
		s.deleteLocked(child)
	}
	if el.Parent != "" {
		if parent := s.doc.Element(el.Parent); parent != nil {
			parent.Children = removeID(parent.Children, id)
		}
	}
	s.removeEventsFor(id)
	s.removeBindingsFor(id)
	s.removeGroupMembership(el)
	delete(s.doc.Elements.Nodes, id)
	if s.doc.Elements.RootID == id {
		s.doc.Elements.RootID = ""
	}
	s.markStructure(id)
	s.logf(3, "element deleted: id=%s", id)
}

// removeEventsFor drops every event targeting the element.
func (s *Store) removeEventsFor(elementID string) {
	for eventType, events := range s.doc.Events {
		kept := events[:0]
		for _, e := range events {
			if e.Target == elementID {
				s.doc.Dirty.Events.Add(e.ID)
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(s.doc.Events, eventType)
		} else {
			s.doc.Events[eventType] = kept
		}
	}
}

// removeBindingsFor drops every binding referring to the element.
func (s *Store) removeBindingsFor(elementID string) {
	kept := s.doc.Bindings[:0]
	for _, b := range s.doc.Bindings {
		if b.ElementID == elementID {
			s.doc.Dirty.Bindings.Add(b.ID)
			continue
		}
		kept = append(kept, b)
	}
	s.doc.Bindings = kept
}

// removeGroupMembership detaches the element from its conditional group.
// Removing the if dissolves the group; surviving elif/else members keep
// their control pointer, which validateConditionalGroups flags.
func (s *Store) removeGroupMembership(el *ir.Element) {
	if el.Control == nil {
		return
	}
	groupID := el.Control.Group
	group, ok := s.doc.ConditionalGroups[groupID]
	if !ok {
		return
	}
	switch {
	case group.If == el.ID:
		delete(s.doc.ConditionalGroups, groupID)
	case group.Else == el.ID:
		group.Else = ""
	default:
		group.Elif = removeID(group.Elif, el.ID)
	}
	s.doc.Dirty.Conditionals.Add(groupID)
}

// SetText assigns static text. Fails on elements with a text binding.
func (s *Store) SetText(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("setText"); err != nil {
		return err
	}
	el := s.doc.Element(id)
	if el == nil {
		return fmt.Errorf("setText: element %s: %w", id, ErrNotFound)
	}
	if el.TextBinding != "" {
		return fmt.Errorf("setText: element %s has a text binding: %w", id, ErrStateViolation)
	}
	el.Text = &text
	s.markElement(id)
	return nil
}

// ClearText removes static text content.
func (s *Store) ClearText(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("clearText"); err != nil {
		return err
	}
	el := s.doc.Element(id)
	if el == nil {
		return fmt.Errorf("clearText: element %s: %w", id, ErrNotFound)
	}
	el.Text = nil
	s.markElement(id)
	return nil
}

// BindText binds the element's text content to a variable and records
// the corresponding text binding. Fails on statically-texted elements.
func (s *Store) BindText(id, variable string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("bindText"); err != nil {
		return err
	}
	el := s.doc.Element(id)
	if el == nil {
		return fmt.Errorf("bindText: element %s: %w", id, ErrNotFound)
	}
	if el.Text != nil {
		return fmt.Errorf("bindText: element %s has static text: %w", id, ErrStateViolation)
	}
	if _, ok := s.doc.FindVariable(variable); !ok {
		return fmt.Errorf("bindText: variable %s: %w", variable, ErrNotFound)
	}
	if el.TextBinding != "" {
		s.removeTextBindingRecord(id)
	}
	el.TextBinding = variable
	bindingID := s.mintID("binding")
	s.doc.Bindings = append(s.doc.Bindings, &ir.Binding{
		ID:        bindingID,
		ElementID: id,
		Variable:  variable,
		Kind:      ir.BindText,
	})
	s.doc.Dirty.Bindings.Add(bindingID)
	s.markElement(id)
	return nil
}

// UnbindText clears the element's text binding and removes the record.
func (s *Store) UnbindText(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("unbindText"); err != nil {
		return err
	}
	el := s.doc.Element(id)
	if el == nil {
		return fmt.Errorf("unbindText: element %s: %w", id, ErrNotFound)
	}
	el.TextBinding = ""
	s.removeTextBindingRecord(id)
	s.markElement(id)
	return nil
}

func (s *Store) removeTextBindingRecord(elementID string) {
	kept := s.doc.Bindings[:0]
	for _, b := range s.doc.Bindings {
		if b.ElementID == elementID && b.Kind == ir.BindText {
			s.doc.Dirty.Bindings.Add(b.ID)
			continue
		}
		kept = append(kept, b)
	}
	s.doc.Bindings = kept
}

// Style sets a CSS property on the element. An empty value removes the
// property.
func (s *Store) Style(id, property, value string) error {
	return s.setMapEntry(id, "style", property, value)
}

// Attr sets an attribute on the element. An empty value removes it.
func (s *Store) Attr(id, name, value string) error {
	return s.setMapEntry(id, "attr", name, value)
}

func (s *Store) setMapEntry(id, op, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx(op); err != nil {
		return err
	}
	el := s.doc.Element(id)
	if el == nil {
		return fmt.Errorf("%s: element %s: %w", op, id, ErrNotFound)
	}
	target := el.Styles
	if op == "attr" {
		target = el.Attrs
	}
	if value == "" {
		delete(target, key)
	} else {
		target[key] = value
	}
	s.markElement(id)
	return nil
}

// Class adds or removes a class name.
func (s *Store) Class(id, name string, present bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("class"); err != nil {
		return err
	}
	el := s.doc.Element(id)
	if el == nil {
		return fmt.Errorf("class: element %s: %w", id, ErrNotFound)
	}
	if present {
		el.Classes = addClass(el.Classes, name)
	} else {
		el.Classes = removeID(el.Classes, name)
	}
	s.markElement(id)
	return nil
}

func (s *Store) markElement(id string) {
	s.doc.Dirty.Elements.Add(id)
	s.doc.Touch()
}

func (s *Store) markStructure(id string) {
	s.doc.Dirty.Elements.Add(id)
	s.doc.Dirty.Structure = true
	s.doc.Touch()
}

// addClass appends a class if absent, preserving insertion order.
func addClass(classes []string, name string) []string {
	for _, c := range classes {
		if c == name {
			return classes
		}
	}
	return append(classes, name)
}

func removeID(ids []string, id string) []string {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
