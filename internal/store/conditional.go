package store

import (
	"fmt"

	"github.com/zot/ui-builder/internal/ir"
)

// CondSpec describes a conditional branch: the guarding expression and
// the element rendered when it holds.
type CondSpec struct {
	Expr    string
	Element ElementSpec
}

// IfGroupResult is returned by CreateIfGroup.
type IfGroupResult struct {
	GroupID   string
	ElementID string
}

// CreateIfGroup creates the if element under parent and registers a new
// conditional group around it.
func (s *Store) CreateIfGroup(parentID string, spec CondSpec) (IfGroupResult, error) {
	var res IfGroupResult
	if spec.Expr == "" {
		return res, fmt.Errorf("createIfGroup: empty expression: %w", ErrStateViolation)
	}
	spec.Element.Parent = parentID
	elementID, err := s.Create(spec.Element)
	if err != nil {
		return res, fmt.Errorf("createIfGroup: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	groupID := s.mintID("group")
	s.doc.Element(elementID).Control = &ir.Control{Type: ir.CondIf, Expr: spec.Expr, Group: groupID}
	s.doc.ConditionalGroups[groupID] = &ir.Group{If: elementID}
	s.doc.Dirty.Conditionals.Add(groupID)
	s.doc.Touch()
	s.logf(3, "conditional group created: id=%s if=%s", groupID, elementID)
	return IfGroupResult{GroupID: groupID, ElementID: elementID}, nil
}

// AddElif appends an elif branch. The group and its if must exist; the
// branch element is created as a sibling under the if's parent.
func (s *Store) AddElif(groupID string, spec CondSpec) (string, error) {
	if spec.Expr == "" {
		return "", fmt.Errorf("addElif: empty expression: %w", ErrStateViolation)
	}
	parentID, err := s.groupParent("addElif", groupID)
	if err != nil {
		return "", err
	}
	spec.Element.Parent = parentID
	elementID, err := s.Create(spec.Element)
	if err != nil {
		return "", fmt.Errorf("addElif: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Element(elementID).Control = &ir.Control{Type: ir.CondElif, Expr: spec.Expr, Group: groupID}
	group := s.doc.ConditionalGroups[groupID]
	group.Elif = append(group.Elif, elementID)
	s.doc.Dirty.Conditionals.Add(groupID)
	s.doc.Touch()
	return elementID, nil
}

// AddElse attaches the else branch. A group holds at most one.
func (s *Store) AddElse(groupID string, element ElementSpec) (string, error) {
	parentID, err := s.groupParent("addElse", groupID)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	group := s.doc.ConditionalGroups[groupID]
	if group.Else != "" {
		s.mu.Unlock()
		return "", fmt.Errorf("addElse: group %s already has an else: %w", groupID, ErrStateViolation)
	}
	s.mu.Unlock()

	element.Parent = parentID
	elementID, err := s.Create(element)
	if err != nil {
		return "", fmt.Errorf("addElse: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Element(elementID).Control = &ir.Control{Type: ir.CondElse, Group: groupID}
	s.doc.ConditionalGroups[groupID].Else = elementID
	s.doc.Dirty.Conditionals.Add(groupID)
	s.doc.Touch()
	return elementID, nil
}

// groupParent resolves the parent element the group's branches hang
// from, validating the group and its if along the way.
func (s *Store) groupParent(op, groupID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx(op); err != nil {
		return "", err
	}
	group, ok := s.doc.ConditionalGroups[groupID]
	if !ok {
		return "", fmt.Errorf("%s: group %s: %w", op, groupID, ErrNotFound)
	}
	ifEl := s.doc.Element(group.If)
	if ifEl == nil {
		return "", fmt.Errorf("%s: group %s has no if element: %w", op, groupID, ErrStateViolation)
	}
	return ifEl.Parent, nil
}

// UpdateCondition replaces the expression of an if/elif branch. Else
// branches carry no expression.
func (s *Store) UpdateCondition(elementID, expr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("updateCondition"); err != nil {
		return err
	}
	el := s.doc.Element(elementID)
	if el == nil {
		return fmt.Errorf("updateCondition: element %s: %w", elementID, ErrNotFound)
	}
	if el.Control == nil {
		return fmt.Errorf("updateCondition: element %s is not conditional: %w", elementID, ErrStateViolation)
	}
	if el.Control.Type == ir.CondElse {
		return fmt.Errorf("updateCondition: else branches have no expression: %w", ErrStateViolation)
	}
	if expr == "" {
		return fmt.Errorf("updateCondition: empty expression: %w", ErrStateViolation)
	}
	el.Control.Expr = expr
	s.doc.Dirty.Conditionals.Add(el.Control.Group)
	s.doc.Dirty.Elements.Add(elementID)
	s.doc.Touch()
	return nil
}

// RemoveConditional removes the element from its group and deletes it.
// Removing the if dissolves the entire group.
func (s *Store) RemoveConditional(elementID string) error {
	s.mu.Lock()
	if err := s.requireTx("removeConditional"); err != nil {
		s.mu.Unlock()
		return err
	}
	el := s.doc.Element(elementID)
	if el == nil {
		s.mu.Unlock()
		return fmt.Errorf("removeConditional: element %s: %w", elementID, ErrNotFound)
	}
	if el.Control == nil {
		s.mu.Unlock()
		return fmt.Errorf("removeConditional: element %s is not conditional: %w", elementID, ErrStateViolation)
	}
	s.deleteLocked(elementID)
	s.mu.Unlock()
	return nil
}

// ValidateConditionalGroups collects violations of the sibling and
// shape rules plus dangling control pointers. Violations are returned,
// never thrown.
func (s *Store) ValidateConditionalGroups() ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []ValidationError
	for _, groupID := range s.doc.GroupIDs() {
		group := s.doc.ConditionalGroups[groupID]
		if group.If == "" {
			errs = append(errs, ValidationError{GroupID: groupID, Message: "group has no if branch"})
			continue
		}
		ifEl := s.doc.Element(group.If)
		if ifEl == nil {
			errs = append(errs, ValidationError{GroupID: groupID, ElementID: group.If, Message: "if element does not exist"})
			continue
		}
		if ifEl.Control == nil || ifEl.Control.Expr == "" {
			errs = append(errs, ValidationError{GroupID: groupID, ElementID: group.If, Message: "if branch has no expression"})
		}
		parent := ifEl.Parent
		for _, memberID := range group.Members() {
			member := s.doc.Element(memberID)
			if member == nil {
				errs = append(errs, ValidationError{GroupID: groupID, ElementID: memberID, Message: "group member does not exist"})
				continue
			}
			if member.Parent != parent {
				errs = append(errs, ValidationError{GroupID: groupID, ElementID: memberID, Message: "group members must share a parent"})
			}
		}
		for _, elifID := range group.Elif {
			el := s.doc.Element(elifID)
			if el == nil {
				continue
			}
			if el.Control == nil || el.Control.Expr == "" {
				errs = append(errs, ValidationError{GroupID: groupID, ElementID: elifID, Message: "elif branch has no expression"})
			}
		}
		if group.Else != "" {
			el := s.doc.Element(group.Else)
			if el != nil && el.Control != nil && el.Control.Expr != "" {
				errs = append(errs, ValidationError{GroupID: groupID, ElementID: group.Else, Message: "else branch carries an expression"})
			}
		}
	}
	// Elements whose control points at a group that no longer exists,
	// e.g. survivors of a dissolved group.
	for _, id := range s.sortedElementIDs() {
		el := s.doc.Elements.Nodes[id]
		if el.Control == nil {
			continue
		}
		if _, ok := s.doc.ConditionalGroups[el.Control.Group]; !ok {
			errs = append(errs, ValidationError{
				GroupID:   el.Control.Group,
				ElementID: id,
				Message:   "control references a missing group",
			})
		}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
