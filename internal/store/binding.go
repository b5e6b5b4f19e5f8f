package store

import (
	"fmt"

	"github.com/zot/ui-builder/internal/ir"
)

// Bind records a binding projecting a variable onto an element. Key is
// required for attr/style bindings and must be empty for text. Text
// bindings are normally created through BindText, which also stamps the
// element; Bind accepts them for completeness and applies the same rule.
func (s *Store) Bind(elementID, variable string, kind ir.BindKind, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("bind"); err != nil {
		return "", err
	}
	el := s.doc.Element(elementID)
	if el == nil {
		return "", fmt.Errorf("bind: element %s: %w", elementID, ErrNotFound)
	}
	if _, ok := s.doc.FindVariable(variable); !ok {
		return "", fmt.Errorf("bind: variable %s: %w", variable, ErrNotFound)
	}
	switch kind {
	case ir.BindText:
		if key != "" {
			return "", fmt.Errorf("bind: text bindings take no key: %w", ErrStateViolation)
		}
		if el.Text != nil {
			return "", fmt.Errorf("bind: element %s has static text: %w", elementID, ErrStateViolation)
		}
		el.TextBinding = variable
		s.doc.Dirty.Elements.Add(elementID)
	case ir.BindAttr, ir.BindStyle:
		if key == "" {
			return "", fmt.Errorf("bind: %s bindings require a key: %w", kind, ErrStateViolation)
		}
	default:
		return "", fmt.Errorf("bind: unknown kind %q: %w", kind, ErrStateViolation)
	}
	id := s.mintID("binding")
	s.doc.Bindings = append(s.doc.Bindings, &ir.Binding{
		ID:        id,
		ElementID: elementID,
		Variable:  variable,
		Kind:      kind,
		Key:       key,
	})
	s.doc.Dirty.Bindings.Add(id)
	s.doc.Touch()
	s.logf(3, "binding added: id=%s element=%s variable=%s kind=%s", id, elementID, variable, kind)
	return id, nil
}

// Unbind removes a binding by id, clearing the element's text binding
// when a text binding goes away.
func (s *Store) Unbind(bindingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("unbind"); err != nil {
		return err
	}
	for i, b := range s.doc.Bindings {
		if b.ID != bindingID {
			continue
		}
		if b.Kind == ir.BindText {
			if el := s.doc.Element(b.ElementID); el != nil && el.TextBinding == b.Variable {
				el.TextBinding = ""
				s.doc.Dirty.Elements.Add(el.ID)
			}
		}
		s.doc.Bindings = append(s.doc.Bindings[:i], s.doc.Bindings[i+1:]...)
		s.doc.Dirty.Bindings.Add(bindingID)
		s.doc.Touch()
		return nil
	}
	return fmt.Errorf("unbind: binding %s: %w", bindingID, ErrNotFound)
}

// GetBindings returns deep clones of the bindings attached to an
// element, in declaration order.
func (s *Store) GetBindings(elementID string) []*ir.Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*ir.Binding
	for _, b := range s.doc.Bindings {
		if b.ElementID == elementID {
			out = append(out, b.Clone())
		}
	}
	return out
}
