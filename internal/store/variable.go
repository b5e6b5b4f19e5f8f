package store

import (
	"fmt"

	"github.com/zot/ui-builder/internal/ir"
)

// VarSpec describes a new variable. Source and Lifecycle only apply to
// fetch variables.
type VarSpec struct {
	Name      string
	Type      ir.VarType
	Init      any
	Source    string
	Lifecycle string
}

// Var creates a variable. Names are unique across all three partitions.
func (s *Store) Var(spec VarSpec) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("var"); err != nil {
		return "", err
	}
	if spec.Name == "" {
		return "", fmt.Errorf("var: name is required: %w", ErrStateViolation)
	}
	if _, ok := s.doc.FindVariable(spec.Name); ok {
		return "", fmt.Errorf("var: duplicate name %s: %w", spec.Name, ErrStateViolation)
	}
	partition, err := s.partition(spec.Type)
	if err != nil {
		return "", fmt.Errorf("var: %w", err)
	}
	id := s.mintID("variable")
	v := &ir.Variable{
		ID:   id,
		Name: spec.Name,
		Type: spec.Type,
		Init: ir.CloneValue(spec.Init),
	}
	if spec.Type == ir.VarFetch {
		v.Source = spec.Source
		v.Lifecycle = spec.Lifecycle
	}
	partition[spec.Name] = v
	s.doc.Dirty.Variables.Add(id)
	s.doc.Touch()
	s.logf(3, "variable created: name=%s type=%s", spec.Name, spec.Type)
	s.logf(4, "variable %s init: %v", spec.Name, spec.Init)
	return id, nil
}

func (s *Store) partition(t ir.VarType) (map[string]*ir.Variable, error) {
	switch t {
	case ir.VarStatic:
		return s.doc.Variables.Static, nil
	case ir.VarReactive:
		return s.doc.Variables.Reactive, nil
	case ir.VarFetch:
		return s.doc.Variables.Fetch, nil
	default:
		return nil, fmt.Errorf("unknown variable type %q: %w", t, ErrStateViolation)
	}
}

// UpdateVar replaces a variable's initial value. Static variables are
// immutable once created.
func (s *Store) UpdateVar(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("updateVar"); err != nil {
		return err
	}
	v, ok := s.doc.FindVariable(name)
	if !ok {
		return fmt.Errorf("updateVar: variable %s: %w", name, ErrNotFound)
	}
	if v.Type == ir.VarStatic {
		return fmt.Errorf("updateVar: variable %s is static: %w", name, ErrStateViolation)
	}
	v.Init = ir.CloneValue(value)
	s.doc.Dirty.Variables.Add(v.ID)
	s.doc.Touch()
	s.logf(4, "variable %s value: %v", name, value)
	return nil
}

// DeleteVar removes a variable and cascades through the bindings that
// reference it, clearing element text bindings along the way.
func (s *Store) DeleteVar(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("deleteVar"); err != nil {
		return err
	}
	v, ok := s.doc.FindVariable(name)
	if !ok {
		return fmt.Errorf("deleteVar: variable %s: %w", name, ErrNotFound)
	}
	delete(s.doc.Variables.Static, name)
	delete(s.doc.Variables.Reactive, name)
	delete(s.doc.Variables.Fetch, name)

	kept := s.doc.Bindings[:0]
	for _, b := range s.doc.Bindings {
		if b.Variable == name {
			s.doc.Dirty.Bindings.Add(b.ID)
			if b.Kind == ir.BindText {
				if el := s.doc.Element(b.ElementID); el != nil && el.TextBinding == name {
					el.TextBinding = ""
					s.doc.Dirty.Elements.Add(el.ID)
				}
			}
			continue
		}
		kept = append(kept, b)
	}
	s.doc.Bindings = kept
	s.doc.Dirty.Variables.Add(v.ID)
	s.doc.Touch()
	s.logf(3, "variable deleted: name=%s", name)
	return nil
}
