package store

import (
	"errors"
	"testing"

	"github.com/zot/ui-builder/internal/ir"
)

// TestSetLoop verifies attaching and clearing loop descriptors.
func TestSetLoop(t *testing.T) {
	s := New()
	var li string
	if err := s.Tx("setup", func() error {
		if _, err := s.Var(VarSpec{Name: "items", Type: ir.VarReactive, Init: []any{"x", "y"}}); err != nil {
			return err
		}
		li = mustCreate(t, s, ElementSpec{Kind: "text", Tag: "li"})
		return s.SetLoop(li, LoopSpec{Source: "items", Alias: "it", Index: "i"})
	}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	loop, err := s.GetLoop(li)
	if err != nil {
		t.Fatalf("GetLoop failed: %v", err)
	}
	if loop.Source != "items" || loop.Alias != "it" || loop.Index != "i" {
		t.Errorf("unexpected loop: %+v", loop)
	}
	if result := s.ValidateLoops(); !result.Valid {
		t.Errorf("expected valid loops, got %+v", result.Errors)
	}

	if err := s.Tx("update", func() error {
		return s.UpdateLoop(li, LoopSpec{Alias: "item"})
	}); err != nil {
		t.Fatalf("updateLoop failed: %v", err)
	}
	loop, _ = s.GetLoop(li)
	if loop.Alias != "item" || loop.Source != "items" {
		t.Errorf("merge lost fields: %+v", loop)
	}

	if err := s.Tx("remove", func() error {
		return s.RemoveLoop(li)
	}); err != nil {
		t.Fatalf("removeLoop failed: %v", err)
	}
	loop, _ = s.GetLoop(li)
	if loop != nil {
		t.Errorf("expected cleared loop, got %+v", loop)
	}
}

// TestSetLoopValidation verifies source and identifier checks.
func TestSetLoopValidation(t *testing.T) {
	s := New()
	var li string
	if err := s.Tx("setup", func() error {
		if _, err := s.Var(VarSpec{Name: "items", Type: ir.VarReactive, Init: []any{}}); err != nil {
			return err
		}
		li = mustCreate(t, s, ElementSpec{Kind: "text", Tag: "li"})
		return nil
	}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	s.BeginTx("bad")
	defer s.Rollback()
	if err := s.SetLoop(li, LoopSpec{Source: "missing", Alias: "it"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing source, got %v", err)
	}
	if err := s.SetLoop(li, LoopSpec{Source: "items", Alias: "1bad"}); !errors.Is(err, ErrStateViolation) {
		t.Errorf("expected ErrStateViolation for bad alias, got %v", err)
	}
	if err := s.SetLoop(li, LoopSpec{Source: "items", Alias: "it", Index: "with space"}); !errors.Is(err, ErrStateViolation) {
		t.Errorf("expected ErrStateViolation for bad index, got %v", err)
	}
}

// TestValidateLoopsFlagsDeletedSource verifies the validator reports a
// loop whose source variable went away.
func TestValidateLoopsFlagsDeletedSource(t *testing.T) {
	s := New()
	var li string
	if err := s.Tx("setup", func() error {
		if _, err := s.Var(VarSpec{Name: "items", Type: ir.VarReactive, Init: []any{"x"}}); err != nil {
			return err
		}
		li = mustCreate(t, s, ElementSpec{Kind: "text", Tag: "li"})
		if err := s.SetLoop(li, LoopSpec{Source: "items", Alias: "it"}); err != nil {
			return err
		}
		return s.DeleteVar("items")
	}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	result := s.ValidateLoops()
	if result.Valid {
		t.Fatal("expected loop violation after source deletion")
	}
	if result.Errors[0].ElementID != li {
		t.Errorf("unexpected violation: %+v", result.Errors[0])
	}
}
