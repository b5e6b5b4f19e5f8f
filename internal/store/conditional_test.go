package store

import (
	"errors"
	"testing"

	"github.com/zot/ui-builder/internal/ir"
)

// condFixture builds a root plus an if/elif/else group under it.
func condFixture(t *testing.T, s *Store) (root string, res IfGroupResult, elifID, elseID string) {
	t.Helper()
	err := s.Tx("fixture", func() error {
		if _, err := s.Var(VarSpec{Name: "count", Type: ir.VarReactive, Init: 0}); err != nil {
			return err
		}
		var err error
		root = mustCreate(t, s, ElementSpec{Kind: "layout", Tag: "div"})
		res, err = s.CreateIfGroup(root, CondSpec{
			Expr:    "count.value === 0",
			Element: ElementSpec{Kind: "text", Tag: "p"},
		})
		if err != nil {
			return err
		}
		elifID, err = s.AddElif(res.GroupID, CondSpec{
			Expr:    "count.value === 1",
			Element: ElementSpec{Kind: "text", Tag: "p"},
		})
		if err != nil {
			return err
		}
		elseID, err = s.AddElse(res.GroupID, ElementSpec{Kind: "text", Tag: "p"})
		return err
	})
	if err != nil {
		t.Fatalf("fixture failed: %v", err)
	}
	return
}

// TestConditionalGroupShape verifies group construction and the
// sibling rule.
func TestConditionalGroupShape(t *testing.T) {
	s := New()
	root, res, elifID, elseID := condFixture(t, s)

	group, err := s.GetGroup(res.GroupID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if group.If != res.ElementID {
		t.Errorf("unexpected if element: %s", group.If)
	}
	if len(group.Elif) != 1 || group.Elif[0] != elifID {
		t.Errorf("unexpected elif list: %v", group.Elif)
	}
	if group.Else != elseID {
		t.Errorf("unexpected else: %s", group.Else)
	}

	// All members are siblings under root.
	for _, id := range []string{res.ElementID, elifID, elseID} {
		el, err := s.Get(id)
		if err != nil {
			t.Fatalf("Get %s failed: %v", id, err)
		}
		if el.Parent != root {
			t.Errorf("member %s has parent %s, want %s", id, el.Parent, root)
		}
		if el.Control == nil || el.Control.Group != res.GroupID {
			t.Errorf("member %s has wrong control: %+v", id, el.Control)
		}
	}

	result := s.ValidateConditionalGroups()
	if !result.Valid {
		t.Errorf("expected valid groups, got %+v", result.Errors)
	}
	checkInvariants(t, s)
}

// TestDoubleElse verifies a group holds at most one else.
func TestDoubleElse(t *testing.T) {
	s := New()
	_, res, _, _ := condFixture(t, s)
	s.BeginTx("double")
	defer s.Rollback()
	if _, err := s.AddElse(res.GroupID, ElementSpec{Kind: "text", Tag: "p"}); !errors.Is(err, ErrStateViolation) {
		t.Errorf("expected ErrStateViolation, got %v", err)
	}
}

// TestUpdateCondition verifies expression updates and the else rule.
func TestUpdateCondition(t *testing.T) {
	s := New()
	_, res, _, elseID := condFixture(t, s)
	if err := s.Tx("update", func() error {
		return s.UpdateCondition(res.ElementID, "count.value > 10")
	}); err != nil {
		t.Fatalf("updateCondition failed: %v", err)
	}
	el, _ := s.Get(res.ElementID)
	if el.Control.Expr != "count.value > 10" {
		t.Errorf("expression not updated: %s", el.Control.Expr)
	}

	s.BeginTx("else")
	defer s.Rollback()
	if err := s.UpdateCondition(elseID, "x"); !errors.Is(err, ErrStateViolation) {
		t.Errorf("expected ErrStateViolation for else, got %v", err)
	}
}

// TestElifOnMissingGroup verifies reference errors.
func TestElifOnMissingGroup(t *testing.T) {
	s := New()
	s.BeginTx("missing")
	defer s.Rollback()
	if _, err := s.AddElif("group_9_9", CondSpec{Expr: "x", Element: ElementSpec{Kind: "text", Tag: "p"}}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestRemoveConditionalBranch verifies removing an elif keeps the rest
// of the group intact.
func TestRemoveConditionalBranch(t *testing.T) {
	s := New()
	_, res, elifID, elseID := condFixture(t, s)
	if err := s.Tx("remove", func() error {
		return s.RemoveConditional(elifID)
	}); err != nil {
		t.Fatalf("removeConditional failed: %v", err)
	}
	if _, err := s.Get(elifID); err == nil {
		t.Error("elif element survived removal")
	}
	group, err := s.GetGroup(res.GroupID)
	if err != nil {
		t.Fatalf("group dissolved by elif removal: %v", err)
	}
	if len(group.Elif) != 0 || group.Else != elseID {
		t.Errorf("unexpected group after removal: %+v", group)
	}
	if result := s.ValidateConditionalGroups(); !result.Valid {
		t.Errorf("expected valid groups, got %+v", result.Errors)
	}
}

// TestDeleteIfDissolvesGroup verifies the boundary case: deleting the
// if removes the group, and the surviving members' dangling control is
// flagged by the validator.
func TestDeleteIfDissolvesGroup(t *testing.T) {
	s := New()
	_, res, elifID, elseID := condFixture(t, s)
	if err := s.Tx("delete", func() error {
		return s.Delete(res.ElementID)
	}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.GetGroup(res.GroupID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected group to vanish, got %v", err)
	}
	// Survivors remain as plain elements with dangling control.
	for _, id := range []string{elifID, elseID} {
		el, err := s.Get(id)
		if err != nil {
			t.Fatalf("survivor %s missing: %v", id, err)
		}
		if el.Control == nil {
			t.Errorf("survivor %s lost its control", id)
		}
	}
	result := s.ValidateConditionalGroups()
	if result.Valid {
		t.Error("expected validator to flag dangling control")
	}
	if len(result.Errors) != 2 {
		t.Errorf("expected 2 violations, got %+v", result.Errors)
	}
}

// TestRemoveConditionalIf verifies removing the if dissolves the whole
// group and deletes the element.
func TestRemoveConditionalIf(t *testing.T) {
	s := New()
	_, res, _, _ := condFixture(t, s)
	if err := s.Tx("remove", func() error {
		return s.RemoveConditional(res.ElementID)
	}); err != nil {
		t.Fatalf("removeConditional failed: %v", err)
	}
	if _, err := s.Get(res.ElementID); err == nil {
		t.Error("if element survived removal")
	}
	if _, err := s.GetGroup(res.GroupID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected dissolved group, got %v", err)
	}
}

// TestEmptyExpressionRejected verifies if/elif require expressions.
func TestEmptyExpressionRejected(t *testing.T) {
	s := New()
	var root string
	if err := s.Tx("setup", func() error {
		root = mustCreate(t, s, ElementSpec{Kind: "layout", Tag: "div"})
		return nil
	}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	s.BeginTx("empty")
	defer s.Rollback()
	if _, err := s.CreateIfGroup(root, CondSpec{Element: ElementSpec{Kind: "text", Tag: "p"}}); !errors.Is(err, ErrStateViolation) {
		t.Errorf("expected ErrStateViolation for empty expr, got %v", err)
	}
}
