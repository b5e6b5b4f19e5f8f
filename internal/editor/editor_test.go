package editor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/zot/ui-builder/internal/ir"
	"github.com/zot/ui-builder/internal/store"
)

// TestChangeEvents verifies committed operations reach change hooks
// with snapshot and history state.
func TestChangeEvents(t *testing.T) {
	ed := New()
	var events []ChangeEvent
	ed.OnChange(func(e ChangeEvent) {
		events = append(events, e)
	})

	var id string
	err := ed.Apply("element_added", map[string]any{"kind": "layout"}, func(s *store.Store) error {
		var createErr error
		id, createErr = s.Create(store.ElementSpec{Kind: "layout", Tag: "div"})
		return createErr
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 change event, got %d", len(events))
	}
	e := events[0]
	if e.Type != "element_added" {
		t.Errorf("unexpected type %s", e.Type)
	}
	if !e.CanUndo || e.CanRedo {
		t.Errorf("unexpected history state: undo=%v redo=%v", e.CanUndo, e.CanRedo)
	}
	if e.Snapshot == nil || e.Snapshot.RootID() != id {
		t.Error("change event carries wrong snapshot")
	}
	if e.Data["kind"] != "layout" {
		t.Errorf("unexpected data: %v", e.Data)
	}

	if !ed.Undo() {
		t.Fatal("Undo failed")
	}
	if len(events) != 2 || events[1].Type != "undo" {
		t.Errorf("expected undo event, got %+v", events)
	}
}

// TestFailedApplyRollsBack verifies the error hook fires and no change
// event is emitted.
func TestFailedApplyRollsBack(t *testing.T) {
	ed := New()
	var changes int
	var errs []string
	ed.OnChange(func(ChangeEvent) { changes++ })
	ed.OnError(func(stage string, err error) { errs = append(errs, stage) })

	boom := fmt.Errorf("boom")
	err := ed.Apply("bad", nil, func(s *store.Store) error {
		if _, err := s.Create(store.ElementSpec{Kind: "layout", Tag: "div"}); err != nil {
			return err
		}
		return boom
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if changes != 0 {
		t.Error("change hook fired for failed transaction")
	}
	if len(errs) != 1 || errs[0] != "mutation" {
		t.Errorf("expected mutation error hook, got %v", errs)
	}
	if ed.Store().Root() != "" {
		t.Error("failed apply leaked state")
	}
}

// TestPreviewHook verifies each change recompiles into the preview
// hook.
func TestPreviewHook(t *testing.T) {
	ed := New()
	var sources []string
	ed.OnPreview(func(source string) { sources = append(sources, source) })

	err := ed.Apply("element_added", nil, func(s *store.Store) error {
		_, createErr := s.Create(store.ElementSpec{Kind: "layout", Tag: "div"})
		return createErr
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 preview, got %d", len(sources))
	}
	if !strings.Contains(sources[0], "export function mount(target)") {
		t.Error("preview is not compiled output")
	}
	if !strings.Contains(sources[0], `document.createElement("div")`) {
		t.Error("preview missing the new element")
	}
}

// TestSelectionClearsOnDelete verifies deleting the selected element
// clears the selection.
func TestSelectionClearsOnDelete(t *testing.T) {
	ed := New()
	var id string
	if err := ed.Apply("element_added", nil, func(s *store.Store) error {
		var createErr error
		id, createErr = s.Create(store.ElementSpec{Kind: "layout", Tag: "div"})
		return createErr
	}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := ed.Select(id); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if ed.Selection() != id {
		t.Error("selection not recorded")
	}
	if err := ed.Select("element_9_9"); err == nil {
		t.Error("expected error selecting unknown element")
	}
	if err := ed.Apply("element_deleted", nil, func(s *store.Store) error {
		return s.Delete(id)
	}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if ed.Selection() != "" {
		t.Error("selection not cleared after delete")
	}
}

// TestCopyPaste verifies the clipboard round trip re-mints ids and
// preserves content, bindings and events.
func TestCopyPaste(t *testing.T) {
	ed := New()
	var root, card, title string
	if err := ed.Apply("setup", nil, func(s *store.Store) error {
		if _, err := s.Var(store.VarSpec{Name: "label", Type: ir.VarReactive, Init: "hi"}); err != nil {
			return err
		}
		var err error
		root, err = s.Create(store.ElementSpec{Kind: "layout", Tag: "div"})
		if err != nil {
			return err
		}
		card, err = s.Create(store.ElementSpec{Kind: "layout", Tag: "section", Parent: root,
			Styles: map[string]string{"color": "red"}})
		if err != nil {
			return err
		}
		title, err = s.Create(store.ElementSpec{Kind: "text", Tag: "h2", Parent: card})
		if err != nil {
			return err
		}
		if err := s.BindText(title, "label"); err != nil {
			return err
		}
		_, err = s.On(card, "click", ir.Action{Kind: ir.ActionCall, Function: "ping"})
		return err
	}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := ed.Copy(card); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	pastedID, err := ed.Paste(root)
	if err != nil {
		t.Fatalf("Paste failed: %v", err)
	}
	if pastedID == card {
		t.Fatal("paste reused the original id")
	}
	pasted, err := ed.Store().Get(pastedID)
	if err != nil {
		t.Fatalf("pasted element missing: %v", err)
	}
	if pasted.Tag != "section" || pasted.Styles["color"] != "red" {
		t.Errorf("paste lost content: %+v", pasted)
	}
	if len(pasted.Children) != 1 {
		t.Fatalf("paste lost children: %v", pasted.Children)
	}
	pastedTitle, _ := ed.Store().Get(pasted.Children[0])
	if pastedTitle.TextBinding != "label" {
		t.Error("paste lost text binding")
	}
	if events := ed.Store().Events(pastedID); len(events["click"]) != 1 {
		t.Error("paste lost events")
	}
}

// TestPasteEmptyClipboard verifies the error path.
func TestPasteEmptyClipboard(t *testing.T) {
	ed := New()
	if _, err := ed.Paste(""); err == nil {
		t.Error("expected error for empty clipboard")
	}
}
