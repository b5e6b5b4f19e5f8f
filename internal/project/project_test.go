package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/zot/ui-builder/internal/config"
	"github.com/zot/ui-builder/internal/ir"
)

func sampleDoc() *ir.Document {
	doc := ir.NewDocument()
	doc.Elements.RootID = "element_1_1"
	doc.Elements.Nodes["element_1_1"] = &ir.Element{
		ID: "element_1_1", Kind: "layout", Tag: "div",
	}
	doc.Variables.Reactive["count"] = &ir.Variable{
		ID: "variable_1_1", Name: "count", Type: ir.VarReactive, Init: float64(0),
	}
	return doc
}

// TestSaveLoadRoundTrip verifies the project file round trip.
func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.json")
	doc := sampleDoc()
	if err := Save(path, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(doc, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// TestLoadMissingFile verifies the error path.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

// TestHotLoaderReload verifies a rewritten project file triggers a
// debounced reload.
func TestHotLoaderReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.json")
	if err := Save(path, sampleDoc()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := make(chan *ir.Document, 1)
	cfg := config.DefaultConfig()
	loader, err := NewHotLoader(cfg, path, func(doc *ir.Document) {
		select {
		case reloaded <- doc:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewHotLoader failed: %v", err)
	}
	if err := loader.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer loader.Stop()

	changed := sampleDoc()
	changed.Elements.Nodes["element_1_1"].Tag = "main"
	if err := Save(path, changed); err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}

	select {
	case doc := <-reloaded:
		if doc.Elements.Nodes["element_1_1"].Tag != "main" {
			t.Error("reload delivered stale document")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

// TestHotLoaderIgnoresOtherFiles verifies unrelated writes do not
// trigger reloads.
func TestHotLoaderIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.json")
	if err := Save(path, sampleDoc()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := make(chan struct{}, 1)
	cfg := config.DefaultConfig()
	loader, err := NewHotLoader(cfg, path, func(*ir.Document) {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewHotLoader failed: %v", err)
	}
	if err := loader.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer loader.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case <-reloaded:
		t.Error("unrelated file triggered a reload")
	case <-time.After(500 * time.Millisecond):
	}
}
