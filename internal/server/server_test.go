package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zot/ui-builder/internal/config"
)

// TestIndexPage verifies the shell page is served at the root only.
func TestIndexPage(t *testing.T) {
	s := New(config.DefaultConfig())

	rec := httptest.NewRecorder()
	s.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `import { mount } from "/app.js";`) {
		t.Error("index page does not import the app module")
	}
	if !strings.Contains(body, "/ws") {
		t.Error("index page does not open the reload socket")
	}

	rec = httptest.NewRecorder()
	s.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %d", rec.Code)
	}
}

// TestPublishSwapsSource verifies Publish changes what /app.js serves.
func TestPublishSwapsSource(t *testing.T) {
	s := New(config.DefaultConfig())

	rec := httptest.NewRecorder()
	s.handleAppJS(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	if rec.Body.String() != "" {
		t.Errorf("expected empty source before publish, got %q", rec.Body.String())
	}

	s.Publish("export function mount(target) {}")

	rec = httptest.NewRecorder()
	s.handleAppJS(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	if !strings.Contains(rec.Body.String(), "export function mount") {
		t.Error("published source not served")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "javascript") {
		t.Errorf("unexpected content type %s", ct)
	}
}
