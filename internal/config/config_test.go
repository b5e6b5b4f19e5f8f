package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaults verifies the zero-flag configuration.
func TestDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Project.Path != "project.json" || cfg.Project.Output != "app.js" {
		t.Errorf("unexpected project defaults: %+v", cfg.Project)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("unexpected storage default: %+v", cfg.Storage)
	}
}

// TestFlagOverrides verifies CLI flags win.
func TestFlagOverrides(t *testing.T) {
	cfg, err := Load([]string{"-port", "3000", "-project", "counter.json", "-vv"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("port flag ignored: %d", cfg.Server.Port)
	}
	if cfg.Project.Path != "counter.json" {
		t.Errorf("project flag ignored: %s", cfg.Project.Path)
	}
	if cfg.Verbosity() != 2 {
		t.Errorf("expected verbosity 2, got %d", cfg.Verbosity())
	}
}

// TestTOMLAndPrecedence verifies file values load and flags override
// them.
func TestTOMLAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ui-builder.toml")
	content := `
[server]
host = "0.0.0.0"
port = 9000

[project]
path = "from-file.json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load([]string{"-config", path})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("TOML values ignored: %+v", cfg.Server)
	}
	if cfg.Project.Path != "from-file.json" {
		t.Errorf("TOML project ignored: %s", cfg.Project.Path)
	}

	cfg, err = Load([]string{"-config", path, "-port", "9100"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("flag should beat TOML: %d", cfg.Server.Port)
	}
}

// TestEnvOverrides verifies environment variables beat the defaults but
// lose to flags.
func TestEnvOverrides(t *testing.T) {
	t.Setenv("UIB_PORT", "9200")
	t.Setenv("UIB_STORAGE", "sqlite")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("env port ignored: %d", cfg.Server.Port)
	}
	if cfg.Storage.Type != "sqlite" {
		t.Errorf("env storage ignored: %s", cfg.Storage.Type)
	}

	cfg, err = Load([]string{"-port", "9300"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9300 {
		t.Errorf("flag should beat env: %d", cfg.Server.Port)
	}
}

// TestVerbosityExpansion verifies -vvv expands like repeated -v.
func TestVerbosityExpansion(t *testing.T) {
	cfg, err := Load([]string{"-vvv"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Verbosity() != 3 {
		t.Errorf("expected verbosity 3, got %d", cfg.Verbosity())
	}
}
