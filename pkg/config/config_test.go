package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Store.MaxSnapshots != 10 {
		t.Errorf("default max snapshots: got %d, want 10", cfg.Store.MaxSnapshots)
	}
	if cfg.Store.PersistPath == "" {
		t.Error("default persist path should not be empty")
	}
	if cfg.Export.SliceSizePx <= 0 {
		t.Errorf("default slice size must be positive, got %d", cfg.Export.SliceSizePx)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Store.MaxSnapshots != DefaultConfig().Store.MaxSnapshots {
		t.Error("missing config file should fall back to defaults")
	}
}

func TestLoadConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("store:\n  maxSnapshots: 3\n  clearOnInit: true\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Store.MaxSnapshots != 3 {
		t.Errorf("max snapshots: got %d, want 3", cfg.Store.MaxSnapshots)
	}
	if !cfg.Store.ClearOnInit {
		t.Error("clearOnInit should be true")
	}
	// Untouched sections keep their defaults.
	if cfg.Export.SliceSizePx != 256 {
		t.Errorf("slice size should keep default 256, got %d", cfg.Export.SliceSizePx)
	}
}

func TestSaveAndReloadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.Store.MaxSnapshots = 7

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Store.MaxSnapshots != 7 {
		t.Errorf("reloaded max snapshots: got %d, want 7", loaded.Store.MaxSnapshots)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("store: [not a map"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed YAML should fail to load")
	}
}
