package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sporkfish.yaml")
	contents := "search:\n  max_depth: 12\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.MaxDepth != 12 {
		t.Errorf("MaxDepth = %d, want 12", cfg.Search.MaxDepth)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Search.TranspositionTableSizeMB != Default().Search.TranspositionTableSizeMB {
		t.Error("expected unspecified fields to keep their default value")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sporkfish.yaml")
	if err := os.WriteFile(path, []byte("search:\n  bogus_key: 1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an unknown config key to be rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/sporkfish.yaml"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
