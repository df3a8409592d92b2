package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.FreestyleWeights.Holes >= 0 {
		t.Fatalf("expected default weights, got %+v", cfg.FreestyleWeights)
	}
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.json")
	if err := os.WriteFile(path, []byte(`{"freestyle_weights":{"holes":-99.0}}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FreestyleWeights.Holes != -99.0 {
		t.Fatalf("Holes = %v, want -99.0", cfg.FreestyleWeights.Holes)
	}
	if cfg.FreestyleWeights.PerfectClear == 0 {
		t.Fatalf("expected PerfectClear to keep its default, got 0")
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/path/weights.json"); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
