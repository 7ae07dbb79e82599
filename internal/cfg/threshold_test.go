package cfg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestThresholdRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	if err := SaveThreshold(path, 0.72); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got := LoadThreshold(path, 0.5)
	if got != 0.72 {
		t.Errorf("expected 0.72, got %f", got)
	}
}

func TestLoadThreshold_MissingFileUsesFallback(t *testing.T) {
	got := LoadThreshold(filepath.Join(t.TempDir(), "absent.json"), 0.5)
	if got != 0.5 {
		t.Errorf("expected fallback 0.5, got %f", got)
	}
}

func TestLoadThreshold_MalformedFileUsesFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{threshold:"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := LoadThreshold(path, 0.4)
	if got != 0.4 {
		t.Errorf("expected fallback 0.4, got %f", got)
	}
}

func TestThresholdClamping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	// Stored values outside the unit interval are clamped on read.
	if err := os.WriteFile(path, []byte(`{"threshold": 1.8}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := LoadThreshold(path, 0.5); got != 1.0 {
		t.Errorf("expected clamp to 1.0, got %f", got)
	}

	if err := os.WriteFile(path, []byte(`{"threshold": -0.3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := LoadThreshold(path, 0.5); got != 0.0 {
		t.Errorf("expected clamp to 0.0, got %f", got)
	}

	// And on write.
	if err := SaveThreshold(path, 2.5); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if got := LoadThreshold(path, 0.5); got != 1.0 {
		t.Errorf("expected persisted clamp to 1.0, got %f", got)
	}
}

func TestSaveThreshold_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.json")

	if err := SaveThreshold(path, 0.6); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if got := LoadThreshold(path, 0.5); got != 0.6 {
		t.Errorf("expected 0.6, got %f", got)
	}
}
