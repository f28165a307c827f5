package experiment

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "experiment.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoaderCachesUntilMtimeChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, validConfigJSON)
	loader := NewLoader(path, "")

	first, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	again, err := loader.Load()
	if err != nil {
		t.Fatalf("Second load failed: %v", err)
	}
	if first != again {
		t.Error("Unchanged file should return the cached config")
	}

	updated := []byte(`{"batch_id": "pilot-2", "groups": {}, "modes": {}, "subsets": {}}`)
	if err := os.WriteFile(path, updated, 0644); err != nil {
		t.Fatalf("Failed to rewrite config: %v", err)
	}
	// Force a distinct mtime; some filesystems have coarse resolution.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("Failed to bump mtime: %v", err)
	}

	reloaded, err := loader.Load()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if reloaded.BatchID != "pilot-2" {
		t.Errorf("Expected reloaded batch id pilot-2, got %s", reloaded.BatchID)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "nope.json"), "")
	if _, err := loader.Load(); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoaderInvalidDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, `{"groups": {}}`)
	loader := NewLoader(path, "")
	if _, err := loader.Load(); err == nil {
		t.Error("Expected validation error to surface from Load")
	}
}

func TestProjectRootDerivation(t *testing.T) {
	base := t.TempDir()

	plain := NewLoader(filepath.Join(base, "experiment.json"), "")
	if got := plain.ProjectRoot(); got != base {
		t.Errorf("Expected config dir as root, got %s", got)
	}

	nested := NewLoader(filepath.Join(base, "config", "experiment.json"), "")
	if got := nested.ProjectRoot(); got != base {
		t.Errorf("Expected parent of config/ as root, got %s", got)
	}

	override := NewLoader(filepath.Join(base, "config", "experiment.json"), "/srv/override")
	if got := override.ProjectRoot(); got != "/srv/override" {
		t.Errorf("Expected explicit override, got %s", got)
	}
}
