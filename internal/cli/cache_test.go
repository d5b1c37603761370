package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClearCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), appName)

	// A missing cache directory is not an error.
	count, err := clearCache(dir)
	if err != nil {
		t.Fatalf("clearCache() on missing dir: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"aaa.json", "bbb.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	count, err = clearCache(dir)
	if err != nil {
		t.Fatalf("clearCache() error: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("cache directory should be removed")
	}

	// Clearing again reports an empty cache.
	count, err = clearCache(dir)
	if err != nil {
		t.Fatalf("clearCache() after clear: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
