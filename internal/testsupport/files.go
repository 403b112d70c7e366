package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes contents to the target path, creating parent directories.
// Importer tests use it to drop CSV fixtures into watched directories.
func WriteFile(t testing.TB, path, contents string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
