package testsupport

import (
	"path/filepath"
	"testing"

	"shuttle/internal/catalog"
)

// MustOpenStore opens a catalog.Store in a temp directory and registers
// cleanup.
func MustOpenStore(t testing.TB) *catalog.Store {
	t.Helper()

	store, err := catalog.OpenPath(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("catalog.OpenPath: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
