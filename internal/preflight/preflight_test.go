package preflight

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("Incoming directory", dir)
	if !result.Passed {
		t.Fatalf("writable dir failed: %+v", result)
	}

	missing := CheckDirectoryAccess("Incoming directory", filepath.Join(dir, "nope"))
	if missing.Passed {
		t.Fatalf("missing dir passed: %+v", missing)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	notDir := CheckDirectoryAccess("Incoming directory", file)
	if notDir.Passed {
		t.Fatalf("regular file passed: %+v", notDir)
	}
}

func TestCheckDiskSpace(t *testing.T) {
	result := CheckDiskSpace("Incoming disk space", t.TempDir())
	if result.Detail == "" {
		t.Fatal("expected a detail string with the free space")
	}

	missing := CheckDiskSpace("Incoming disk space", "/definitely/not/a/path")
	if missing.Passed {
		t.Fatalf("missing path passed: %+v", missing)
	}
}

func TestAllPassed(t *testing.T) {
	if !AllPassed([]Result{{Passed: true}, {Passed: true}}) {
		t.Fatal("all-pass slice reported failure")
	}
	if AllPassed([]Result{{Passed: true}, {Passed: false}}) {
		t.Fatal("failing slice reported success")
	}
	if !AllPassed(nil) {
		t.Fatal("empty slice should pass")
	}
}
