package hashing_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shuttle/internal/hashing"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.bin")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestHashFileCRC32KnownValue(t *testing.T) {
	path := writeFixture(t, "123456789")
	got, err := hashing.HashFile(path, hashing.CRC32, 4)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	if got != "CBF43926" {
		t.Fatalf("expected CBF43926, got %s", got)
	}
}

func TestHashFileMD5AndSHA1KnownValues(t *testing.T) {
	path := writeFixture(t, "abc")

	md5sum, err := hashing.HashFile(path, hashing.MD5, 0)
	if err != nil {
		t.Fatalf("md5 failed: %v", err)
	}
	if md5sum != "900150983cd24fb0d6963f7d28e17f72" {
		t.Fatalf("unexpected md5: %s", md5sum)
	}

	sha1sum, err := hashing.HashFile(path, hashing.SHA1, 0)
	if err != nil {
		t.Fatalf("sha1 failed: %v", err)
	}
	if sha1sum != "a9993e364706816aba3e25717850c26c9cd0d89d" {
		t.Fatalf("unexpected sha1: %s", sha1sum)
	}
}

func TestHashReaderChunkingMatchesWholeRead(t *testing.T) {
	content := strings.Repeat("shuttle", 1000)

	small, err := hashing.HashReader(strings.NewReader(content), hashing.CRC32, 7)
	if err != nil {
		t.Fatalf("small chunks failed: %v", err)
	}
	large, err := hashing.HashReader(strings.NewReader(content), hashing.CRC32, 1<<16)
	if err != nil {
		t.Fatalf("large chunks failed: %v", err)
	}
	if small != large {
		t.Fatalf("chunk size changed digest: %s vs %s", small, large)
	}
	if len(small) != 8 || small != strings.ToUpper(small) {
		t.Fatalf("crc32 output not 8-char uppercase hex: %s", small)
	}
}

func TestHashFileUnsupportedAlgorithm(t *testing.T) {
	path := writeFixture(t, "abc")
	if _, err := hashing.HashFile(path, hashing.Algorithm("sha256"), 0); err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
}

func TestParseAlgorithm(t *testing.T) {
	if algo, ok := hashing.ParseAlgorithm(" CRC32 "); !ok || algo != hashing.CRC32 {
		t.Fatalf("expected crc32, got %q ok=%v", algo, ok)
	}
	if _, ok := hashing.ParseAlgorithm("whirlpool"); ok {
		t.Fatal("expected unknown algorithm to be rejected")
	}
}
