package hashing

import (
	"crypto/md5"
	"crypto/sha1"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"
	"strings"
)

// Algorithm identifies a supported content hash.
type Algorithm string

const (
	CRC32 Algorithm = "crc32"
	MD5   Algorithm = "md5"
	SHA1  Algorithm = "sha1"
)

// DefaultChunkSize is the read granularity used when none is supplied.
const DefaultChunkSize = 1 << 20

// ParseAlgorithm converts a string into a known Algorithm.
func ParseAlgorithm(value string) (Algorithm, bool) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(value))) {
	case CRC32:
		return CRC32, true
	case MD5:
		return MD5, true
	case SHA1:
		return SHA1, true
	default:
		return "", false
	}
}

// HashFile streams the file at path through the requested digest in
// chunkSize reads and returns the hex encoding: CRC32 as a fixed-width
// 8-character uppercase string, MD5 and SHA1 as lowercase digests.
func HashFile(path string, algo Algorithm, chunkSize int) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return HashReader(file, algo, chunkSize)
}

// HashReader consumes r in chunkSize reads and returns the hex digest.
func HashReader(r io.Reader, algo Algorithm, chunkSize int) (string, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	buf := make([]byte, chunkSize)

	switch algo {
	case CRC32:
		var crc uint32
		for {
			n, err := r.Read(buf)
			if n > 0 {
				crc = crc32.Update(crc, crc32.IEEETable, buf[:n])
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", fmt.Errorf("read for crc32: %w", err)
			}
		}
		return fmt.Sprintf("%08X", crc), nil
	case MD5:
		return hexDigest(r, md5.New(), buf)
	case SHA1:
		return hexDigest(r, sha1.New(), buf)
	default:
		return "", fmt.Errorf("unsupported hash algorithm %q", algo)
	}
}

func hexDigest(r io.Reader, h hash.Hash, buf []byte) (string, error) {
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("read for digest: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
