// Package hashing provides streaming, chunked content hashing for large
// media files. Digest output is provenance for verification and is kept
// distinct from any hash tag asserted by a filename.
package hashing
