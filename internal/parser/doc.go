// Package parser recovers show, season, and episode identity from raw
// release filenames. A pluggable model-backed provider is consulted first
// with confidence gating; an ordered set of deterministic pattern rules is
// the fallback. Hash-tag extraction is independent of identity extraction.
package parser
