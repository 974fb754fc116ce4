package parser

import (
	"context"
	"strings"
)

// Result is the structured metadata recovered from a filename.
type Result struct {
	ShowName   string
	Season     *int
	Episode    *int
	HashTag    string
	Confidence float64
	Reasoning  string
}

// ProviderResult is the raw payload returned by a pluggable parser. The
// CRC32 field is the specific hash-tag field; Hash is the legacy generic
// one kept for older providers. When both carry values, CRC32 wins.
type ProviderResult struct {
	ShowName   string
	Season     *int
	Episode    *int
	CRC32      string
	Hash       string
	Confidence float64
	Reasoning  string
}

// Provider is an optional model-backed filename parser. Implementations
// must be safe to call repeatedly; failures and timeouts are treated by the
// caller as a low-confidence result.
type Provider interface {
	ParseFilename(ctx context.Context, filename string) (ProviderResult, error)
}

// Parse extracts show metadata from a filename. A configured provider is
// consulted first; its result is used only when its confidence reaches
// threshold. Otherwise the deterministic pattern rules decide.
func Parse(ctx context.Context, filename string, provider Provider, threshold float64) Result {
	if provider != nil {
		raw, err := provider.ParseFilename(ctx, filename)
		if err == nil && raw.Confidence >= threshold && strings.TrimSpace(raw.ShowName) != "" {
			result := Result{
				ShowName:   strings.TrimSpace(raw.ShowName),
				Season:     raw.Season,
				Episode:    raw.Episode,
				HashTag:    providerHashTag(raw),
				Confidence: raw.Confidence,
				Reasoning:  raw.Reasoning,
			}
			if result.HashTag == "" {
				result.HashTag = ExtractHashTag(filename)
			}
			return result
		}
	}

	result := matchRules(filename)
	result.HashTag = ExtractHashTag(filename)
	return result
}

// providerHashTag applies the field priority rule: the specific crc32 field
// beats the legacy hash field, and both pass through the same normalization
// so stored values are indistinguishable by origin.
func providerHashTag(raw ProviderResult) string {
	if tag := NormalizeHashTag(raw.CRC32); tag != "" {
		return tag
	}
	return NormalizeHashTag(raw.Hash)
}
