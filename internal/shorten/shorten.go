package shorten

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"shuttle/internal/parser"
)

// Namer proposes shorter names for entries whose destination path would
// exceed the filesystem ceiling. Implementations must honor maxLen.
type Namer interface {
	SuggestShortDirname(ctx context.Context, name string, maxLen int) (string, error)
	SuggestShortFilename(ctx context.Context, name string, maxLen int) (string, error)
}

// Deterministic is the fallback Namer used when no language model is
// configured (or when one fails). It rebuilds a minimal name from the parsed
// show/season/episode, then falls back to plain truncation.
type Deterministic struct{}

// SuggestShortDirname shortens a directory name by truncation.
func (Deterministic) SuggestShortDirname(_ context.Context, name string, maxLen int) (string, error) {
	return truncate(name, maxLen)
}

// SuggestShortFilename shortens a filename, preferring a rebuilt
// "Show S01E02.ext" form over blind truncation.
func (Deterministic) SuggestShortFilename(ctx context.Context, name string, maxLen int) (string, error) {
	result := parser.Parse(ctx, name, nil, 0)
	if result.ShowName != "" && result.Season != nil && result.Episode != nil {
		rebuilt := fmt.Sprintf("%s S%02dE%02d%s",
			result.ShowName, *result.Season, *result.Episode, extension(name))
		if len(rebuilt) <= maxLen {
			return rebuilt, nil
		}
	}
	return truncateFilename(name, maxLen)
}

// truncate cuts a bare name (no extension handling) to maxLen and trims
// trailing separators so the result doesn't end mid-delimiter.
func truncate(name string, maxLen int) (string, error) {
	if maxLen <= 0 {
		return "", errors.New("no room to shorten into")
	}
	if len(name) <= maxLen {
		return name, nil
	}
	shortened := strings.TrimRight(name[:maxLen], " .-_")
	if shortened == "" {
		return "", fmt.Errorf("cannot shorten %q into %d characters", name, maxLen)
	}
	return shortened, nil
}

// truncateFilename truncates the stem while keeping the extension intact.
func truncateFilename(name string, maxLen int) (string, error) {
	ext := extension(name)
	if len(ext) >= maxLen {
		return "", fmt.Errorf("extension alone exceeds %d characters", maxLen)
	}
	stem := strings.TrimSuffix(name, ext)
	shortened, err := truncate(stem, maxLen-len(ext))
	if err != nil {
		return "", err
	}
	return shortened + ext, nil
}

// extension returns the filename extension only when it looks like a real
// one. Release names end in things like ".1080p" that filepath.Ext would
// happily report.
func extension(name string) string {
	ext := filepath.Ext(name)
	if len(ext) < 2 || len(ext) > 5 {
		return ""
	}
	for _, r := range ext[1:] {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isLetter && !isDigit {
			return ""
		}
	}
	return ext
}
