package remote

import (
	"path"
	"strings"
)

// Extensions that are never media payloads. Matched case-insensitively
// against the filename suffix.
var excludedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".nfo":  {},
	".sfv":  {},
}

// Substrings that mark junk entries regardless of extension.
var excludedKeywords = []string{
	"sample",
	"screens",
	"thumbs.db",
	".ds_store",
}

// IsValidMediaFile reports whether a remote filename is worth transferring.
func IsValidMediaFile(name string) bool {
	lower := strings.ToLower(name)
	if _, excluded := excludedExtensions[path.Ext(lower)]; excluded {
		return false
	}
	return !containsExcludedKeyword(lower)
}

// IsValidDirectory reports whether a remote directory should be descended
// into or transferred. Directories have no extension filtering.
func IsValidDirectory(name string) bool {
	return !containsExcludedKeyword(strings.ToLower(name))
}

func containsExcludedKeyword(lower string) bool {
	for _, keyword := range excludedKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
