package parser

import (
	"regexp"
	"strings"
)

var (
	hexTagRe        = regexp.MustCompile(`^[0-9A-F]{8}$`)
	bracketedTagRe  = regexp.MustCompile(`\[([0-9A-Fa-f]{8})\]`)
	standaloneTagRe = regexp.MustCompile(`\b([0-9A-Fa-f]{8})\b`)
)

// NormalizeHashTag canonicalizes a filename-asserted hash token: trim,
// strip one surrounding bracket pair, uppercase. Anything that is not then
// exactly eight hex characters is discarded; a malformed tag is an absent
// tag, never an error.
func NormalizeHashTag(raw string) string {
	tag := strings.TrimSpace(raw)
	if strings.HasPrefix(tag, "[") && strings.HasSuffix(tag, "]") && len(tag) >= 2 {
		tag = tag[1 : len(tag)-1]
	}
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if !hexTagRe.MatchString(tag) {
		return ""
	}
	return tag
}

// ExtractHashTag scans a filename for an 8-character hexadecimal token,
// bracketed or bare, and returns it normalized. Bracketed tags win over
// bare ones so release-group checksum tags are preferred.
func ExtractHashTag(filename string) string {
	if match := bracketedTagRe.FindStringSubmatch(filename); match != nil {
		return NormalizeHashTag(match[1])
	}
	if match := standaloneTagRe.FindStringSubmatch(filename); match != nil {
		return NormalizeHashTag(match[1])
	}
	return ""
}
