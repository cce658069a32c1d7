package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses internal whitespace runs
// to a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeTitle cleans free-text titles (room titles, hotel names).
func NormalizeTitle(title string) string {
	return TrimAndNormalize(title)
}

// NormalizeReference cleans a gateway correlation key. References are
// opaque tokens; whitespace anywhere in them is a copy-paste artifact.
func NormalizeReference(ref string) string {
	return strings.Join(strings.Fields(ref), "")
}
