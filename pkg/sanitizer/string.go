package sanitizer

import (
	"strings"
	"unicode"
)

const maxReasonLength = 500

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

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func stripControl(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

func capLength(s string) string {
	runes := []rune(s)
	if len(runes) > maxReasonLength {
		return string(runes[:maxReasonLength])
	}
	return s
}

// NormalizeReason cleans a free-text visit reason before it is stored.
func NormalizeReason(reason string) string {
	p := Pipeline{
		stripControl,
		TrimAndNormalize,
		capLength,
	}
	return p.Apply(reason)
}
