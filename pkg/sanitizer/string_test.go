package sanitizer

import (
	"strings"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t\n  ", ""},
		{"leading and trailing", "  fever  ", "fever"},
		{"internal runs collapse", "chest   pain\t\tand  cough", "chest pain and cough"},
		{"already clean", "routine checkup", "routine checkup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.expected {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeReason(t *testing.T) {
	if got := NormalizeReason("  follow-up\x00 visit \n"); got != "follow-up visit" {
		t.Errorf("NormalizeReason = %q", got)
	}

	long := strings.Repeat("a", 600)
	if got := NormalizeReason(long); len([]rune(got)) != maxReasonLength {
		t.Errorf("long reason not capped, len = %d", len([]rune(got)))
	}
}
