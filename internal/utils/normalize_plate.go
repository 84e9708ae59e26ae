package utils

import (
	"strings"
	"unicode"
)

// NormalizePlate strips spaces and dashes from a licence plate and upper-cases it.
func NormalizePlate(raw string) string {
	normalized := strings.TrimSpace(raw)
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ToUpper(normalized)
	return normalized
}

// NormalizePhone keeps the digits of a phone number and a leading plus sign.
// It returns "" when fewer than 7 digits remain.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)

	var b strings.Builder
	for i, r := range raw {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}

	normalized := b.String()
	if len(strings.TrimPrefix(normalized, "+")) < 7 {
		return ""
	}
	return normalized
}
