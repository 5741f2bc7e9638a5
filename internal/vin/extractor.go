package vin

import (
	"strings"
	"unicode"
)

// Length is the fixed size of a normalized VIN.
const Length = 17

// FromText normalizes a typed VIN: whitespace trimmed, uppercased. Anything
// that is not exactly 17 alphanumeric characters is rejected: typed input
// gets no repair, the user can just retype it.
func FromText(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if len(s) != Length {
		return "", false
	}
	for _, r := range s {
		if !isAlnum(r) {
			return "", false
		}
	}
	return s, true
}

// FromOCRText extracts a VIN candidate from noisy OCR output: every
// non-alphanumeric rune is dropped, the remainder uppercased. At least 17
// characters are required; longer output is truncated to the first 17, since
// OCR commonly appends trailing noise after the plate text. Idempotent:
// re-running on its own output returns the same value.
func FromOCRText(raw string) (string, bool) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if isAlnum(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	s := b.String()
	if len(s) < Length {
		return "", false
	}
	return s[:Length], true
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
