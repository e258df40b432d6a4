// Package slug derives canonical page identifiers from titles and link text.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining diacritical marks after NFD decomposition,
// so "Café" and "Cafe" normalize to the same slug.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize converts arbitrary text into its canonical slug form: lowercase,
// diacritics stripped, punctuation removed, whitespace joined with hyphens.
//
// The function is total (never fails on any input), idempotent, and
// case-insensitive. An empty result is returned as-is; fallback identifiers
// for empty slugs are the caller's responsibility.
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))

	if decomposed, _, err := transform.String(stripMarks, s); err == nil {
		s = decomposed
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' {
			b.WriteRune(r)
		}
	}

	// Whitespace runs become a single hyphen, then hyphen runs collapse.
	fields := strings.FieldsFunc(b.String(), unicode.IsSpace)
	s = strings.Join(fields, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}
