// Package textnorm canonicalizes lyric lines for equality comparison.
// Two strings are considered the same utterance iff their normalized forms
// are equal; there is deliberately no fuzzy or edit-distance matching.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldMarks decomposes to NFD, drops combining marks, and recomposes, so
// "Qué" and "que" normalize to the same form.
var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize returns the canonical form of a lyric line: trimmed,
// lower-cased, diacritics folded, punctuation and symbol runes dropped.
// Interior whitespace is preserved as-is. Deterministic and pure.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if folded, _, err := transform.String(foldMarks, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// Equal reports whether two strings normalize to the same utterance.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
