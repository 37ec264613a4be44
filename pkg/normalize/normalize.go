// Package normalize folds Portuguese search text into the canonical form used
// by every index in pcdserve.
//
// Two folds are provided:
//
//   - Text lowercases, strips diacritics and turns punctuation into spaces.
//     This is the form stored in the keyword, content and location indices.
//   - Fold lowercases and strips diacritics but keeps punctuation, so that
//     code-shaped tokens such as "F84.0" survive for the CID matcher.
//
// All functions are pure and safe for concurrent use.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks returns a fresh transformer; transform.Chain keeps internal
// buffers and must not be shared between goroutines.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
}

// Fold lowercases s and removes combining diacritical marks.
// Punctuation and whitespace are left untouched.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(stripMarks(), strings.ToLower(s))
	if err != nil {
		// transform only fails on internal buffer errors; fall back to the
		// lowercased input rather than dropping the query.
		return strings.ToLower(s)
	}
	return folded
}

// Text returns the canonical search form of s: lowercase, no diacritics,
// every rune that is not a letter, digit or whitespace replaced with a space,
// and leading/trailing whitespace trimmed.
// "Educação!" and "educacao" both normalize to "educacao".
func Text(s string) string {
	folded := Fold(s)
	if folded == "" {
		return ""
	}
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		// whitespace and punctuation alike become a plain space
		return ' '
	}, folded)
	return strings.TrimSpace(mapped)
}

// Key is Text with internal whitespace runs collapsed to one space.
// Index keys and phrase probes use this form: "Art. 84 LBI" -> "art 84 lbi".
func Key(s string) string {
	return strings.Join(strings.Fields(Text(s)), " ")
}

// Join normalizes every part and joins the non-empty results with a single space.
func Join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := Text(p); n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}
