// Package textnorm provides the text normalization shared by zone extraction
// and the keyword classifiers. All keyword matching in this project runs on
// uppercased, accent-folded text so that the noisy text layer of scanned work
// orders compares reliably against configured keywords.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// Clean collapses whitespace runs to a single space, folds apostrophe
// variants to the ASCII apostrophe and trims the result.
func Clean(s string) string {
	s = apostrophes.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Upper is Clean followed by uppercasing.
func Upper(s string) string {
	return strings.ToUpper(Clean(s))
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldAccents strips diacritics: "Procédure d'Exécution" becomes
// "Procedure d'Execution". Input that cannot be transformed is returned
// unchanged rather than truncated.
func FoldAccents(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return out
}

// Key normalizes a string for whole-word keyword matching: uppercase, fold
// accents, collapse every non-alphanumeric run to a single space and pad the
// result with boundary spaces. Two keys compare with strings.Contains without
// false positives across word boundaries.
func Key(s string) string {
	s = strings.ToUpper(FoldAccents(s))
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(' ')
	space := true
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	if !space {
		b.WriteByte(' ')
	}
	return b.String()
}

// CompactLen reports the length of s with all whitespace removed, on the
// accent-folded form. Used by the photo heuristic to measure how much real
// text a page carries.
func CompactLen(s string) int {
	n := 0
	for _, r := range FoldAccents(s) {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
