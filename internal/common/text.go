package common

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// FoldName case-folds, trims, and collapses whitespace in a record name.
// It is the single definition of "same name" across the pipeline.
func FoldName(s string) string {
	s = norm.NFKC.String(s)
	s = folder.String(s)
	s = strings.ReplaceAll(s, "ё", "е")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeText lower-cases, strips punctuation, and collapses whitespace.
// Letters and digits survive; everything else becomes a separator.
func NormalizeText(s string) string {
	s = norm.NFKC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// SanitizeUTF8 drops invalid byte sequences and NUL characters.
func SanitizeUTF8(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.ReplaceAll(s, "\x00", "")
}
