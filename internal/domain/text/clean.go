// Package text normalizes free-form item descriptions before embedding.
package text

import (
	"strings"
	"unicode"
)

// Clean lowercases s, drops everything that is not a letter, digit or space,
// and collapses runs of whitespace into single spaces.
func Clean(s string) string {
	return strings.Join(Tokens(s), " ")
}

// Tokens returns the whitespace-separated tokens of the cleaned form of s.
func Tokens(s string) []string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Fields(b.String())
}
