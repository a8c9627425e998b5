// Package vocab holds the canonical spelling of vocabulary words shared by
// the reference corpus and the word catalog.
package vocab

import (
	"strings"
	"unicode"
)

// Normalize lower-cases word and drops every rune that is not a letter or
// digit, so "Ice-Cream", "ice_cream" and "icecream" are the same word.
// Corpus lookups, archive keys and catalog entries all use this form.
func Normalize(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
