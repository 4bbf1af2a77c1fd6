// Package tokenize turns document text into the terms the vector space counts.
//
// A Tokenizer is a pure function of its input: the same text always yields the
// same terms in the same order, duplicates included (term frequency depends on
// them). Every implementation here is safe for concurrent use.
package tokenize

import (
	"strings"
	"unicode"
)

// Tokenizer splits text into terms.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Func adapts a plain function to the Tokenizer interface.
// Mostly useful in tests: tokenize.Func(strings.Fields).
type Func func(text string) []string

func (f Func) Tokenize(text string) []string { return f(text) }

// isBlank reports whether text holds nothing but whitespace.
func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// isMeaningful reports whether a term carries at least one letter.
// Pure punctuation or digit runs ("2025", "---") add noise to the vocabulary.
func isMeaningful(term string) bool {
	for _, r := range term {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// hasJapanese reports whether text contains kana or kanji.
func hasJapanese(text string) bool {
	for _, r := range text {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}
