package tokenize

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// English tokenizes Latin-script text: split on anything that is not a letter
// or digit, lower-case, drop stop words, then reduce each word to its
// Snowball (Porter2) stem so "brewing" and "brew" count as one term.
type English struct{}

// NewEnglish returns the English tokenizer. It holds no state.
func NewEnglish() English { return English{} }

func (English) Tokenize(text string) []string {
	if isBlank(text) {
		return []string{}
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	terms := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, "'")
		if !isMeaningful(w) || english.IsStopWord(w) {
			continue
		}
		stem := english.Stem(w, false)
		if stem == "" {
			continue
		}
		terms = append(terms, stem)
	}
	return terms
}
