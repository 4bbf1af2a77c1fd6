package tokenize

import (
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Content parts of speech kept by the Japanese tokenizer.
// Particles, auxiliaries and symbols are dropped.
var contentPOS = map[string]bool{
	"名詞":  true, // noun
	"動詞":  true, // verb
	"形容詞": true, // adjective
}

// Japanese tokenizes text with kagome's morphological analyser and the IPA
// dictionary. Each kept morpheme contributes its dictionary (base) form, so
// inflected verbs like "淹れた" and "淹れる" land on the same term.
//
// Morphemes with no kana or kanji ("Docker", "containers") go through the
// English stemmer instead, so an English word yields the same term whether
// it appears in a Japanese title or an English one.
type Japanese struct {
	t     *tokenizer.Tokenizer
	latin English
}

// NewJapanese loads the IPA dictionary and builds the analyser.
// Loading the dictionary is the expensive part; build one and share it.
func NewJapanese() (*Japanese, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("tokenize: building japanese tokenizer: %w", err)
	}
	return &Japanese{t: t, latin: NewEnglish()}, nil
}

func (j *Japanese) Tokenize(text string) []string {
	if isBlank(text) {
		return []string{}
	}

	tokens := j.t.Tokenize(text)
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !hasJapanese(tok.Surface) {
			terms = append(terms, j.latin.Tokenize(tok.Surface)...)
			continue
		}

		pos := tok.POS()
		if len(pos) == 0 || !contentPOS[pos[0]] {
			continue
		}

		term, ok := tok.BaseForm()
		if !ok || term == "" || term == "*" {
			term = tok.Surface
		}
		term = strings.ToLower(strings.TrimSpace(term))
		if !isMeaningful(term) {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}
