package tokenize

// Mixed routes each text to the Japanese analyser when it contains kana or
// kanji and to the English stemmer otherwise. The corpus mixes Japanese
// programming articles with English titles, so this is the default.
// Latin words inside Japanese text are stemmed by Japanese itself.
type Mixed struct {
	japanese Tokenizer
	english  Tokenizer
}

// NewMixed builds a Mixed tokenizer from its two halves.
func NewMixed(japanese, english Tokenizer) *Mixed {
	return &Mixed{japanese: japanese, english: english}
}

// NewDefault builds the Mixed tokenizer backed by kagome and Snowball.
func NewDefault() (*Mixed, error) {
	ja, err := NewJapanese()
	if err != nil {
		return nil, err
	}
	return NewMixed(ja, NewEnglish()), nil
}

func (m *Mixed) Tokenize(text string) []string {
	if isBlank(text) {
		return []string{}
	}
	if hasJapanese(text) {
		return m.japanese.Tokenize(text)
	}
	return m.english.Tokenize(text)
}
