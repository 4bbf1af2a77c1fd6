package tokenize

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnglish_Tokenize(t *testing.T) {
	tok := NewEnglish()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "   \t\n", []string{}},
		{"stop words dropped", "the and of", []string{}},
		{"numbers dropped", "2025 100", []string{}},
		{"stems and lower-cases", "Brewing", []string{"brew"}},
		{"keeps duplicates", "brewing brew", []string{"brew", "brew"}},
		{"punctuation splits", "brew,brew!", []string{"brew", "brew"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tok.Tokenize(tt.text))
		})
	}
}

func TestEnglish_Deterministic(t *testing.T) {
	tok := NewEnglish()
	text := "Pour over brewing guide for the espresso beginner"
	assert.Equal(t, tok.Tokenize(text), tok.Tokenize(text))
}

func TestJapanese_KeepsContentWords(t *testing.T) {
	tok, err := NewJapanese()
	require.NoError(t, err)

	terms := tok.Tokenize("コーヒーを淹れる")
	assert.Contains(t, terms, "コーヒー")
	assert.NotContains(t, terms, "を")

	assert.Empty(t, tok.Tokenize("  "))
}

func TestJapanese_LatinWordsMatchEnglish(t *testing.T) {
	tok, err := NewDefault()
	require.NoError(t, err)

	en := tok.Tokenize("Docker containers brewing")
	ja := tok.Tokenize("Docker containers brewing 入門")

	assert.Equal(t, []string{"docker", "contain", "brew"}, en)
	assert.Subset(t, ja, en)
	assert.Contains(t, ja, "入門")
	assert.NotContains(t, ja, "containers")
	assert.NotContains(t, ja, "brewing")
}

func TestJapanese_LatinStopWordsAndNumbersDropped(t *testing.T) {
	tok, err := NewJapanese()
	require.NoError(t, err)

	terms := tok.Tokenize("the Dockerで2025年")
	assert.Contains(t, terms, "docker")
	assert.NotContains(t, terms, "the")
	assert.NotContains(t, terms, "2025")
}

func TestJapanese_ConcurrentUse(t *testing.T) {
	tok, err := NewJapanese()
	require.NoError(t, err)

	want := tok.Tokenize("東京でサッカーの試合を見た")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, tok.Tokenize("東京でサッカーの試合を見た"))
		}()
	}
	wg.Wait()
}

func TestMixed_RoutesByScript(t *testing.T) {
	ja := Func(func(string) []string { return []string{"ja"} })
	en := Func(func(string) []string { return []string{"en"} })
	m := NewMixed(ja, en)

	assert.Equal(t, []string{"ja"}, m.Tokenize("Go言語入門"))
	assert.Equal(t, []string{"ja"}, m.Tokenize("カタカナ"))
	assert.Equal(t, []string{"en"}, m.Tokenize("Go generics"))
	assert.Equal(t, []string{}, m.Tokenize(" "))
}

func TestFunc(t *testing.T) {
	f := Func(strings.Fields)
	assert.Equal(t, []string{"a", "b"}, f.Tokenize("a b"))
}
