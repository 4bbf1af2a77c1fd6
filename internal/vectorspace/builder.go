// Package vectorspace builds TF-IDF vectors for a snapshot of documents.
//
// HOW A SPACE IS BUILT:
//
//	tf(t, d)  = number of times term t occurs in document d
//	idf(t)    = ln((1 + n) / (1 + df(t))) + 1
//	w(t, d)   = tf(t, d) * idf(t), then each row scaled to unit length
//
// n is the number of documents in the snapshot and df(t) the number of
// documents containing t. The "+1"s keep idf positive even for a term that
// appears everywhere, so no observed term is silently zeroed out.
//
// A Space only has meaning for the snapshot it was built from: the vocabulary
// indices of two different builds are unrelated.
package vectorspace

import (
	"math"
	"sort"

	"github.com/sakif/news-curator/internal/tokenize"
)

// Space is the result of one build.
// Vectors[i] belongs to the i-th input text; Vocabulary[j] names index j.
type Space struct {
	Vocabulary []string
	Vectors    []Vector
}

// Dim returns the number of distinct terms in the space.
func (s Space) Dim() int { return len(s.Vocabulary) }

// Builder turns texts into a Space.
type Builder struct {
	Tokenizer tokenize.Tokenizer

	// Normalize scales every row to unit L2 length.
	Normalize bool
}

// NewBuilder returns a Builder with row normalisation on.
func NewBuilder(t tokenize.Tokenizer) *Builder {
	return &Builder{Tokenizer: t, Normalize: true}
}

// Build tokenizes every text and weights the terms.
// An empty input yields an empty Space; an empty text yields an empty Vector.
func (b *Builder) Build(texts []string) Space {
	if len(texts) == 0 {
		return Space{Vocabulary: []string{}, Vectors: []Vector{}}
	}

	// term counts per document, and document frequency per term
	counts := make([]map[string]int, len(texts))
	df := make(map[string]int)
	for i, text := range texts {
		c := make(map[string]int)
		for _, term := range b.Tokenizer.Tokenize(text) {
			c[term]++
		}
		for term := range c {
			df[term]++
		}
		counts[i] = c
	}

	// The vocabulary is sorted so indices never depend on map iteration order.
	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	index := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	n := float64(len(texts))
	for i, term := range vocab {
		index[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	vectors := make([]Vector, len(texts))
	for i, c := range counts {
		v := make(Vector, 0, len(c))
		for term, tf := range c {
			j := index[term]
			v = append(v, Entry{Index: j, Weight: float64(tf) * idf[j]})
		}
		sort.Slice(v, func(a, b int) bool { return v[a].Index < v[b].Index })

		if b.Normalize {
			if norm := Norm(v); norm > 0 {
				for k := range v {
					v[k].Weight /= norm
				}
			}
		}
		vectors[i] = v
	}

	return Space{Vocabulary: vocab, Vectors: vectors}
}
