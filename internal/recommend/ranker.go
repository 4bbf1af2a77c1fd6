// Package recommend ranks unfavorited documents by how close they sit to a
// user's taste, where taste is the centroid of the documents they favorited.
//
// THE PIPELINE:
//
//	favorites + corpus
//	    → candidates = corpus − favorites
//	    → one TF-IDF space over (candidates, then favorites)
//	    → profile   = mean of the favorite vectors
//	    → score     = cosine(profile, candidate)
//	    → sort by score desc, document ID asc; keep top N
//
// Building candidates and favorites into ONE space matters: IDF weights and
// vocabulary indices are only comparable inside a single build.
package recommend

import (
	"sort"

	"github.com/sakif/news-curator/internal/model"
	"github.com/sakif/news-curator/internal/vectorspace"
)

// DefaultTopN is used when a caller asks for zero or fewer results.
const DefaultTopN = 10

// Candidate is a document paired with its vector in the current space.
type Candidate struct {
	Document model.Document
	Vector   vectorspace.Vector
}

// Scored is a ranked candidate.
type Scored struct {
	Document model.Document `json:"document"`
	Score    float64        `json:"score"`
}

// BuildProfile averages the favorite vectors.
// ok is false when there is nothing to average.
func BuildProfile(vectors []vectorspace.Vector) (profile vectorspace.Vector, ok bool) {
	if len(vectors) == 0 {
		return nil, false
	}
	return vectorspace.Mean(vectors), true
}

// Rank scores every candidate against profile and returns the best topN.
// topN <= 0 returns every candidate. The output never aliases the input.
func Rank(profile vectorspace.Vector, candidates []Candidate, topN int) []Scored {
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, Scored{
			Document: c.Document,
			Score:    vectorspace.Cosine(profile, c.Vector),
		})
	}

	// Ties are broken on ID so two runs over the same snapshot agree exactly.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Document.ID < scored[j].Document.ID
	})

	if topN > 0 && len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}
