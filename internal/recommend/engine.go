package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/news-curator/internal/metrics"
	"github.com/sakif/news-curator/internal/model"
	"github.com/sakif/news-curator/internal/repository"
	"github.com/sakif/news-curator/internal/vectorspace"
)

// Engine runs the recommendation pipeline against the corpus store.
// It holds no per-request state; the vector space is rebuilt on every call
// so newly ingested and evicted documents are reflected immediately.
type Engine struct {
	docs    repository.DocumentRepository
	favs    repository.FavoriteRepository
	builder *vectorspace.Builder
	logger  *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(docs repository.DocumentRepository, favs repository.FavoriteRepository, builder *vectorspace.Builder, logger *slog.Logger) *Engine {
	return &Engine{docs: docs, favs: favs, builder: builder, logger: logger}
}

// Recommend returns up to topN unfavorited documents, most similar first.
// A user with no favorites, or a corpus with nothing left to suggest, gets an
// empty (non-nil) slice.
func (e *Engine) Recommend(ctx context.Context, userID string, topN int) ([]model.Document, error) {
	scored, err := e.Score(ctx, userID, topN)
	if err != nil {
		return nil, err
	}

	docs := make([]model.Document, 0, len(scored))
	for _, s := range scored {
		docs = append(docs, s.Document)
	}
	return docs, nil
}

// Score is Recommend with the similarity scores attached.
func (e *Engine) Score(ctx context.Context, userID string, topN int) ([]Scored, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	favorites, err := e.favs.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("recommend: loading favorites: %w", err)
	}
	if len(favorites) == 0 {
		return []Scored{}, nil
	}

	corpus, err := e.docs.List(ctx, repository.Filter{})
	if err != nil {
		return nil, fmt.Errorf("recommend: loading corpus: %w", err)
	}

	favored := make(map[string]bool, len(favorites))
	for _, f := range favorites {
		favored[f.ID] = true
	}
	candidates := make([]model.Document, 0, len(corpus))
	for _, d := range corpus {
		if !favored[d.ID] {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return []Scored{}, nil
	}

	start := time.Now()

	// candidates first, favorites after: the split below depends on this order
	texts := make([]string, 0, len(candidates)+len(favorites))
	for _, d := range candidates {
		texts = append(texts, d.Text())
	}
	for _, d := range favorites {
		texts = append(texts, d.Text())
	}
	space := e.builder.Build(texts)

	profile, ok := BuildProfile(space.Vectors[len(candidates):])
	if !ok {
		return []Scored{}, nil
	}

	pool := make([]Candidate, len(candidates))
	for i, d := range candidates {
		pool[i] = Candidate{Document: d, Vector: space.Vectors[i]}
	}
	ranked := Rank(profile, pool, topN)

	metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	metrics.RecommendSnapshotSize.Observe(float64(len(texts)))
	e.logger.Debug("recommendations ranked",
		slog.String("user_id", userID),
		slog.Int("favorites", len(favorites)),
		slog.Int("candidates", len(candidates)),
		slog.Int("vocabulary", space.Dim()),
		slog.Int("returned", len(ranked)),
	)

	return ranked, nil
}
