package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sakif/news-curator/internal/metrics"
	"github.com/sakif/news-curator/internal/repository"
)

// Retention keeps the corpus under a size cap by hard-deleting the oldest
// documents: undated first, then by published time, then by insertion order.
type Retention struct {
	docs   repository.DocumentRepository
	logger *slog.Logger

	// Count-then-delete is two statements. Two concurrent passes over the same
	// filter would both see the overflow and evict it twice, so passes are
	// serialised.
	mu sync.Mutex
}

// NewRetention creates a Retention over docs.
func NewRetention(docs repository.DocumentRepository, logger *slog.Logger) *Retention {
	return &Retention{docs: docs, logger: logger}
}

// Enforce evicts documents matching f until at most limit remain and returns
// how many were removed. limit <= 0 disables the cap.
func (r *Retention) Enforce(ctx context.Context, limit int, f repository.Filter) (int, error) {
	if limit <= 0 {
		return 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	count, err := r.docs.Count(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("ingest: counting corpus: %w", err)
	}
	if count <= limit {
		return 0, nil
	}

	evicted, err := r.docs.DeleteOldest(ctx, count-limit, f)
	if err != nil {
		return 0, fmt.Errorf("ingest: evicting %d documents: %w", count-limit, err)
	}

	metrics.DocumentsEvictedTotal.WithLabelValues(categoryLabel(f)).Add(float64(evicted))
	r.logger.Info("retention cap enforced",
		slog.String("category", categoryLabel(f)),
		slog.Int("limit", limit),
		slog.Int("before", count),
		slog.Int("evicted", evicted),
	)
	return evicted, nil
}

func categoryLabel(f repository.Filter) string {
	if f.Category == "" {
		return "all"
	}
	return f.Category.String()
}
