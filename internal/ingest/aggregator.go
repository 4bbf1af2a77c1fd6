// Package ingest pulls items from the source adapters, stores the new ones
// and answers with a sample of the corpus.
//
// ONE INGEST, STEP BY STEP:
//
//  1. Fan out: every route for the category runs in its own goroutine with
//     its own timeout, all under one overall budget. A failing site logs,
//     counts, and contributes nothing; it never cancels its siblings. A site
//     still busy at its deadline is abandoned and its late answer dropped.
//  2. Merge and normalise: trim fields, default the title, parse the date,
//     drop items without a URL, keep the first item per URL.
//  3. Persist (stored categories only): insert what the store has not seen.
//     A concurrent ingest may win the race for a URL; its Conflict error just
//     means "already stored".
//  4. Retention: trim the category back under the cap.
//  5. Answer: a random sample of the stored category. Live categories skip
//     3 to 5 and answer with the fresh items themselves.
//
// When no adapter answers at all the result is empty and steps 3 to 5 are
// skipped.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/news-curator/internal/apperror"
	"github.com/sakif/news-curator/internal/metrics"
	"github.com/sakif/news-curator/internal/model"
	"github.com/sakif/news-curator/internal/repository"
	"github.com/sakif/news-curator/internal/source"
)

// Route binds an adapter to the selector it is called with for one category.
type Route struct {
	Adapter  source.Adapter
	Selector string
}

// Routes lists the routes per category. It is fixed at startup.
type Routes map[model.Category][]Route

// Config holds the ingestion knobs.
type Config struct {
	PerSourceTimeout time.Duration
	Budget           time.Duration // wall-clock ceiling for the whole fan-out
	SampleSize       int
	MaxCorpusSize    int // per category; <= 0 disables retention
	Parallelism      int // concurrent adapters; <= 0 means one per route
}

// DefaultConfig returns the settings the service runs with out of the box.
func DefaultConfig() Config {
	return Config{
		PerSourceTimeout: 10 * time.Second,
		Budget:           20 * time.Second,
		SampleSize:       15,
		MaxCorpusSize:    500,
		Parallelism:      0,
	}
}

// Aggregator runs ingests. It is safe for concurrent use.
type Aggregator struct {
	routes    Routes
	docs      repository.DocumentRepository
	retention *Retention
	cfg       Config
	logger    *slog.Logger

	randMu sync.Mutex
	rand   *rand.Rand
}

// Option customises an Aggregator.
type Option func(*Aggregator)

// WithRand makes sampling reproducible.
func WithRand(r *rand.Rand) Option {
	return func(a *Aggregator) { a.rand = r }
}

// NewAggregator creates an Aggregator.
func NewAggregator(routes Routes, docs repository.DocumentRepository, cfg Config, logger *slog.Logger, opts ...Option) *Aggregator {
	def := DefaultConfig()
	if cfg.PerSourceTimeout <= 0 {
		cfg.PerSourceTimeout = def.PerSourceTimeout
	}
	if cfg.Budget <= 0 {
		cfg.Budget = def.Budget
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = def.SampleSize
	}

	a := &Aggregator{
		routes:    routes,
		docs:      docs,
		retention: NewRetention(docs, logger),
		cfg:       cfg,
		logger:    logger,
		rand:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ingest runs one ingest for category and returns up to sampleSize documents.
// sampleSize <= 0 uses the configured default.
//
// Source failures never surface as errors: if every site fails the result is
// empty and the corpus is unchanged. Store failures do surface.
func (a *Aggregator) Ingest(ctx context.Context, category model.Category, sampleSize int) ([]model.Document, error) {
	if sampleSize <= 0 {
		sampleSize = a.cfg.SampleSize
	}

	batch, succeeded := a.collect(ctx, category)
	if succeeded == 0 {
		// Nothing answered: leave the corpus alone and say so with an empty result.
		a.logger.Warn("every source failed", slog.String("category", category.String()))
		return []model.Document{}, nil
	}

	if !category.Persisted() {
		metrics.ItemsIngestedTotal.WithLabelValues(category.String(), "live").Add(float64(len(batch)))
		for i := range batch {
			batch[i].ID = model.LivePrefix + strconv.Itoa(i+1)
		}
		return batch, nil
	}

	inserted, duplicates, err := a.store(ctx, batch)
	if err != nil {
		return nil, err
	}

	filter := repository.Filter{Category: category}
	if _, err := a.retention.Enforce(ctx, a.cfg.MaxCorpusSize, filter); err != nil {
		return nil, err
	}

	corpus, err := a.docs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ingest: listing %s corpus: %w", category, err)
	}

	a.logger.Info("ingest completed",
		slog.String("category", category.String()),
		slog.Int("fetched", len(batch)),
		slog.Int("inserted", inserted),
		slog.Int("duplicates", duplicates),
		slog.Int("corpus", len(corpus)),
	)

	return a.sample(corpus, sampleSize), nil
}

// collect fans out over the category's routes and returns the merged,
// normalised, deduplicated batch plus the number of adapters that answered.
func (a *Aggregator) collect(ctx context.Context, category model.Category) ([]model.Document, int) {
	routes := append([]Route(nil), a.routes[category]...)
	if len(routes) == 0 {
		a.logger.Warn("no sources configured", slog.String("category", category.String()))
		return []model.Document{}, 0
	}
	// merge order is by source name so the first-wins dedup is deterministic
	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].Adapter.Name() < routes[j].Adapter.Name()
	})

	budgetCtx, cancel := context.WithTimeoutCause(ctx, a.cfg.Budget, source.ErrBudgetExceeded)
	defer cancel()

	results := make([][]source.RawItem, len(routes))
	answered := make([]bool, len(routes))

	// Tasks always return nil: a failing site must not cancel the others.
	var g errgroup.Group
	if a.cfg.Parallelism > 0 {
		g.SetLimit(a.cfg.Parallelism)
	}
	for i, r := range routes {
		g.Go(func() error {
			results[i], answered[i] = a.fetch(budgetCtx, r)
			return nil
		})
	}
	_ = g.Wait()

	succeeded := 0
	seen := make(map[string]bool)
	batch := make([]model.Document, 0)
	for i, items := range results {
		if answered[i] {
			succeeded++
		}
		name := routes[i].Adapter.Name()
		for _, it := range items {
			doc, ok := normalize(it, category, name)
			if !ok || seen[doc.URL] {
				continue
			}
			seen[doc.URL] = true
			batch = append(batch, doc)
		}
	}
	return batch, succeeded
}

// fetchResult carries one adapter's answer back to fetch.
type fetchResult struct {
	items []source.RawItem
	err   error
}

// fetch calls one adapter under its own timeout and swallows the failure.
//
// The adapter runs in its own goroutine and fetch waits for it or for ctx,
// whichever comes first. An adapter that ignores ctx is abandoned at the
// deadline: its goroutine finishes on its own and the late answer lands in
// the buffered channel, where nobody reads it.
func (a *Aggregator) fetch(ctx context.Context, r Route) ([]source.RawItem, bool) {
	name := r.Adapter.Name()
	ctx, cancel := context.WithTimeout(ctx, a.cfg.PerSourceTimeout)
	defer cancel()

	start := time.Now()
	// The budget may already be gone while this route waited for a slot.
	if ctx.Err() != nil {
		a.abandon(ctx, r, start)
		return nil, false
	}

	done := make(chan fetchResult, 1)
	go func() {
		items, err := r.Adapter.Fetch(ctx, r.Selector)
		done <- fetchResult{items: items, err: err}
	}()

	var res fetchResult
	select {
	case res = <-done:
	case <-ctx.Done():
		a.abandon(ctx, r, start)
		return nil, false
	}
	metrics.SourceFetchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if res.err != nil {
		status := "error"
		switch {
		case source.IsOpen(res.err):
			status = "open"
		case errors.Is(res.err, context.DeadlineExceeded):
			status = timeoutStatus(ctx)
		}
		metrics.SourceFetchesTotal.WithLabelValues(name, status).Inc()
		a.logger.Error("source fetch failed",
			slog.String("source", name),
			slog.String("selector", r.Selector),
			slog.String("error", res.err.Error()),
		)
		return nil, false
	}

	metrics.SourceFetchesTotal.WithLabelValues(name, "ok").Inc()
	return res.items, true
}

// abandon records a route whose deadline passed before it answered.
func (a *Aggregator) abandon(ctx context.Context, r Route, start time.Time) {
	name := r.Adapter.Name()
	metrics.SourceFetchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	metrics.SourceFetchesTotal.WithLabelValues(name, timeoutStatus(ctx)).Inc()
	a.logger.Warn("source abandoned",
		slog.String("source", name),
		slog.String("selector", r.Selector),
		slog.String("error", context.Cause(ctx).Error()),
	)
}

// timeoutStatus tells the overall budget apart from the per-source deadline.
func timeoutStatus(ctx context.Context) string {
	if errors.Is(context.Cause(ctx), source.ErrBudgetExceeded) {
		return "budget"
	}
	return "timeout"
}

// store inserts the documents the corpus does not have yet.
func (a *Aggregator) store(ctx context.Context, batch []model.Document) (inserted, duplicates int, err error) {
	for i := range batch {
		doc := &batch[i]

		existing, err := a.docs.FindByURL(ctx, doc.URL)
		if err != nil {
			return inserted, duplicates, fmt.Errorf("ingest: looking up %s: %w", doc.URL, err)
		}
		if existing != nil {
			duplicates++
			continue
		}

		if err := a.docs.Insert(ctx, doc); err != nil {
			if errors.Is(err, apperror.ErrConflict) {
				duplicates++
				continue
			}
			return inserted, duplicates, fmt.Errorf("ingest: storing %s: %w", doc.URL, err)
		}
		inserted++
	}

	cat := "unknown"
	if len(batch) > 0 {
		cat = batch[0].Category.String()
	}
	metrics.ItemsIngestedTotal.WithLabelValues(cat, "inserted").Add(float64(inserted))
	metrics.ItemsIngestedTotal.WithLabelValues(cat, "duplicate").Add(float64(duplicates))
	return inserted, duplicates, nil
}

// sample returns min(n, len(docs)) documents picked uniformly without replacement.
func (a *Aggregator) sample(docs []model.Document, n int) []model.Document {
	if n > len(docs) {
		n = len(docs)
	}

	a.randMu.Lock()
	perm := a.rand.Perm(len(docs))
	a.randMu.Unlock()

	out := make([]model.Document, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, docs[idx])
	}
	return out
}

// normalize turns a raw item into a document. ok is false for items that
// cannot be identified (no URL).
func normalize(it source.RawItem, category model.Category, sourceName string) (model.Document, bool) {
	url := strings.TrimSpace(it.URL)
	if url == "" {
		return model.Document{}, false
	}

	title := strings.TrimSpace(it.Title)
	if title == "" {
		title = model.DefaultTitle
	}
	published := strings.TrimSpace(it.Published)

	return model.Document{
		URL:          url,
		Title:        title,
		Published:    published,
		PublishedAt:  model.ParsePublished(published),
		Summary:      strings.TrimSpace(it.Summary),
		ThumbnailURL: strings.TrimSpace(it.ThumbnailURL),
		Sentiment:    model.DefaultSentiment,
		Category:     category,
		Source:       sourceName,
	}, true
}
