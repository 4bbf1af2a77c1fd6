// Package source contains the adapters that pull raw items from external sites.
//
// AN ADAPTER IS DELIBERATELY DUMB:
// It fetches, extracts, and returns what it found. It does not normalise
// titles, deduplicate, or touch the store; the ingest package owns all of
// that. This keeps each adapter small enough to test against a canned
// httptest fixture.
//
// Every concrete adapter satisfies the same two-method interface, so the
// aggregator can fan out over a list of them without knowing which site is
// behind each one.
package source

import (
	"errors"
	"context"
	"fmt"
)

// RawItem is one entry as the site presented it. Nothing is guaranteed to be
// non-empty; Published is whatever string the site used.
type RawItem struct {
	Title        string
	URL          string
	Published    string
	Summary      string
	ThumbnailURL string
}

// Adapter fetches items from one external site.
//
// selector narrows what to fetch and its meaning is adapter-specific: a listing
// path for the scrapers, a feed URL for RSS, a category ID for the recipe API.
// An empty selector means "the adapter's default".
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, selector string) ([]RawItem, error)
}

// ErrBudgetExceeded is the cancellation cause a caller attaches when its own
// deadline over several sources ran out. A source cut off this way was not
// slow itself, so Guard does not count it against the site.
var ErrBudgetExceeded = errors.New("fan-out budget exceeded")

// Failure wraps any error an adapter returns with the adapter name and the
// step that failed, so one log line says everything.
type Failure struct {
	Source string
	Op     string // "fetch", "parse", "decode"
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("source %s: %s: %v", f.Source, f.Op, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// HTTPError is returned for a non-2xx response.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

func fail(source, op string, err error) error {
	return &Failure{Source: source, Op: op, Err: err}
}
