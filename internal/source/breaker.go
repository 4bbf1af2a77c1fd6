package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig controls when a Guard stops calling its adapter.
type BreakerConfig struct {
	// ConsecutiveFailures opens the breaker. <= 0 uses 5.
	ConsecutiveFailures uint32
	// Cooldown is how long the breaker stays open before letting one probe through.
	Cooldown time.Duration
}

// Guard wraps an Adapter with a circuit breaker.
//
// A site that is down keeps timing out, and every ingest would otherwise pay
// the full per-source timeout for it. After enough consecutive failures the
// breaker opens and Fetch fails immediately with gobreaker.ErrOpenState until
// the cooldown passes.
type Guard struct {
	next Adapter
	cb   *gobreaker.CircuitBreaker[[]RawItem]
}

var _ Adapter = (*Guard)(nil)

// NewGuard wraps next.
func NewGuard(next Adapter, cfg BreakerConfig, logger *slog.Logger) *Guard {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = time.Minute
	}

	cb := gobreaker.NewCircuitBreaker[[]RawItem](gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("source breaker state changed",
				slog.String("source", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
		// A cancelled caller, or one whose overall budget ran out, says
		// nothing about the site's health. Its own per-source deadline does.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrBudgetExceeded)
		},
	})

	return &Guard{next: next, cb: cb}
}

func (g *Guard) Name() string { return g.next.Name() }

func (g *Guard) Fetch(ctx context.Context, selector string) ([]RawItem, error) {
	items, err := g.cb.Execute(func() ([]RawItem, error) {
		items, err := g.next.Fetch(ctx, selector)
		if err != nil && errors.Is(context.Cause(ctx), ErrBudgetExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrBudgetExceeded, err)
		}
		return items, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fail(g.Name(), "breaker", err)
		}
		return nil, err
	}
	return items, nil
}

// State exposes the breaker state, mostly for tests and health output.
func (g *Guard) State() gobreaker.State { return g.cb.State() }

// IsOpen reports whether err came from an open breaker rather than the site.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
