package source

import (
	"context"
	"sync/atomic"
	"time"
)

// Static is an in-memory adapter for tests and offline runs.
// It returns a copy of Items (or Err) and counts its calls.
type Static struct {
	ID    string
	Items []RawItem
	Err   error
	// Delay simulates a slow site. Fetch honours ctx while waiting.
	Delay time.Duration

	calls atomic.Int64
}

var _ Adapter = (*Static)(nil)

func (s *Static) Name() string { return s.ID }

func (s *Static) Fetch(ctx context.Context, _ string) ([]RawItem, error) {
	s.calls.Add(1)

	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, fail(s.ID, "fetch", ctx.Err())
		case <-t.C:
		}
	}

	if s.Err != nil {
		return nil, fail(s.ID, "fetch", s.Err)
	}
	out := make([]RawItem, len(s.Items))
	copy(out, s.Items)
	return out, nil
}

// Calls returns how many times Fetch ran.
func (s *Static) Calls() int { return int(s.calls.Load()) }
