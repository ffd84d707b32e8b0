package scheduler

import (
	"context"
	"errors"
	"time"
)

// ErrInvariant marks a per-item failure that retrying cannot fix, such as a
// non-positive amount reaching a processor. The item is logged and left for
// manual inspection; no store mutation has happened.
var ErrInvariant = errors.New("invariant violation")

// RetryPolicy is the backoff applied at the dispatch boundary. Keeping it a
// plain value decouples retry behavior from the processors, which stay
// synchronously testable.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
	}
}

// Delay returns the backoff before the given retry (attempt is zero-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 0; i < attempt; i++ {
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
	return delay
}

// Do runs fn up to MaxAttempts times with exponential backoff between
// attempts. Invariant violations and context cancellation stop retrying
// immediately.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if errors.Is(err, ErrInvariant) {
			return err
		}
		if attempt == p.MaxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay(attempt)):
		}
	}
	return err
}
