package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Throttle caps how fast work proceeds per owning-user key. Excess work waits
// for capacity instead of being dropped, and one user's backlog never slows
// another user down.
type Throttle struct {
	mu       sync.Mutex
	limiters map[uuid.UUID]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewThrottle allows ops operations per key per rolling window.
func NewThrottle(ops int, window time.Duration) *Throttle {
	return &Throttle{
		limiters: make(map[uuid.UUID]*rate.Limiter),
		limit:    rate.Limit(float64(ops) / window.Seconds()),
		burst:    ops,
	}
}

// Wait blocks until the key has capacity or the context is cancelled.
func (t *Throttle) Wait(ctx context.Context, key uuid.UUID) error {
	return t.limiterFor(key).Wait(ctx)
}

func (t *Throttle) limiterFor(key uuid.UUID) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	limiter, ok := t.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(t.limit, t.burst)
		t.limiters[key] = limiter
	}
	return limiter
}
