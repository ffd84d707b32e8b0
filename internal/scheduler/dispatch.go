package scheduler

import (
	"context"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// WorkUnit carries only identifiers, not a snapshot of entity state.
// Processors re-fetch fresh rows so a unit delivered late or twice cannot act
// on stale data.
type WorkUnit struct {
	ItemID uuid.UUID
	UserID uuid.UUID
}

// Dispatcher fans a batch of due items out into independently processed,
// per-user-throttled, retried units of work.
type Dispatcher struct {
	workers  int
	throttle *Throttle
	retry    RetryPolicy
}

func NewDispatcher(workers int, throttle *Throttle, retry RetryPolicy) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		workers:  workers,
		throttle: throttle,
		retry:    retry,
	}
}

// Dispatch processes every unit on a bounded worker pool and blocks until all
// are done. Failures are isolated: a unit that exhausts its retries is logged
// on the operational error path and stays due for the job's next firing,
// while its siblings proceed.
func (d *Dispatcher) Dispatch(ctx context.Context, job string, units []WorkUnit, process func(context.Context, WorkUnit) error) {
	var g errgroup.Group
	g.SetLimit(d.workers)

	for _, unit := range units {
		unit := unit
		g.Go(func() error {
			if err := d.throttle.Wait(ctx, unit.UserID); err != nil {
				log.Printf("%s: throttle wait for user %s: %v", job, unit.UserID, err)
				return nil
			}
			err := d.retry.Do(ctx, func() error {
				return process(ctx, unit)
			})
			if err != nil {
				log.Printf("%s: giving up on item %s (user %s): %v", job, unit.ItemID, unit.UserID, err)
			}
			return nil
		})
	}

	g.Wait()
}
