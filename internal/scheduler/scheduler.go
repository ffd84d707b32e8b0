// Package scheduler is the recurring financial event engine: a clock loop
// fires registered jobs on their cadences, each job reads a batch of due
// items from the store and fans them out into throttled, retried,
// independently processed units of work. All coordination between concurrent
// runs goes through the store's transactional guarantees; nothing is cached
// in memory between checks.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/dariachm/finledger/internal/schedule"
)

type job struct {
	name    string
	cadence *schedule.Cadence
	run     func(ctx context.Context) error
	nextRun time.Time
}

type Scheduler struct {
	jobs          []*job
	checkInterval time.Duration
	notifyCh      chan struct{}
	now           func() time.Time
}

func New(checkInterval time.Duration) *Scheduler {
	if checkInterval <= 0 {
		checkInterval = time.Minute
	}
	return &Scheduler{
		checkInterval: checkInterval,
		notifyCh:      make(chan struct{}, 1),
		now:           time.Now,
	}
}

// Register adds a named job. The first firing is the cadence's next
// occurrence after registration.
func (s *Scheduler) Register(name string, cadence *schedule.Cadence, run func(ctx context.Context) error) {
	s.jobs = append(s.jobs, &job{
		name:    name,
		cadence: cadence,
		run:     run,
		nextRun: cadence.Next(s.now()),
	})
}

// Notify triggers an immediate check. Non-blocking if a check is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// Channel already has a pending notification, skip
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Scheduler started")
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	// Wait a bit for migrations to complete before first check
	select {
	case <-ctx.Done():
		return
	case <-time.After(2 * time.Second):
	}

	s.check(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			s.check(ctx)
		case <-s.notifyCh:
			log.Println("Scheduler triggered by notification")
			s.check(ctx)
		}
	}
}

// check runs every job whose firing time has arrived. A job that returns an
// error (its initial batch read failed) is logged and waits for its next
// natural firing; there is no job-level retry beyond the cadence itself.
func (s *Scheduler) check(ctx context.Context) {
	now := s.now()
	for _, j := range s.jobs {
		if j.nextRun.IsZero() || j.nextRun.After(now) {
			continue
		}
		started := time.Now()
		if err := j.run(ctx); err != nil {
			log.Printf("Job %s failed: %v", j.name, err)
		} else {
			log.Printf("Job %s completed in %s", j.name, time.Since(started).Round(time.Millisecond))
		}
		j.nextRun = j.cadence.Next(now)
	}
}
