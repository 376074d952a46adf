// Package schedule runs periodic maintenance jobs such as feed refresh
// and snapshot persistence.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a named unit of periodic work. A failing job is logged and
// skipped; it does not stop the scheduler.
type Job struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Scheduler runs its jobs once per interval, in registration order.
type Scheduler struct {
	jobs     []Job
	interval time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
	done     chan struct{}
}

// New creates a scheduler that fires every interval.
func New(interval time.Duration) *Scheduler {
	return &Scheduler{
		interval: interval,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
}

// Add registers a job.
func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, job)
}

// RunOnce executes all jobs sequentially and returns the number that
// succeeded.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	ok := 0
	for _, job := range s.jobs {
		start := time.Now()
		if err := job.Fn(ctx); err != nil {
			s.logger.Error("job failed", "name", job.Name, "error", err, "duration", time.Since(start))
			continue
		}
		s.logger.Info("job completed", "name", job.Name, "duration", time.Since(start))
		ok++
	}
	return ok
}

// Start blocks, running all jobs immediately and then once per interval,
// until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler started", "interval", s.interval, "jobs", len(s.jobs))

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-s.done:
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// Stop terminates a running Start loop. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}
