// Package schedule triggers the daily run. It is a coarse cooperative loop:
// tick once a minute, compare the wall clock against the configured HH:MM,
// invoke the run synchronously when it is due.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Scheduler struct {
	at     string
	run    func(ctx context.Context)
	logger *slog.Logger

	tick time.Duration
	now  func() time.Time
}

func New(at string, run func(ctx context.Context), logger *slog.Logger) (*Scheduler, error) {
	if _, err := time.Parse("15:04", at); err != nil {
		return nil, fmt.Errorf("invalid schedule time %q: expected HH:MM", at)
	}

	return &Scheduler{
		at:     at,
		run:    run,
		logger: logger.With("component", "scheduler"),
		tick:   time.Minute,
		now:    time.Now,
	}, nil
}

// NextRun returns the first instant at or after now matching the HH:MM
// schedule in now's location.
func NextRun(now time.Time, at string) time.Time {
	t, _ := time.Parse("15:04", at)
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if next.Before(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start blocks until ctx is cancelled, firing the run whenever its scheduled
// time arrives. Runs execute synchronously on the scheduler goroutine, so a
// slow run simply delays the clock check, never overlaps it.
func (s *Scheduler) Start(ctx context.Context) error {
	next := NextRun(s.now(), s.at)
	s.logger.Info("scheduler started", "at", s.at, "next_run", next)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if s.now().Before(next) {
				continue
			}

			s.run(ctx)

			next = NextRun(s.now(), s.at)
			s.logger.Info("run complete", "next_run", next)
		}
	}
}
