package fetch

import (
	"context"
	"errors"
	"time"
)

// errPermanent marks an attempt failure that retrying cannot fix. Do returns
// it immediately instead of burning the remaining attempts.
var errPermanent = errors.New("permanent failure")

// Policy is a bounded retry schedule. The per-attempt timeout grows by
// TimeoutStep each attempt, mirroring the escalating budgets the site tends
// to need under load. Sleep is injectable so tests run without real delays.
type Policy struct {
	MaxAttempts int
	BaseTimeout time.Duration
	TimeoutStep time.Duration
	Delay       time.Duration

	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy matches the monitor's historical ladder: three attempts with
// 30s/45s/60s timeouts and a 5s pause between attempts.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseTimeout: 30 * time.Second,
		TimeoutStep: 15 * time.Second,
		Delay:       5 * time.Second,
	}
}

// AttemptTimeout returns the budget for the given zero-based attempt.
func (p Policy) AttemptTimeout(attempt int) time.Duration {
	return p.BaseTimeout + time.Duration(attempt)*p.TimeoutStep
}

// Do runs fn up to MaxAttempts times, sleeping Delay between attempts. The
// last error is returned once the budget is exhausted. An error wrapping
// errPermanent stops the loop on the spot.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, p.Delay); err != nil {
				return err
			}
		}

		if err := fn(attempt); err != nil {
			if errors.Is(err, errPermanent) {
				return err
			}
			lastErr = err
			continue
		}
		return nil
	}

	return lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
