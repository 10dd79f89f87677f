package fetch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeSleep(calls *[]time.Duration) func(ctx context.Context, d time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*calls = append(*calls, d)
		return nil
	}
}

func TestPolicyAttemptTimeouts(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 30*time.Second, p.AttemptTimeout(0))
	assert.Equal(t, 45*time.Second, p.AttemptTimeout(1))
	assert.Equal(t, 60*time.Second, p.AttemptTimeout(2))
}

func TestPolicyDoSucceedsFirstAttempt(t *testing.T) {
	var sleeps []time.Duration
	p := Policy{MaxAttempts: 3, Delay: 5 * time.Second, Sleep: fakeSleep(&sleeps)}

	attempts := 0
	err := p.Do(context.Background(), func(attempt int) error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, sleeps, "no delay before the first attempt")
}

func TestPolicyDoRetriesThenSucceeds(t *testing.T) {
	var sleeps []time.Duration
	p := Policy{MaxAttempts: 3, Delay: 5 * time.Second, Sleep: fakeSleep(&sleeps)}

	attempts := 0
	err := p.Do(context.Background(), func(attempt int) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, sleeps)
}

func TestPolicyDoExhaustsBudget(t *testing.T) {
	var sleeps []time.Duration
	p := Policy{MaxAttempts: 3, Delay: time.Second, Sleep: fakeSleep(&sleeps)}

	boom := errors.New("still down")
	attempts := 0
	err := p.Do(context.Background(), func(attempt int) error {
		attempts++
		return boom
	})

	require.Error(t, err)
	assert.Equal(t, boom, err, "last error is propagated")
	assert.Equal(t, 3, attempts)
}

func TestPolicyDoStopsOnPermanentError(t *testing.T) {
	var sleeps []time.Duration
	p := Policy{MaxAttempts: 3, Delay: time.Second, Sleep: fakeSleep(&sleeps)}

	attempts := 0
	err := p.Do(context.Background(), func(attempt int) error {
		attempts++
		return fmt.Errorf("%w: unexpected status: 404", errPermanent)
	})

	require.ErrorIs(t, err, errPermanent)
	assert.Equal(t, 1, attempts, "permanent failures skip the remaining attempts")
	assert.Empty(t, sleeps)
}

func TestPolicyDoStopsOnCancelledContext(t *testing.T) {
	p := Policy{
		MaxAttempts: 3,
		Delay:       time.Second,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			return ctx.Err()
		},
	}

	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := p.Do(ctx, func(attempt int) error {
		attempts++
		cancel()
		return errors.New("transient")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}
