package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) Policy {
	return Policy{
		Attempts:  attempts,
		BaseDelay: time.Millisecond,
		MaxDelay:  5 * time.Millisecond,
		Factor:    2.0,
		Jitter:    0,
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), "noop", func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), "flaky", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return MarkTransient(errors.New("busy"), 503)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("invalid credentials")
	calls := 0
	err := Do(context.Background(), fastPolicy(5), "auth", func(ctx context.Context) error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	transient := MarkTransient(errors.New("still busy"), 429)
	calls := 0
	err := Do(context.Background(), fastPolicy(3), "quota", func(ctx context.Context) error {
		calls++
		return transient
	})
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, calls)
}

func TestDoRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, fastPolicy(5), "cancelled", func(ctx context.Context) error {
		calls++
		cancel()
		return MarkTransient(errors.New("busy"), 503)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoCustomClassifier(t *testing.T) {
	special := errors.New("rebalance in progress")
	p := fastPolicy(2)
	p.Classify = func(err error) bool { return errors.Is(err, special) }

	calls := 0
	err := Do(context.Background(), p, "custom", func(ctx context.Context) error {
		calls++
		return special
	})
	assert.ErrorIs(t, err, special)
	assert.Equal(t, 2, calls)
}

func TestDoValue(t *testing.T) {
	calls := 0
	got, err := DoValue(context.Background(), fastPolicy(3), "fetch", func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", MarkTransient(errors.New("busy"), 502)
		}
		return "payload", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "payload", got)

	_, err = DoValue(context.Background(), fastPolicy(1), "fetch", func(ctx context.Context) (int, error) {
		return 42, errors.New("bad")
	})
	require.Error(t, err)
}

func TestBackoffGrowthAndCap(t *testing.T) {
	p := Policy{BaseDelay: 10 * time.Millisecond, MaxDelay: 35 * time.Millisecond, Factor: 2.0}.withDefaults()
	assert.Equal(t, 10*time.Millisecond, p.backoff(0))
	assert.Equal(t, 20*time.Millisecond, p.backoff(1))
	assert.Equal(t, 35*time.Millisecond, p.backoff(2))
	assert.Equal(t, 35*time.Millisecond, p.backoff(5))
}
