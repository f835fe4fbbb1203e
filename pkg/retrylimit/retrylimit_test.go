package retrylimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fast(max int) RetryConfig {
	return RetryConfig{MaxAttempts: max, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestSucceedsAfterRetries(t *testing.T) {
	calls := 0
	var retried []int
	cfg := fast(5)
	cfg.OnRetry = func(attempt int, _ error) { retried = append(retried, attempt) }

	err := WithRetryConfig(context.Background(), "test", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestMaxAttemptsWrapsLastError(t *testing.T) {
	down := errors.New("connection refused")
	calls := 0
	err := WithRetryConfig(context.Background(), "db", func(context.Context) error {
		calls++
		return down
	}, fast(3))
	assert.ErrorIs(t, err, down)
	assert.Contains(t, err.Error(), "max attempts (3) exceeded")
	assert.Equal(t, 3, calls)
}

func TestFatalStopsImmediately(t *testing.T) {
	bad := errors.New("bad password")
	calls := 0
	err := WithRetryConfig(context.Background(), "db", func(context.Context) error {
		calls++
		return Fatal(bad)
	}, fast(5))
	assert.ErrorIs(t, err, bad)
	assert.Equal(t, 1, calls)
	assert.Nil(t, Fatal(nil))
}

func TestContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := WithRetryConfig(ctx, "db", func(context.Context) error {
		calls++
		cancel()
		return errors.New("down")
	}, fast(5))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestJitterBounds(t *testing.T) {
	for range 100 {
		d := addJitter(100 * time.Millisecond)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.Less(t, d, 125*time.Millisecond)
	}
	assert.Equal(t, time.Duration(0), addJitter(0))
}
