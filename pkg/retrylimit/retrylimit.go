// Package retrylimit retries an operation with capped exponential backoff.
// It is meant for connectivity checks at startup, where a dependency may come
// up a few seconds after the bot.
//
// Example usage:
//
//	err := retrylimit.WithRetryMax(ctx, "redis", func(ctx context.Context) error {
//	    return client.Ping(ctx).Err()
//	}, 5)
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"
)

// FatalError wraps errors that should stop retries immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// Fatal marks err as not worth retrying.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxAttempts  int           // Maximum number of attempts (0 = 100)
	InitialDelay time.Duration // Delay before the second attempt
	MaxDelay     time.Duration // Cap for the backoff
	Multiplier   float64       // Delay multiplier per attempt
	Jitter       bool          // Add up to 25% random jitter
	OnRetry      func(attempt int, err error)
}

// DefaultRetryConfig returns the configuration used by WithRetryMax.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  100,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// WithRetryMax runs fn up to maxAttempts times with the default backoff.
// name only labels log lines.
func WithRetryMax(ctx context.Context, name string, fn func(context.Context) error, maxAttempts int) error {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = maxAttempts
	return WithRetryConfig(ctx, name, fn, cfg)
}

// WithRetryConfig runs fn until it succeeds, returns a FatalError, the
// context ends, or the attempts run out. The last error is wrapped in the
// returned one.
func WithRetryConfig(ctx context.Context, name string, fn func(context.Context) error, cfg RetryConfig) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 100
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		if err = fn(ctx); err == nil {
			if attempt > 1 {
				log.Info().Str("target", name).Int("attempts", attempt).Msg("retry succeeded")
			}
			return nil
		}

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		wait := delay
		if cfg.Jitter {
			wait = addJitter(delay)
		}
		log.Warn().Err(err).Str("target", name).Int("attempt", attempt).Dur("sleep", wait).Msg("retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("%s: max attempts (%d) exceeded: %w", name, cfg.MaxAttempts, err)
}

// addJitter adds 0-25% of delay.
func addJitter(delay time.Duration) time.Duration {
	if delay < 4 {
		return delay
	}
	return delay + rand.N(delay/4)
}
