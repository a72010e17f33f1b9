// Package retry runs operations with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Config configures retry behaviour.
type Config struct {
	// MaxRetries is the maximum number of retry attempts (not including initial attempt).
	MaxRetries int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration

	// Multiplier is the factor by which delay increases after each retry.
	Multiplier float64

	// Jitter randomises each delay between 50% and 100% of its value.
	Jitter bool

	// Retryable decides whether an error is worth another attempt.
	// Nil retries every error.
	Retryable func(error) bool
}

// DefaultConfig returns the default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:   2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Do executes fn, retrying failed attempts with exponential backoff.
// Non-retryable errors are returned immediately, unwrapped.
// If the context is cancelled, it returns the context error.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	_, err := DoWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Backoff returns the wait before retry number attempt, counting from 1.
func (c Config) Backoff(attempt int) time.Duration {
	delay := float64(c.InitialDelay)
	for i := 1; i < attempt && c.Multiplier > 1; i++ {
		delay *= c.Multiplier
		if c.MaxDelay > 0 && delay > float64(c.MaxDelay) {
			break
		}
	}
	if c.MaxDelay > 0 && delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}
	if c.Jitter {
		delay *= 0.5 + rand.Float64()*0.5 //nolint:gosec // jitter only
	}
	return time.Duration(delay)
}

// DoWithResult is Do for functions that return a value.
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		var err error
		result, err = fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return result, err
		}
		if attempt >= cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(cfg.Backoff(attempt + 1)):
		}
	}

	if cfg.MaxRetries == 0 {
		return result, lastErr
	}
	return result, fmt.Errorf("failed after %d retries: %w", cfg.MaxRetries, lastErr)
}
