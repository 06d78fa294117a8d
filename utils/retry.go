package utils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Backoff returns the delay to wait after the given failed attempt (1-based).
type Backoff func(attempt int) time.Duration

// LinearBackoff waits base, 2*base, 3*base, ...
func LinearBackoff(base time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt)
	}
}

// ExponentialBackoff waits base, 2*base, 4*base, ...
func ExponentialBackoff(base time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return base << (attempt - 1)
	}
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. Do returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryConfig holds the parameters for the retry strategy. DelayFor, when
// set, picks the delay from the failed attempt's error and overrides Backoff.
type RetryConfig struct {
	MaxAttempts int
	Backoff     Backoff
	DelayFor    func(attempt int, err error) time.Duration
	Logger      *Logger
}

// Do executes fn until it succeeds, returns a Permanent error, attempts run
// out, or ctx is done. fn receives the 1-based attempt number.
func (r *RetryConfig) Do(ctx context.Context, operationName string, fn func(attempt int) error) error {
	var lastErr error
	backoff := r.Backoff
	if backoff == nil {
		backoff = ExponentialBackoff(2 * time.Second)
	}

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return fmt.Errorf("%s: %w", operationName, perm.err)
		}

		if attempt < r.MaxAttempts {
			delay := backoff(attempt)
			if r.DelayFor != nil {
				delay = r.DelayFor(attempt, lastErr)
			}
			if r.Logger != nil {
				r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
					operationName, attempt, r.MaxAttempts, lastErr, delay)
			}
			if err := Sleep(ctx, delay); err != nil {
				return fmt.Errorf("%s: %w", operationName, err)
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.MaxAttempts, lastErr)
}
