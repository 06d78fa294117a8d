package utils

import (
	"context"
	"math/rand"
	"time"
)

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RandomDuration picks a duration uniformly from [min, max].
// A max below min collapses the range to min.
func RandomDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}

// RandomSleep sleeps for a random duration in [min, max] so that request
// timing does not look scripted.
func RandomSleep(ctx context.Context, logger *Logger, min, max time.Duration) error {
	d := RandomDuration(min, max)
	if logger != nil {
		logger.Debug("sleeping %.2fs", d.Seconds())
	}
	return Sleep(ctx, d)
}
