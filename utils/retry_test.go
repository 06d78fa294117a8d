package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLinearBackoff(t *testing.T) {
	b := LinearBackoff(5 * time.Second)
	for attempt, want := range map[int]time.Duration{1: 5 * time.Second, 2: 10 * time.Second, 3: 15 * time.Second} {
		if got := b(attempt); got != want {
			t.Errorf("LinearBackoff(5s)(%d) = %v; want %v", attempt, got, want)
		}
	}
}

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff(time.Second)
	for attempt, want := range map[int]time.Duration{1: time.Second, 2: 2 * time.Second, 3: 4 * time.Second} {
		if got := b(attempt); got != want {
			t.Errorf("ExponentialBackoff(1s)(%d) = %v; want %v", attempt, got, want)
		}
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, Backoff: LinearBackoff(time.Millisecond), Logger: NewLogger()}

	calls := 0
	err := r.Do(context.Background(), "flaky", func(attempt int) error {
		calls++
		if attempt < 3 {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2, Backoff: LinearBackoff(time.Millisecond)}
	sentinel := errors.New("still down")

	err := r.Do(context.Background(), "down", func(int) error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped sentinel, got %v", err)
	}
}

func TestRetryStopsOnPermanent(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 5, Backoff: LinearBackoff(time.Millisecond)}
	sentinel := errors.New("forbidden")

	calls := 0
	err := r.Do(context.Background(), "perm", func(int) error {
		calls++
		return Permanent(sentinel)
	})
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped sentinel, got %v", err)
	}
}

func TestRetryDelayForSeesError(t *testing.T) {
	slow := errors.New("slow down")
	var seen []error
	r := &RetryConfig{
		MaxAttempts: 3,
		Backoff:     LinearBackoff(time.Hour),
		DelayFor: func(attempt int, err error) time.Duration {
			seen = append(seen, err)
			return time.Millisecond
		},
	}

	err := r.Do(context.Background(), "picky", func(attempt int) error {
		if attempt == 1 {
			return slow
		}
		if attempt == 2 {
			return errors.New("other")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 2 || seen[0] != slow || seen[1].Error() != "other" {
		t.Errorf("DelayFor saw %v; want [slow down other]", seen)
	}
}

func TestRetryHonoursContext(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, Backoff: LinearBackoff(time.Hour)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Do(ctx, "cancelled", func(int) error { return errors.New("fail") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRandomDurationBounds(t *testing.T) {
	min, max := 2*time.Second, 6*time.Second
	for i := 0; i < 200; i++ {
		d := RandomDuration(min, max)
		if d < min || d > max {
			t.Fatalf("RandomDuration out of range: %v", d)
		}
	}
	if got := RandomDuration(3*time.Second, time.Second); got != 3*time.Second {
		t.Errorf("inverted range: got %v, want 3s", got)
	}
}
