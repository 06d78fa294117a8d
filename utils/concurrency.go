package utils

import (
	"context"
	"sync"
	"time"
)

// WorkerPool runs jobs on a bounded number of goroutines and spaces job
// starts at least minGap apart. Jobs never start once their context is done.
type WorkerPool struct {
	semaphore chan struct{}
	minGap    time.Duration
	wg        sync.WaitGroup

	mu       sync.Mutex
	nextSlot time.Time
}

// NewWorkerPool creates a WorkerPool with the given concurrency (at least 1)
// and the minimum gap between two job starts.
func NewWorkerPool(maxWorkers int, minGap time.Duration) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		semaphore: make(chan struct{}, maxWorkers),
		minGap:    minGap,
	}
}

// Submit waits for a free worker and runs job on it. It returns false without
// running job when ctx is done first. A submitted job whose start slot comes
// after ctx is done is dropped as well.
func (wp *WorkerPool) Submit(ctx context.Context, job func(ctx context.Context)) bool {
	select {
	case wp.semaphore <- struct{}{}:
	case <-ctx.Done():
		return false
	}

	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		if err := Sleep(ctx, wp.reserveSlot()); err != nil {
			return
		}
		job(ctx)
	}()
	return true
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// reserveSlot books the next start time and returns how long to wait for it.
// The lock only guards the bookkeeping; the wait happens outside it.
func (wp *WorkerPool) reserveSlot() time.Duration {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	now := time.Now()
	slot := wp.nextSlot
	if slot.Before(now) {
		slot = now
	}
	wp.nextSlot = slot.Add(wp.minGap)
	return slot.Sub(now)
}

// IDSet is a thread-safe set of listing keys.
type IDSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewIDSet creates an empty IDSet.
func NewIDSet() *IDSet {
	return &IDSet{seen: make(map[string]struct{})}
}

// Add returns true if the key was newly added, false if already present.
func (s *IDSet) Add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Size returns the number of unique keys tracked.
func (s *IDSet) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
