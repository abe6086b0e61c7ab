package pipeline

import (
	"golang.org/x/sync/semaphore"

	"github.com/adlytica/toolkit/internal/pkg/metrics"
)

// Throttle bounds the number of concurrently executing commands. Acquisition
// is non-blocking: at capacity the caller is rejected, never queued.
type Throttle struct {
	sem   *semaphore.Weighted
	limit int
}

// NewThrottle creates a throttle; a non-positive limit falls back to the default
func NewThrottle(limit int) *Throttle {
	if limit < 1 {
		limit = 5
	}
	return &Throttle{sem: semaphore.NewWeighted(int64(limit)), limit: limit}
}

// Limit returns the configured maximum in-flight count
func (t *Throttle) Limit() int {
	return t.limit
}

// TryAcquire claims a slot without blocking; false means at capacity
func (t *Throttle) TryAcquire() bool {
	ok := t.sem.TryAcquire(1)
	if ok {
		metrics.CommandStarted()
	} else {
		metrics.RecordThrottleRejection()
	}
	return ok
}

// Release returns a slot; must run on every exit path of an acquired run
func (t *Throttle) Release() {
	metrics.CommandFinished()
	t.sem.Release(1)
}
