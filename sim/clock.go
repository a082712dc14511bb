package sim

import (
	"sync"
	"time"
)

// Clock is the driver's time source: elapsed time since some fixed origin.
type Clock interface {
	Now() time.Duration
}

// MonotonicClock reads the wall clock's monotonic reading.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock returns a clock whose origin is now.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Now returns the time elapsed since the clock was created.
func (c *MonotonicClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock only moves when told to. Used for fixed-step headless runs
// and for tests.
type ManualClock struct {
	mu  sync.Mutex
	now time.Duration
}

// Now returns the current reading.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Duration) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
