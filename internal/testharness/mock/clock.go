package mock

import (
	"sync"
	"time"
)

// ManualClock is a microsecond clock advanced explicitly by tests.
type ManualClock struct {
	mu  sync.Mutex
	now uint64
}

// NewManualClock returns a clock starting at start microseconds.
func NewManualClock(start uint64) *ManualClock {
	return &ManualClock{now: start}
}

// Micros returns the current time.
func (c *ManualClock) Micros() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += uint64(d / time.Microsecond)
}

// Set moves the clock to us microseconds.
func (c *ManualClock) Set(us uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = us
}
