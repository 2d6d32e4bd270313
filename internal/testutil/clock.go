package testutil

import (
	"sync"
	"time"
)

// Clock provides a deterministic time source for tests that snapshot
// rendered output (golden files, stored runs). Each Now call returns the
// current instant and advances the clock by a fixed step, so repeated
// runs produce identical timestamp sequences.
//
// Thread-safety: all methods are safe for concurrent use, though the
// run itself is single-threaded.
type Clock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

// NewClock creates a clock starting at start, advancing by step on every
// Now call.
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{t: start, step: step}
}

// Now returns the clock's current instant and advances it.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}

// Peek returns the instant the next Now call will return, without
// advancing.
func (c *Clock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Reset rewinds the clock to start for test reuse.
func (c *Clock) Reset(start time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = start
}

// Base is the conventional start instant shared by tests so golden
// files across packages agree on timestamps.
var Base = time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC)
