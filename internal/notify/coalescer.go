package notify

import (
	"sync"
	"time"
)

// Coalescer collapses bursts of triggers into single callback invocations.
//
// The first [Coalescer.Trigger] after an idle period arms a timer; the
// callback fires once when the window elapses (trailing edge). Triggers
// arriving while the timer is armed are absorbed. A probe cycle that changes
// forty cameras therefore produces one notification, not forty.
//
// Coalescer is safe for concurrent use.
type Coalescer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	pending bool
	stopped bool
}

// NewCoalescer creates a [Coalescer] that invokes fn once per burst,
// delay after the burst's first trigger.
func NewCoalescer(delay time.Duration, fn func()) *Coalescer {
	return &Coalescer{
		delay: delay,
		fn:    fn,
	}
}

// Trigger requests a callback. If one is already scheduled the trigger is
// absorbed; otherwise the callback fires after the configured delay.
// Trigger never blocks and is a no-op after [Coalescer.Stop].
func (c *Coalescer) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped || c.pending {
		return
	}
	c.pending = true
	c.timer = time.AfterFunc(c.delay, c.fire)
}

// fire runs on the timer goroutine when the window elapses.
func (c *Coalescer) fire() {
	c.mu.Lock()
	if c.stopped || !c.pending {
		c.mu.Unlock()
		return
	}
	c.pending = false
	fn := c.fn
	c.mu.Unlock()

	// invoked outside the lock so the callback may trigger again
	fn()
}

// Flush fires a pending callback immediately instead of waiting for the
// window to elapse. No-op when nothing is pending. Used on shutdown so the
// last state change is not silently dropped.
func (c *Coalescer) Flush() {
	c.mu.Lock()
	if c.stopped || !c.pending {
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.pending = false
	fn := c.fn
	c.mu.Unlock()

	fn()
}

// Stop cancels any pending callback and makes all further triggers no-ops.
// Safe to call multiple times.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	c.pending = false
	if c.timer != nil {
		c.timer.Stop()
	}
}
