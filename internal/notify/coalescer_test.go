package notify

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestCoalescer_SingleTrigger verifies that one trigger produces exactly one
// callback after the window elapses.
func TestCoalescer_SingleTrigger(t *testing.T) {
	fired := make(chan struct{}, 10)
	c := NewCoalescer(20*time.Millisecond, func() {
		fired <- struct{}{}
	})
	defer c.Stop()

	c.Trigger()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for callback")
	}

	// no second callback without a second trigger
	select {
	case <-fired:
		t.Error("callback fired twice for a single trigger")
	case <-time.After(100 * time.Millisecond):
	}
}

// TestCoalescer_BurstProducesOneCallback verifies that a burst of triggers
// within the window is collapsed into a single callback. A probe cycle that
// changes forty cameras must notify once, not forty times.
func TestCoalescer_BurstProducesOneCallback(t *testing.T) {
	var count int32
	c := NewCoalescer(50*time.Millisecond, func() {
		atomic.AddInt32(&count, 1)
	})
	defer c.Stop()

	for i := 0; i < 40; i++ {
		c.Trigger()
	}

	time.Sleep(300 * time.Millisecond)

	if got := atomic.LoadInt32(&count); got != 1 {
		t.Errorf("callback count = %d, want 1", got)
	}
}

// TestCoalescer_TrailingEdge verifies that the callback fires at the end of
// the window, not immediately on the first trigger.
func TestCoalescer_TrailingEdge(t *testing.T) {
	var count int32
	c := NewCoalescer(200*time.Millisecond, func() {
		atomic.AddInt32(&count, 1)
	})
	defer c.Stop()

	c.Trigger()

	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&count); got != 0 {
		t.Errorf("callback count = %d before window elapsed, want 0", got)
	}

	time.Sleep(400 * time.Millisecond)
	if got := atomic.LoadInt32(&count); got != 1 {
		t.Errorf("callback count = %d after window elapsed, want 1", got)
	}
}

// TestCoalescer_FiresAgainAfterWindow verifies that a trigger arriving after
// a callback has fired starts a fresh window.
func TestCoalescer_FiresAgainAfterWindow(t *testing.T) {
	fired := make(chan struct{}, 10)
	c := NewCoalescer(20*time.Millisecond, func() {
		fired <- struct{}{}
	})
	defer c.Stop()

	c.Trigger()
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for first callback")
	}

	c.Trigger()
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for second callback")
	}
}

// TestCoalescer_Flush verifies that Flush fires a pending callback
// immediately and that a second Flush is a no-op.
func TestCoalescer_Flush(t *testing.T) {
	var count int32
	c := NewCoalescer(time.Hour, func() {
		atomic.AddInt32(&count, 1)
	})
	defer c.Stop()

	c.Trigger()
	c.Flush()

	if got := atomic.LoadInt32(&count); got != 1 {
		t.Errorf("callback count = %d after Flush, want 1", got)
	}

	c.Flush()
	if got := atomic.LoadInt32(&count); got != 1 {
		t.Errorf("callback count = %d after second Flush, want 1", got)
	}
}

// TestCoalescer_FlushWithoutPending verifies that Flush with nothing pending
// does not invoke the callback.
func TestCoalescer_FlushWithoutPending(t *testing.T) {
	var count int32
	c := NewCoalescer(20*time.Millisecond, func() {
		atomic.AddInt32(&count, 1)
	})
	defer c.Stop()

	c.Flush()

	if got := atomic.LoadInt32(&count); got != 0 {
		t.Errorf("callback count = %d, want 0", got)
	}
}

// TestCoalescer_Stop verifies that Stop cancels a pending callback and makes
// further triggers no-ops.
func TestCoalescer_Stop(t *testing.T) {
	var count int32
	c := NewCoalescer(50*time.Millisecond, func() {
		atomic.AddInt32(&count, 1)
	})

	c.Trigger()
	c.Stop()

	time.Sleep(200 * time.Millisecond)
	if got := atomic.LoadInt32(&count); got != 0 {
		t.Errorf("callback count = %d after Stop, want 0", got)
	}

	c.Trigger()
	time.Sleep(200 * time.Millisecond)
	if got := atomic.LoadInt32(&count); got != 0 {
		t.Errorf("callback count = %d after trigger on stopped coalescer, want 0", got)
	}
}

// TestCoalescer_StopTwice verifies that Stop is idempotent.
func TestCoalescer_StopTwice(t *testing.T) {
	c := NewCoalescer(time.Millisecond, func() {})

	c.Stop()
	c.Stop()
}

// TestCoalescer_ConcurrentTriggers verifies that concurrent triggers from
// many goroutines still collapse into one callback.
// Run with: go test -race ./internal/notify/...
func TestCoalescer_ConcurrentTriggers(t *testing.T) {
	var count int32
	c := NewCoalescer(50*time.Millisecond, func() {
		atomic.AddInt32(&count, 1)
	})
	defer c.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Trigger()
		}()
	}
	wg.Wait()

	time.Sleep(300 * time.Millisecond)

	if got := atomic.LoadInt32(&count); got != 1 {
		t.Errorf("callback count = %d, want 1", got)
	}
}

// TestCoalescer_CallbackMayTrigger verifies that the callback itself can
// trigger without deadlocking, starting a fresh window.
func TestCoalescer_CallbackMayTrigger(t *testing.T) {
	var count int32
	fired := make(chan struct{}, 10)

	var c *Coalescer
	c = NewCoalescer(10*time.Millisecond, func() {
		if atomic.AddInt32(&count, 1) == 1 {
			c.Trigger()
		}
		fired <- struct{}{}
	})
	defer c.Stop()

	c.Trigger()

	for i := 0; i < 2; i++ {
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatalf("timeout waiting for callback %d", i+1)
		}
	}

	if got := atomic.LoadInt32(&count); got != 2 {
		t.Errorf("callback count = %d, want 2", got)
	}
}
