package notify

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
)

// Hub is a registry of change listeners.
//
// Listeners are plain functions invoked synchronously on every broadcast.
// Each invocation runs inside a panic recovery boundary: a faulty listener
// is logged with a correlation ID and the broadcast continues with the
// remaining listeners.
//
// Hub is safe for concurrent use.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]func()
	nextID    uint64
	logger    *slog.Logger
	onPanic   func()
}

// NewHub creates an empty [Hub].
//
// onPanic, if non-nil, is called once per recovered listener panic; the
// monitor wires it to a metrics counter.
func NewHub(logger *slog.Logger, onPanic func()) *Hub {
	return &Hub{
		listeners: make(map[uint64]func()),
		logger:    logger,
		onPanic:   onPanic,
	}
}

// Subscribe registers a listener and returns its unsubscribe function.
//
// The unsubscribe function is idempotent. A nil listener is silently
// ignored and yields a no-op unsubscribe.
func (h *Hub) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// Len returns the number of registered listeners.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Broadcast invokes every registered listener in isolation.
//
// Listeners registered or removed during a broadcast take effect on the
// next broadcast; the current one runs against a snapshot.
func (h *Hub) Broadcast() {
	h.mu.RLock()
	fns := make([]func(), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		h.invokeSafe(fn)
	}
}

// invokeSafe calls a listener with panic recovery.
// If the listener panics, the full stack trace is logged with a correlation
// ID and the panic does not propagate.
func (h *Hub) invokeSafe(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			stack := debug.Stack()

			// log full context server-side for debugging
			h.logger.Error("change listener panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(stack),
			)

			if h.onPanic != nil {
				h.onPanic()
			}
		}
	}()
	fn()
}
