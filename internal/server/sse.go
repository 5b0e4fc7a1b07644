package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// sseWriteTimeout is the maximum time allowed for a single SSE write.
// This prevents goroutine leaks when clients are slow or disconnected.
// Must be <= the shutdown timeout to ensure clean shutdown.
const sseWriteTimeout = 5 * time.Second

// handleSSE streams camera snapshots via Server-Sent Events.
//
// The client gets the full camera list immediately, then one full snapshot
// per debounced change notification. Snapshots rather than deltas keep
// reconnecting clients trivially correct.
//
// The handler uses write deadlines so a blocked write to a slow or
// disconnected client times out instead of pinning the goroutine past
// shutdown.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		s.respondError(w, http.StatusInternalServerError, "sse not supported")
		return
	}

	// ResponseController provides deadline-aware write and flush operations
	rc := http.NewResponseController(w)

	// write deadlines may not be supported by every ResponseWriter
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}

		// ResponseController.Flush respects the write deadline
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// bridge debounced notifications into a channel this handler can
	// select on; the buffer of one collapses bursts the same way the
	// notifier does
	changes := make(chan struct{}, 1)
	unsubscribe := s.store.Subscribe(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	snapshot := func() ([]byte, error) {
		return json.Marshal(s.store.Cameras())
	}

	// initial snapshot so clients render without waiting for a change
	if data, err := snapshot(); err == nil {
		if err := writeAndFlush(data); err != nil {
			return
		}
	}

	for {
		select {
		case <-changes:
			data, err := snapshot()
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// request context is derived from the server context via
			// BaseContext, so this fires on both client disconnect AND
			// server shutdown
			return
		}
	}
}
