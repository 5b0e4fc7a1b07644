// Package server provides the camwatch HTTP API.
//
// This package is internal to camwatch and handles all HTTP concerns:
//
//   - REST API: camera listing, lookup and lifecycle under "/api/v1"
//   - Server-Sent Events: full camera snapshots at "/api/v1/events",
//     one event per debounced change notification
//   - Operational endpoints: "/api/v1/healthz" and "/metrics"
//
// Routing is built on chi with request-ID, real-IP, panic-recovery and
// timeout middleware; the SSE stream is exempt from the timeout so clients
// can stay connected indefinitely. The server supports graceful shutdown
// via context cancellation, with a 5-second timeout for in-flight requests.
//
// Users of the camwatch library should not need to interact with this
// package directly. The server is started automatically by
// [camwatch.Monitor.Start].
package server
