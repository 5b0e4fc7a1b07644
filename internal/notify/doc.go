// Package notify delivers coalesced change notifications to subscribers.
//
// This package is internal to camwatch and implements the monitor's
// notification model:
//
//   - [Coalescer]: a trailing-edge scheduler. Any number of triggers within
//     the configured window collapse into a single callback, bounding how
//     often subscribers run regardless of probe fan-out.
//   - [Hub]: a listener registry. Broadcasts invoke every listener
//     synchronously and in isolation; a panicking listener is recovered and
//     logged with a correlation ID so it can never block the others.
//
// The status store triggers the coalescer on every state change; the
// coalescer's single callback broadcasts through the hub.
//
// Users of the camwatch library should not need to interact with this
// package directly. Subscriptions are made through the main camwatch package.
package notify
