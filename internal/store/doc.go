// Package store maintains the reconciled view of every monitored camera.
//
// This package is internal to camwatch and is the heart of the monitor: it
// owns the camera set, the per-camera health records, the TTL cache that
// guards upstream round trips, and the hysteresis rules that keep statuses
// stable on flaky networks.
//
// The main components are:
//
//   - [Store]: thread-safe camera state with refresh/probe cycles and
//     operator mutations
//   - [Camera]: the storage snapshot served over the REST API and SSE
//   - reconcile: the pure transition function applying one settled probe
//     outcome to one health record
//
// Two rules shape everything here. First, availability beats freshness: a
// failed refresh keeps the last known camera list instead of clearing it.
// Second, bad news needs corroboration: a camera leaves online only after
// the configured number of consecutive hard failures, while a single
// success restores it immediately.
//
// Users of the camwatch library should not need to interact with this
// package directly. State is accessed through the main camwatch package.
package store
