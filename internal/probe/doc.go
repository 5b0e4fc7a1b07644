// Package probe issues liveness probes against camera playback manifests.
//
// This package is internal to camwatch. A probe is a single HEAD request
// against a camera's HLS manifest URL with a per-request timeout; the
// response is classified into one of four outcomes that drive the status
// store's hysteresis rules:
//
//   - [OutcomeSuccess]: 2xx, the stream is being served
//   - [OutcomeSoft]: 404, ambiguous (stream starting up or stopped), never
//     counted against the camera
//   - [OutcomeHard]: any other response or a transport failure
//   - [OutcomeAborted]: the probe's context was cancelled, typically because
//     a forced refresh superseded the cycle; carries no health information
//
// [Prober.ProbeAll] fans out one goroutine per target and joins when every
// probe has settled, so a cycle's wall time tracks the slowest camera, not
// the sum.
//
// Users of the camwatch library should not need to interact with this
// package directly.
package probe
