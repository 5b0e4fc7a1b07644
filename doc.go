// Package camwatch provides an embeddable health monitor for cameras served
// by a MediaMTX media server.
//
// Camwatch is designed as an SDK-first library: applications construct a
// [Monitor], point it at a MediaMTX instance, and get a continuously
// reconciled view of every camera's health plus a REST API, a Server-Sent
// Events stream, and Prometheus metrics. It follows functional programming
// principles with immutable types, pure reconciliation, and composable
// configuration via the functional options pattern.
//
// # Quick Start
//
// Create a monitor and run it with graceful shutdown:
//
//	m, _ := camwatch.New(camwatch.WithMediaMTXURL("http://nvr.local:9997/v3"))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	m.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// Camwatch uses the functional options pattern for configuration:
//
//	m, err := camwatch.New(
//	    camwatch.WithMediaMTXURL("http://nvr.local:9997/v3"),
//	    camwatch.WithProbeInterval(10 * time.Second),
//	    camwatch.WithFailureThreshold(3),
//	    camwatch.WithPort(8093),
//	)
//
// Cameras can be declared up front so the monitor creates them on the media
// server at startup:
//
//	gate, err := camwatch.NewCameraSpec("gate", "rtsp://10.0.0.10:554/stream1",
//	    camwatch.WithTransport("tcp"),
//	    camwatch.WithOnDemand(true),
//	    camwatch.WithMetadata("location", "front gate"),
//	)
//	m, err := camwatch.New(camwatch.WithCameras(gate))
//
// Homogeneous camera fleets can be declared with [NewCameraGrid], which
// expands name and source templates over a set of dimensions.
//
// # Health Model
//
// Every camera is in one of four states: checking, online, offline, or
// error (see [Status]). The monitor probes each camera's HLS playback
// endpoint on a fixed interval and reconciles the outcomes with hysteresis:
// one successful probe puts a camera online, while only a run of
// consecutive hard failures reaching the configured threshold takes it out.
// A camera that fails without ever having been online lands in error rather
// than offline, which keeps "misconfigured" distinguishable from "lost".
//
// # Architecture
//
// Camwatch consists of several internal packages (under internal/):
//
//   - internal/mediamtx: Client for the MediaMTX control API
//   - internal/probe: Concurrent HLS endpoint probing and outcome classification
//   - internal/store: Reconciled in-memory camera state with pub/sub
//   - internal/notify: Debounced change notification fan-out
//   - internal/server: HTTP server with REST API and Server-Sent Events
//   - internal/metrics: Prometheus instrumentation
//
// The internal packages are not part of the public API and may change
// without notice. The library is designed for single-binary deployment;
// the camwatch command in cmd/camwatch wraps the SDK with YAML
// configuration for standalone use.
package camwatch
