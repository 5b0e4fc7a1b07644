package camwatch

import (
	"errors"
	"fmt"
	"time"
)

// cameraSpecConfig holds mutable state during camera spec construction.
type cameraSpecConfig struct {
	transport     string
	onDemand      bool
	startTimeout  time.Duration
	closeAfter    time.Duration
	udpReadBuffer int
	metadata      map[string]string
}

// CameraSpecOption is a function that configures a [CameraSpec] during construction.
//
// CameraSpecOption implements the functional options pattern, allowing
// optional configuration to be passed to [NewCameraSpec] in a type-safe,
// extensible way. Options return an error if validation fails.
//
// Built-in options: [WithTransport], [WithOnDemand], [WithOnDemandTimeouts],
// [WithUDPReadBuffer], [WithMetadata].
type CameraSpecOption func(*cameraSpecConfig) error

// WithTransport sets the RTSP transport protocol for the camera source.
//
// Supported transports are "tcp" (default) and "udp". TCP is the safe choice
// behind NATs and lossy links; UDP trades reliability for lower overhead.
//
// Example:
//
//	spec, err := camwatch.NewCameraSpec("gate", src,
//	    camwatch.WithTransport("udp"),
//	)
//
// Returns an error if the transport is not "tcp" or "udp".
func WithTransport(transport string) CameraSpecOption {
	return func(cfg *cameraSpecConfig) error {
		switch transport {
		case "tcp", "udp":
			cfg.transport = transport
			return nil
		default:
			return fmt.Errorf("transport must be tcp or udp, got %q", transport)
		}
	}
}

// WithOnDemand controls whether the media server connects to the source only
// while readers are present.
//
// When enabled, the camera's manifest will return 404 between viewing
// sessions; the monitor treats that as a soft (uncounted) probe outcome, so
// on-demand cameras do not accumulate failures while idle.
func WithOnDemand(onDemand bool) CameraSpecOption {
	return func(cfg *cameraSpecConfig) error {
		cfg.onDemand = onDemand
		return nil
	}
}

// WithOnDemandTimeouts sets how long the media server waits for an on-demand
// source to start publishing, and how long it keeps the source open after
// the last reader leaves.
//
// Both values default to 10 seconds. Only meaningful together with
// [WithOnDemand].
//
// Returns an error if either duration is zero or negative.
func WithOnDemandTimeouts(startTimeout, closeAfter time.Duration) CameraSpecOption {
	return func(cfg *cameraSpecConfig) error {
		if startTimeout <= 0 {
			return errors.New("on-demand start timeout must be positive")
		}
		if closeAfter <= 0 {
			return errors.New("on-demand close-after must be positive")
		}
		cfg.startTimeout = startTimeout
		cfg.closeAfter = closeAfter
		return nil
	}
}

// WithUDPReadBuffer sets the RTSP UDP read buffer size in bytes.
//
// Larger buffers reduce packet loss for high-bitrate cameras when the
// transport is UDP. Zero (the default) leaves the media server's own
// default in place.
//
// Returns an error if the size is negative.
func WithUDPReadBuffer(bytes int) CameraSpecOption {
	return func(cfg *cameraSpecConfig) error {
		if bytes < 0 {
			return errors.New("UDP read buffer size cannot be negative")
		}
		cfg.udpReadBuffer = bytes
		return nil
	}
}

// WithMetadata attaches free-form key-value pairs to the camera.
//
// Metadata appears in camera snapshots and API responses and is preserved
// across refreshes. Use it for operator-facing details such as location or
// owning team.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	spec, err := camwatch.NewCameraSpec("gate", src,
//	    camwatch.WithMetadata("location", "front gate", "team", "facilities"),
//	)
//
// Returns an error if an odd number of arguments is provided.
func WithMetadata(keyValues ...string) CameraSpecOption {
	return func(cfg *cameraSpecConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithMetadata requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.metadata[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}
