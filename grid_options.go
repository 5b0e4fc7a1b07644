package camwatch

import (
	"errors"
	"fmt"
	"time"
)

// gridConfig holds configuration during camera grid construction.
type gridConfig struct {
	sourceTemplate string
	nameTemplate   string
	dimensions     map[string][]string
	metadata       map[string]string
	transport      string
	onDemand       bool
	startTimeout   time.Duration
	closeAfter     time.Duration
	udpReadBuffer  int
}

// GridOption configures camera grid generation.
// GridOption implements the functional options pattern for [NewCameraGrid].
type GridOption func(*gridConfig) error

// WithSourceTemplate sets the source template for camera generation.
// The template uses Go's text/template syntax with dimension keys as variables.
//
// Example:
//
//	WithSourceTemplate("rtsp://dvr{{.dvr}}.internal:554/ch{{.ch}}")
//
// Returns an error if the template string is empty.
func WithSourceTemplate(tmpl string) GridOption {
	return func(cfg *gridConfig) error {
		if tmpl == "" {
			return errors.New("source template required")
		}
		cfg.sourceTemplate = tmpl
		return nil
	}
}

// WithNameTemplate overrides the generated camera names with a template.
// Without it, names join the base name and dimension values with dashes.
// The template uses Go's text/template syntax with dimension keys as
// variables; the result must be a valid media server path name.
//
// Example:
//
//	WithNameTemplate("floor{{.floor}}-cam{{.ch}}")
func WithNameTemplate(tmpl string) GridOption {
	return func(cfg *gridConfig) error {
		if tmpl == "" {
			return errors.New("name template cannot be empty")
		}
		cfg.nameTemplate = tmpl
		return nil
	}
}

// WithDimensions sets the dimension values for cartesian product expansion.
// Each key in the map becomes a template variable, and the cartesian product
// of all values generates the camera combinations.
//
// Example:
//
//	WithDimensions(map[string][]string{
//	    "dvr": {"1", "2"},
//	    "ch":  {"1", "2", "3", "4"},
//	})
//
// Returns an error if the map is empty, any dimension has no values,
// or any value is an empty string.
func WithDimensions(dims map[string][]string) GridOption {
	return func(cfg *gridConfig) error {
		if len(dims) == 0 {
			return errors.New("at least one dimension required")
		}
		for k, vals := range dims {
			if len(vals) == 0 {
				return fmt.Errorf("dimension %q has no values", k)
			}
			for i, v := range vals {
				if v == "" {
					return fmt.Errorf("dimension %q contains empty value at index %d", k, i)
				}
			}
		}
		cfg.dimensions = dims
		return nil
	}
}

// WithGridMetadata adds static metadata to all generated cameras.
// These pairs are merged with auto-generated dimension metadata.
// On collision, static metadata takes precedence over dimension metadata.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	WithGridMetadata("site", "warehouse", "tier", "critical")
func WithGridMetadata(keyValues ...string) GridOption {
	return func(cfg *gridConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithGridMetadata requires an even number of arguments (key-value pairs)")
		}
		if cfg.metadata == nil {
			cfg.metadata = make(map[string]string)
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.metadata[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithGridTransport sets the RTSP transport for all generated cameras.
//
// Supported transports are "tcp" (default) and "udp".
//
// Returns an error if the transport is not "tcp" or "udp".
func WithGridTransport(transport string) GridOption {
	return func(cfg *gridConfig) error {
		switch transport {
		case "tcp", "udp":
			cfg.transport = transport
			return nil
		default:
			return fmt.Errorf("transport must be tcp or udp, got %q", transport)
		}
	}
}

// WithGridOnDemand controls on-demand sourcing for all generated cameras.
// See [WithOnDemand].
func WithGridOnDemand(onDemand bool) GridOption {
	return func(cfg *gridConfig) error {
		cfg.onDemand = onDemand
		return nil
	}
}

// WithGridOnDemandTimeouts sets the on-demand start timeout and close-after
// duration for all generated cameras. See [WithOnDemandTimeouts].
//
// Returns an error if either duration is zero or negative.
func WithGridOnDemandTimeouts(startTimeout, closeAfter time.Duration) GridOption {
	return func(cfg *gridConfig) error {
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

// WithGridUDPReadBuffer sets the RTSP UDP read buffer size in bytes for all
// generated cameras. Zero leaves the media server default in place.
//
// Returns an error if the size is negative.
func WithGridUDPReadBuffer(bytes int) GridOption {
	return func(cfg *gridConfig) error {
		if bytes < 0 {
			return errors.New("UDP read buffer size cannot be negative")
		}
		cfg.udpReadBuffer = bytes
		return nil
	}
}
