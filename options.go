package camwatch

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// monitorConfig holds mutable state during Monitor construction.
type monitorConfig struct {
	mediamtxURL      string
	playbackURL      string
	webrtcURL        string
	port             int
	serverDisabled   bool
	probeInterval    time.Duration
	probeTimeout     time.Duration
	refreshInterval  time.Duration
	cacheTTL         time.Duration
	notifyDelay      time.Duration
	failureThreshold int
	requestTimeout   time.Duration
	retryAttempts    int
	retryDelay       time.Duration
	configBatchSize  int
	cameras          []CameraSpec
	onChange         []func()
	logger           *slog.Logger
}

// Option is a function that configures a [Monitor] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Every option has a sensible default; camwatch.New() with no options
// monitors a MediaMTX instance on localhost at its standard ports.
type Option func(*monitorConfig) error

// validateBaseURL checks that raw parses as an absolute http or https URL.
func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q has no host", raw)
	}
	return nil
}

// WithMediaMTXURL sets the base URL of the MediaMTX control API, including
// the version prefix. The default is "http://127.0.0.1:9997/v3".
//
// Example:
//
//	m, err := camwatch.New(
//	    camwatch.WithMediaMTXURL("http://nvr.local:9997/v3"),
//	)
func WithMediaMTXURL(raw string) Option {
	return func(cfg *monitorConfig) error {
		if err := validateBaseURL(raw); err != nil {
			return fmt.Errorf("mediamtx URL: %w", err)
		}
		cfg.mediamtxURL = raw
		return nil
	}
}

// WithPlaybackURL sets the base URL of the MediaMTX HLS server, used both to
// derive playback URLs and as the target of health probes. The default is
// "http://127.0.0.1:8888".
//
// Example:
//
//	m, err := camwatch.New(
//	    camwatch.WithPlaybackURL("http://nvr.local:8888"),
//	)
func WithPlaybackURL(raw string) Option {
	return func(cfg *monitorConfig) error {
		if err := validateBaseURL(raw); err != nil {
			return fmt.Errorf("playback URL: %w", err)
		}
		cfg.playbackURL = raw
		return nil
	}
}

// WithWebRTCURL sets the base URL of the MediaMTX WebRTC server, used to
// derive WHEP playback URLs. The default is "http://127.0.0.1:8889".
func WithWebRTCURL(raw string) Option {
	return func(cfg *monitorConfig) error {
		if err := validateBaseURL(raw); err != nil {
			return fmt.Errorf("webrtc URL: %w", err)
		}
		cfg.webrtcURL = raw
		return nil
	}
}

// WithPort sets the HTTP server port for the REST API, the SSE event stream,
// and the Prometheus metrics endpoint.
//
// Port must be between 1 and 65535. The default is 8093.
//
// Example:
//
//	m, err := camwatch.New(
//	    camwatch.WithPort(9090),
//	)
func WithPort(port int) Option {
	return func(cfg *monitorConfig) error {
		if port < 1 || port > 65535 {
			return fmt.Errorf("port must be between 1 and 65535, got %d", port)
		}
		cfg.port = port
		return nil
	}
}

// WithServerDisabled turns off the embedded HTTP server. Use it when
// embedding the monitor in an application that exposes its own API and only
// needs the Go accessors and change notifications.
func WithServerDisabled() Option {
	return func(cfg *monitorConfig) error {
		cfg.serverDisabled = true
		return nil
	}
}

// WithProbeInterval sets how often every camera's playback endpoint is
// probed for health.
//
// The interval must be positive. The default is 10 seconds. Lower values
// detect failures faster at the cost of more load on the media server.
//
// Example:
//
//	m, err := camwatch.New(
//	    camwatch.WithProbeInterval(30 * time.Second),
//	)
func WithProbeInterval(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return fmt.Errorf("probe interval must be positive, got %v", d)
		}
		cfg.probeInterval = d
		return nil
	}
}

// WithProbeTimeout sets the per-request timeout for a single health probe.
// A camera that does not answer within the timeout counts as a hard failure.
//
// The timeout must be positive. The default is 5 seconds.
func WithProbeTimeout(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return fmt.Errorf("probe timeout must be positive, got %v", d)
		}
		cfg.probeTimeout = d
		return nil
	}
}

// WithRefreshInterval sets how often the camera list is re-read from the
// MediaMTX control API.
//
// The interval must be positive. The default is 30 seconds.
func WithRefreshInterval(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return fmt.Errorf("refresh interval must be positive, got %v", d)
		}
		cfg.refreshInterval = d
		return nil
	}
}

// WithCacheTTL sets how long a refreshed camera list is served from cache
// before the next non-forced refresh goes back to the network.
//
// A TTL of zero disables caching so every refresh hits the control API.
// Negative values are rejected. The default is 30 seconds.
func WithCacheTTL(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d < 0 {
			return fmt.Errorf("cache TTL cannot be negative, got %v", d)
		}
		cfg.cacheTTL = d
		return nil
	}
}

// WithFailureThreshold sets how many consecutive hard probe failures a
// camera must accumulate before it is declared offline (or in error, if it
// was never seen online).
//
// The threshold must be at least 1. The default is 3. A threshold of 1
// disables hysteresis entirely: a single failed probe flips the camera.
//
// Example:
//
//	m, err := camwatch.New(
//	    camwatch.WithFailureThreshold(5),
//	)
func WithFailureThreshold(n int) Option {
	return func(cfg *monitorConfig) error {
		if n < 1 {
			return fmt.Errorf("failure threshold must be at least 1, got %d", n)
		}
		cfg.failureThreshold = n
		return nil
	}
}

// WithNotifyDelay sets the debounce window for change notifications. All
// changes within the window collapse into a single notification to
// subscribers and SSE clients.
//
// A delay of zero notifies on every change. Negative values are rejected.
// The default is 50 milliseconds.
func WithNotifyDelay(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d < 0 {
			return fmt.Errorf("notify delay cannot be negative, got %v", d)
		}
		cfg.notifyDelay = d
		return nil
	}
}

// WithRequestTimeout sets the timeout for individual requests to the
// MediaMTX control API.
//
// The timeout must be positive. The default is 5 seconds.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return fmt.Errorf("request timeout must be positive, got %v", d)
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithRetry sets the retry policy for read requests to the MediaMTX control
// API. Writes are never retried.
//
// Attempts is the number of retries after the initial request; zero disables
// retrying. Delay is the wait between attempts. Both must be non-negative.
// The default is 2 retries 500 milliseconds apart.
//
// Example:
//
//	m, err := camwatch.New(
//	    camwatch.WithRetry(3, time.Second),
//	)
func WithRetry(attempts int, delay time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if attempts < 0 {
			return fmt.Errorf("retry attempts cannot be negative, got %d", attempts)
		}
		if delay < 0 {
			return fmt.Errorf("retry delay cannot be negative, got %v", delay)
		}
		cfg.retryAttempts = attempts
		cfg.retryDelay = delay
		return nil
	}
}

// WithConfigBatchSize caps how many per-path configuration requests run
// concurrently during a refresh.
//
// The size must be at least 1. The default is 5.
func WithConfigBatchSize(n int) Option {
	return func(cfg *monitorConfig) error {
		if n < 1 {
			return fmt.Errorf("config batch size must be at least 1, got %d", n)
		}
		cfg.configBatchSize = n
		return nil
	}
}

// WithLogger sets a custom structured logger for the monitor and everything
// it starts.
//
// The logger cannot be nil. If this option is not provided, slog.Default()
// is used.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	}))
//	m, err := camwatch.New(
//	    camwatch.WithLogger(logger),
//	)
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *monitorConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithOnChange registers a callback invoked after camera state changes have
// settled. Notifications are debounced (see [WithNotifyDelay]) and carry no
// payload: read the current state through the Monitor's accessors.
//
// The callback runs on the monitor's notification goroutine; a panic inside
// it is recovered and logged without affecting monitoring. A nil callback
// is silently ignored. The option can be given multiple times to register
// several callbacks.
//
// Example:
//
//	m, err := camwatch.New(
//	    camwatch.WithOnChange(func() {
//	        log.Println("camera state changed")
//	    }),
//	)
func WithOnChange(fn func()) Option {
	return func(cfg *monitorConfig) error {
		if fn == nil {
			return nil
		}
		cfg.onChange = append(cfg.onChange, fn)
		return nil
	}
}

// WithCameras declares cameras that must exist as paths on the media server.
// At startup the monitor creates any that are missing before the first
// refresh. Declared metadata is attached to the cameras from the start.
//
// The option can be given multiple times; all declared specs accumulate.
// Names must be unique across all declarations.
//
// Example:
//
//	gate, _ := camwatch.NewCameraSpec("gate", "rtsp://10.0.0.10:554/stream1")
//	yard, _ := camwatch.NewCameraSpec("yard", "rtsp://10.0.0.11:554/stream1")
//	m, err := camwatch.New(
//	    camwatch.WithCameras(gate, yard),
//	)
func WithCameras(specs ...CameraSpec) Option {
	return func(cfg *monitorConfig) error {
		cfg.cameras = append(cfg.cameras, specs...)
		return nil
	}
}
