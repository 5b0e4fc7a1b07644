// Package config provides YAML configuration parsing for camwatch.
//
// This package enables running camwatch as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	listen: ":8093"
//	log_level: info
//
//	mediamtx:
//	  api_url: http://127.0.0.1:9997/v3
//	  playback_url: http://127.0.0.1:8888
//
//	cameras:
//	  - name: gate
//	    source: rtsp://10.0.0.10:554/stream1
//
//	camera_grids:
//	  - name: floor
//	    source_pattern: "rtsp://10.0.{{.floor}}.5:554/ch{{.ch}}"
//	    dimensions:
//	      floor: ["1", "2"]
//	      ch: ["1", "2"]
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"
)

// minCycleInterval is the minimum allowed probe and refresh interval.
// This prevents accidental DoS of the media server with overly aggressive
// cycles.
const minCycleInterval = 1 * time.Second

// Config is the root configuration structure for camwatch.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Listen is the HTTP server listen address, e.g. ":8093".
	// Defaults to ":8093".
	Listen string `yaml:"listen"`

	// LogLevel controls log verbosity: debug, info, warn, or error.
	// Defaults to "info".
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log output format: json or text.
	// Defaults to "json".
	LogFormat string `yaml:"log_format"`

	// MediaMTX configures the connection to the media server.
	MediaMTX MediaMTXConfig `yaml:"mediamtx"`

	// Monitor configures the health monitoring cycles.
	Monitor MonitorConfig `yaml:"monitor"`

	// Cameras declares paths that must exist on the media server at
	// startup.
	Cameras []CameraConfig `yaml:"cameras"`

	// CameraGrids declares camera fleets that expand via cartesian product.
	CameraGrids []GridConfig `yaml:"camera_grids"`
}

// MediaMTXConfig holds the connection settings for the MediaMTX instance.
type MediaMTXConfig struct {
	// APIURL is the control API base URL including the version prefix.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	// Defaults to http://127.0.0.1:9997/v3.
	APIURL string `yaml:"api_url"`

	// PlaybackURL is the HLS server base URL, used for probing and to
	// derive playback URLs. Defaults to http://127.0.0.1:8888.
	PlaybackURL string `yaml:"playback_url"`

	// WebRTCURL is the WebRTC server base URL, used to derive WHEP URLs.
	// Defaults to http://127.0.0.1:8889.
	WebRTCURL string `yaml:"webrtc_url"`

	// RequestTimeout bounds a single control API request.
	// Accepts duration strings like "5s", "500ms". Defaults to 5s.
	RequestTimeout Duration `yaml:"request_timeout"`

	// RetryAttempts is the number of retries for control API reads.
	// Defaults to 2.
	RetryAttempts int `yaml:"retry_attempts"`

	// RetryDelay is the wait between retries. Defaults to 500ms.
	RetryDelay Duration `yaml:"retry_delay"`

	// ConfigBatchSize caps concurrent per-path config requests during a
	// refresh. Defaults to 5.
	ConfigBatchSize int `yaml:"config_batch_size"`
}

// MonitorConfig holds the health monitoring cycle settings.
type MonitorConfig struct {
	// ProbeInterval is the time between health probe cycles.
	// Must be at least 1s. Defaults to 10s.
	ProbeInterval Duration `yaml:"probe_interval"`

	// ProbeTimeout bounds a single health probe. Defaults to 5s.
	ProbeTimeout Duration `yaml:"probe_timeout"`

	// RefreshInterval is the time between camera list refreshes.
	// Must be at least 1s. Defaults to 30s.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// CacheTTL is how long a refreshed camera list is served from cache.
	// Defaults to 30s.
	CacheTTL Duration `yaml:"cache_ttl"`

	// FailureThreshold is the number of consecutive hard probe failures
	// before a camera is declared offline. Defaults to 3.
	FailureThreshold int `yaml:"failure_threshold"`

	// NotifyDelay is the debounce window for change notifications.
	// Defaults to 50ms.
	NotifyDelay Duration `yaml:"notify_delay"`
}

// CameraConfig declares a single camera path.
type CameraConfig struct {
	// Name is the path name on the media server and the camera's ID.
	Name string `yaml:"name"`

	// Source is the upstream address the media server pulls from.
	// Supports environment variable substitution.
	Source string `yaml:"source"`

	// RTSPTransport is the RTSP transport protocol: tcp or udp.
	// Defaults to tcp.
	RTSPTransport string `yaml:"rtsp_transport"`

	// OnDemand makes the media server connect to the source only while
	// readers are present.
	OnDemand bool `yaml:"on_demand"`

	// Metadata holds free-form key-value pairs attached to the camera.
	// Values support environment variable substitution.
	Metadata map[string]string `yaml:"metadata"`
}

// GridConfig declares a camera fleet that expands via cartesian product.
//
// For example, with dimensions {floor: [1, 2], ch: [1, 2]}, the grid
// expands to 4 cameras: floor 1 channel 1, floor 1 channel 2, and so on.
type GridConfig struct {
	// Name is the base name for generated cameras. Without NamePattern,
	// camera names join the base name and dimension values with dashes.
	Name string `yaml:"name"`

	// NamePattern optionally overrides camera naming with a Go template.
	// Dimension keys are available as variables: {{.floor}}, {{.ch}}
	NamePattern string `yaml:"name_pattern"`

	// SourcePattern is a Go template for generating camera sources.
	// Supports environment variable substitution in the template.
	SourcePattern string `yaml:"source_pattern"`

	// Dimensions maps dimension names to their possible values.
	// The cartesian product of all dimensions generates the cameras.
	Dimensions map[string][]string `yaml:"dimensions"`

	// RTSPTransport is the RTSP transport for all generated cameras.
	RTSPTransport string `yaml:"rtsp_transport"`

	// OnDemand applies on-demand sourcing to all generated cameras.
	OnDemand bool `yaml:"on_demand"`

	// Metadata is applied to all generated cameras, merged with the
	// auto-generated dimension metadata.
	Metadata map[string]string `yaml:"metadata"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in URLs, camera sources, source
// patterns, and metadata values. Missing values take their documented
// defaults; a completely empty file yields a config that monitors a
// MediaMTX instance on localhost.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills in every unset field with its documented default.
func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8093"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}

	if c.MediaMTX.APIURL == "" {
		c.MediaMTX.APIURL = "http://127.0.0.1:9997/v3"
	}
	if c.MediaMTX.PlaybackURL == "" {
		c.MediaMTX.PlaybackURL = "http://127.0.0.1:8888"
	}
	if c.MediaMTX.WebRTCURL == "" {
		c.MediaMTX.WebRTCURL = "http://127.0.0.1:8889"
	}
	if c.MediaMTX.RequestTimeout == 0 {
		c.MediaMTX.RequestTimeout = Duration(5 * time.Second)
	}
	if c.MediaMTX.RetryAttempts == 0 {
		c.MediaMTX.RetryAttempts = 2
	}
	if c.MediaMTX.RetryDelay == 0 {
		c.MediaMTX.RetryDelay = Duration(500 * time.Millisecond)
	}
	if c.MediaMTX.ConfigBatchSize == 0 {
		c.MediaMTX.ConfigBatchSize = 5
	}

	if c.Monitor.ProbeInterval == 0 {
		c.Monitor.ProbeInterval = Duration(10 * time.Second)
	}
	if c.Monitor.ProbeTimeout == 0 {
		c.Monitor.ProbeTimeout = Duration(5 * time.Second)
	}
	if c.Monitor.RefreshInterval == 0 {
		c.Monitor.RefreshInterval = Duration(30 * time.Second)
	}
	if c.Monitor.CacheTTL == 0 {
		c.Monitor.CacheTTL = Duration(30 * time.Second)
	}
	if c.Monitor.FailureThreshold == 0 {
		c.Monitor.FailureThreshold = 3
	}
	if c.Monitor.NotifyDelay == 0 {
		c.Monitor.NotifyDelay = Duration(50 * time.Millisecond)
	}
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if _, err := ListenPort(c.Listen); err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("log_format must be json or text, got %q", c.LogFormat)
	}

	for _, u := range []struct {
		field string
		value *string
	}{
		{"mediamtx.api_url", &c.MediaMTX.APIURL},
		{"mediamtx.playback_url", &c.MediaMTX.PlaybackURL},
		{"mediamtx.webrtc_url", &c.MediaMTX.WebRTCURL},
	} {
		expanded, err := expandEnvVars(*u.value)
		if err != nil {
			return fmt.Errorf("%s: %w", u.field, err)
		}
		*u.value = expanded

		parsed, err := url.Parse(*u.value)
		if err != nil {
			return fmt.Errorf("%s: invalid url: %w", u.field, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s: url scheme must be http or https, got %q", u.field, parsed.Scheme)
		}
		if parsed.Host == "" {
			return fmt.Errorf("%s: url must have a host", u.field)
		}
	}

	if c.MediaMTX.RequestTimeout.Duration() <= 0 {
		return fmt.Errorf("mediamtx.request_timeout must be positive, got %s", c.MediaMTX.RequestTimeout.Duration())
	}
	if c.MediaMTX.RetryAttempts < 0 {
		return fmt.Errorf("mediamtx.retry_attempts cannot be negative, got %d", c.MediaMTX.RetryAttempts)
	}
	if c.MediaMTX.RetryDelay.Duration() < 0 {
		return fmt.Errorf("mediamtx.retry_delay cannot be negative, got %s", c.MediaMTX.RetryDelay.Duration())
	}
	if c.MediaMTX.ConfigBatchSize < 1 {
		return fmt.Errorf("mediamtx.config_batch_size must be at least 1, got %d", c.MediaMTX.ConfigBatchSize)
	}

	if c.Monitor.ProbeInterval.Duration() < minCycleInterval {
		return fmt.Errorf("monitor.probe_interval must be at least %s, got %s", minCycleInterval, c.Monitor.ProbeInterval.Duration())
	}
	if c.Monitor.RefreshInterval.Duration() < minCycleInterval {
		return fmt.Errorf("monitor.refresh_interval must be at least %s, got %s", minCycleInterval, c.Monitor.RefreshInterval.Duration())
	}
	if c.Monitor.ProbeTimeout.Duration() <= 0 {
		return fmt.Errorf("monitor.probe_timeout must be positive, got %s", c.Monitor.ProbeTimeout.Duration())
	}
	if c.Monitor.CacheTTL.Duration() < 0 {
		return fmt.Errorf("monitor.cache_ttl cannot be negative, got %s", c.Monitor.CacheTTL.Duration())
	}
	if c.Monitor.FailureThreshold < 1 {
		return fmt.Errorf("monitor.failure_threshold must be at least 1, got %d", c.Monitor.FailureThreshold)
	}
	if c.Monitor.NotifyDelay.Duration() < 0 {
		return fmt.Errorf("monitor.notify_delay cannot be negative, got %s", c.Monitor.NotifyDelay.Duration())
	}

	names := make(map[string]struct{}, len(c.Cameras))
	for i := range c.Cameras {
		cam := &c.Cameras[i]

		if cam.Name == "" {
			return fmt.Errorf("cameras[%d]: name is required", i)
		}
		if _, dup := names[cam.Name]; dup {
			return fmt.Errorf("cameras[%d]: duplicate camera name %q", i, cam.Name)
		}
		names[cam.Name] = struct{}{}

		if cam.Source == "" {
			return fmt.Errorf("cameras[%d] (%s): source is required", i, cam.Name)
		}
		expanded, err := expandEnvVars(cam.Source)
		if err != nil {
			return fmt.Errorf("cameras[%d] (%s): source: %w", i, cam.Name, err)
		}
		cam.Source = expanded

		if cam.RTSPTransport != "" && cam.RTSPTransport != "tcp" && cam.RTSPTransport != "udp" {
			return fmt.Errorf("cameras[%d] (%s): rtsp_transport must be tcp or udp", i, cam.Name)
		}

		for k, v := range cam.Metadata {
			expanded, err := expandEnvVars(v)
			if err != nil {
				return fmt.Errorf("cameras[%d] (%s): metadata[%s]: %w", i, cam.Name, k, err)
			}
			cam.Metadata[k] = expanded
		}
	}

	for i := range c.CameraGrids {
		g := &c.CameraGrids[i]

		if g.Name == "" {
			return fmt.Errorf("camera_grids[%d]: name is required", i)
		}

		if g.SourcePattern == "" {
			return fmt.Errorf("camera_grids[%d] (%s): source_pattern is required", i, g.Name)
		}
		expanded, err := expandEnvVars(g.SourcePattern)
		if err != nil {
			return fmt.Errorf("camera_grids[%d] (%s): source_pattern: %w", i, g.Name, err)
		}
		g.SourcePattern = expanded

		// fail fast before the SDK tries to use an invalid template
		if _, err := template.New("").Parse(g.SourcePattern); err != nil {
			return fmt.Errorf("camera_grids[%d] (%s): invalid source_pattern: %w", i, g.Name, err)
		}
		if g.NamePattern != "" {
			if _, err := template.New("").Parse(g.NamePattern); err != nil {
				return fmt.Errorf("camera_grids[%d] (%s): invalid name_pattern: %w", i, g.Name, err)
			}
		}

		if len(g.Dimensions) == 0 {
			return fmt.Errorf("camera_grids[%d] (%s): at least one dimension is required", i, g.Name)
		}
		for dimName, dimValues := range g.Dimensions {
			if len(dimValues) == 0 {
				return fmt.Errorf("camera_grids[%d] (%s): dimension %q has no values", i, g.Name, dimName)
			}
			seen := make(map[string]struct{}, len(dimValues))
			for _, v := range dimValues {
				if _, exists := seen[v]; exists {
					return fmt.Errorf("camera_grids[%d] (%s): dimension %q has duplicate value %q", i, g.Name, dimName, v)
				}
				seen[v] = struct{}{}
			}
		}

		if g.RTSPTransport != "" && g.RTSPTransport != "tcp" && g.RTSPTransport != "udp" {
			return fmt.Errorf("camera_grids[%d] (%s): rtsp_transport must be tcp or udp", i, g.Name)
		}

		for k, v := range g.Metadata {
			expanded, err := expandEnvVars(v)
			if err != nil {
				return fmt.Errorf("camera_grids[%d] (%s): metadata[%s]: %w", i, g.Name, k, err)
			}
			g.Metadata[k] = expanded
		}
	}

	return nil
}

// ListenPort extracts the numeric port from a listen address like ":8093"
// or "0.0.0.0:8093".
func ListenPort(listen string) (int, error) {
	_, portStr, err := net.SplitHostPort(listen)
	if err != nil {
		return 0, fmt.Errorf("invalid listen address %q: %w", listen, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid listen port %q: %w", portStr, err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("listen port must be between 1 and 65535, got %d", port)
	}
	return port, nil
}
