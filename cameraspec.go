package camwatch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	defaultOnDemandStartTimeout = 10 * time.Second
	defaultOnDemandCloseAfter   = 10 * time.Second
)

// sourceSchemes are the upstream protocols the media server can pull from.
var sourceSchemes = map[string]bool{
	"rtsp":  true,
	"rtsps": true,
	"rtmp":  true,
	"rtmps": true,
	"http":  true,
	"https": true,
	"srt":   true,
	"udp":   true,
}

// CameraSpec declares a camera path to be ensured on the media server.
//
// CameraSpec is immutable after creation via [NewCameraSpec]. All fields are
// private with getter methods that return copies of mutable data (maps),
// ensuring the spec cannot be modified after construction.
//
// Specs are configured using the functional options pattern with
// [CameraSpecOption] functions such as [WithTransport], [WithOnDemand],
// [WithOnDemandTimeouts], [WithUDPReadBuffer], and [WithMetadata].
type CameraSpec struct {
	name          string
	source        string
	transport     string
	onDemand      bool
	startTimeout  time.Duration
	closeAfter    time.Duration
	udpReadBuffer int
	metadata      map[string]string
}

// Name returns the camera's path name on the media server.
// The name doubles as the camera's stable ID throughout the monitor.
func (s CameraSpec) Name() string {
	return s.name
}

// Source returns the upstream address the media server pulls from.
func (s CameraSpec) Source() string {
	return s.source
}

// Transport returns the RTSP transport protocol ("tcp" or "udp").
// Defaults to "tcp" if not explicitly set via [WithTransport].
func (s CameraSpec) Transport() string {
	return s.transport
}

// OnDemand reports whether the media server should connect to the source
// only while at least one reader is present.
func (s CameraSpec) OnDemand() bool {
	return s.onDemand
}

// OnDemandStartTimeout returns how long the media server waits for an
// on-demand source to start publishing. Defaults to 10 seconds.
func (s CameraSpec) OnDemandStartTimeout() time.Duration {
	return s.startTimeout
}

// OnDemandCloseAfter returns how long the media server keeps an on-demand
// source open after the last reader leaves. Defaults to 10 seconds.
func (s CameraSpec) OnDemandCloseAfter() time.Duration {
	return s.closeAfter
}

// UDPReadBuffer returns the RTSP UDP read buffer size in bytes.
// Zero means the media server's default is used.
func (s CameraSpec) UDPReadBuffer() int {
	return s.udpReadBuffer
}

// Metadata returns a copy of the free-form key-value pairs attached to the
// camera. Returns nil if no metadata is set.
func (s CameraSpec) Metadata() map[string]string {
	return copyMap(s.metadata)
}

// NewCameraSpec creates a [CameraSpec] with the given name, source, and options.
//
// The name becomes the path name on the media server and the camera's ID in
// the monitor. It must not be empty, contain whitespace, or start or end
// with a slash. The source must be a valid URL with a scheme the media
// server can pull from (rtsp, rtsps, rtmp, rtmps, http, https, srt, udp).
//
// Options are applied in order using the functional options pattern.
//
// Example:
//
//	spec, err := camwatch.NewCameraSpec("gate", "rtsp://10.0.0.10:554/stream1",
//	    camwatch.WithTransport("tcp"),
//	    camwatch.WithMetadata("location", "front gate"),
//	)
func NewCameraSpec(name, source string, opts ...CameraSpecOption) (CameraSpec, error) {
	if name == "" {
		return CameraSpec{}, errors.New("camera name cannot be empty")
	}
	if strings.ContainsAny(name, " \t\n") {
		return CameraSpec{}, fmt.Errorf("camera name %q cannot contain whitespace", name)
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return CameraSpec{}, fmt.Errorf("camera name %q cannot start or end with a slash", name)
	}

	parsed, err := url.Parse(source)
	if err != nil {
		return CameraSpec{}, errors.New("invalid source: " + err.Error())
	}
	if !sourceSchemes[parsed.Scheme] {
		return CameraSpec{}, fmt.Errorf("source scheme %q is not supported by the media server", parsed.Scheme)
	}

	cfg := &cameraSpecConfig{
		transport:    "tcp",
		startTimeout: defaultOnDemandStartTimeout,
		closeAfter:   defaultOnDemandCloseAfter,
		metadata:     make(map[string]string),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return CameraSpec{}, err
		}
	}

	metadata := cfg.metadata
	if len(metadata) == 0 {
		metadata = nil
	}

	return CameraSpec{
		name:          name,
		source:        source,
		transport:     cfg.transport,
		onDemand:      cfg.onDemand,
		startTimeout:  cfg.startTimeout,
		closeAfter:    cfg.closeAfter,
		udpReadBuffer: cfg.udpReadBuffer,
		metadata:      metadata,
	}, nil
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
