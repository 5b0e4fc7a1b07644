package camwatch

import "time"

// Camera is a point-in-time snapshot of a monitored camera.
//
// Camera is immutable from the caller's perspective: every accessor on
// [Monitor] returns copies, so a snapshot can be retained, serialized, or
// handed to other goroutines freely. The JSON field names match the REST API
// and SSE payloads served by the monitor.
type Camera struct {
	// ID is the stable identity of the camera: the media server path name.
	ID string `json:"id"`

	// Name is the display name. Defaults to the ID unless metadata from a
	// declared [CameraSpec] overrides it.
	Name string `json:"name"`

	// Source is the upstream address the media server pulls from, as
	// reported by the path configuration. "unknown" when the per-path
	// config fetch failed and a placeholder record was used.
	Source string `json:"source"`

	// IsActive records operator intent: whether panels should play this
	// camera. It is preserved across refreshes and never reset for a
	// camera that is already known.
	IsActive bool `json:"is_active"`

	// Status is the reconciled health state.
	Status Status `json:"status"`

	// LastSeen is the last time a probe confirmed the camera online.
	// Zero if the camera has never been online during this process.
	LastSeen time.Time `json:"last_seen"`

	// LastCheck is the time of the most recent settled probe.
	LastCheck time.Time `json:"last_check"`

	// ErrorCount is the number of consecutive hard probe failures.
	// Reset to zero by any successful probe.
	ErrorCount int `json:"error_count"`

	// HLSURL is the derived HLS manifest URL for playback and probing.
	HLSURL string `json:"hls_url"`

	// WebRTCURL is the derived WHEP URL for low-latency playback.
	WebRTCURL string `json:"webrtc_url"`

	// Metadata holds free-form key-value pairs attached to the camera.
	// Preserved across refreshes.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Stats summarizes the camera population at a point in time.
type Stats struct {
	// Total is the number of known cameras.
	Total int `json:"total"`

	// Online is the number of cameras with [StatusOnline].
	Online int `json:"online"`

	// Active is the number of cameras with operator intent enabled.
	Active int `json:"active"`

	// Errors is the number of cameras with [StatusError] or [StatusOffline].
	Errors int `json:"errors"`
}
