package store

import "time"

// Camera statuses as they appear in snapshots and over the wire.
//
// A camera starts in "checking" and stays there until probing has gathered
// enough evidence to commit to a verdict. "online" means the most recent
// settled probe succeeded. "offline" and "error" are both threshold
// verdicts reached after consecutive hard failures; "offline" is used for
// cameras that have been seen online during this process lifetime, "error"
// for cameras that never were.
const (
	StatusChecking = "checking"
	StatusOnline   = "online"
	StatusOffline  = "offline"
	StatusError    = "error"
)

// Camera is the storage snapshot of a monitored camera.
//
// Camera is optimized for JSON serialization (used by the REST API and
// SSE). It is decoupled from the prober's internal types to allow
// independent evolution, and joins identity fields with the camera's
// current health record.
type Camera struct {
	// ID is the MediaMTX path name and the camera's unique key.
	ID string `json:"id"`

	// Name is the camera's display name. Defaults to the ID.
	Name string `json:"name"`

	// Source is the upstream stream URL as reported by MediaMTX, or
	// "unknown" when the path's configuration could not be fetched.
	Source string `json:"source"`

	// IsActive reports whether the camera is selected for display.
	// It is operator intent, not health; inactive cameras are still probed.
	IsActive bool `json:"is_active"`

	// Status is the reconciled health verdict (see the Status constants).
	Status string `json:"status"`

	// LastSeen is the time of the most recent successful probe.
	// Zero if the camera has never been seen online by this process.
	LastSeen time.Time `json:"last_seen"`

	// LastCheck is the time of the most recent settled probe, regardless
	// of its outcome. Zero if no probe has settled yet.
	LastCheck time.Time `json:"last_check"`

	// ErrorCount is the number of consecutive hard failures observed.
	// Reset to zero by the first successful probe.
	ErrorCount int `json:"error_count"`

	// HLSURL is the derived HLS manifest URL used for playback and probing.
	HLSURL string `json:"hls_url"`

	// WebRTCURL is the derived WHEP endpoint URL for low-latency playback.
	WebRTCURL string `json:"webrtc_url"`

	// Metadata contains key-value annotations for grouping and filtering.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Stats summarizes the camera fleet for dashboards and health checks.
type Stats struct {
	// Total is the number of known cameras.
	Total int `json:"total"`

	// Online is the number of cameras currently reconciled as online.
	Online int `json:"online"`

	// Active is the number of cameras selected for display.
	Active int `json:"active"`

	// Errors is the number of cameras in a threshold verdict
	// (offline or error).
	Errors int `json:"errors"`
}

// camera is the mutable identity half of a camera's state. Health lives in
// a separate healthRecord so that clearing health never touches identity.
type camera struct {
	id        string
	name      string
	source    string
	isActive  bool
	lastSeen  time.Time
	hlsURL    string
	webrtcURL string
	metadata  map[string]string
}

// healthRecord is the reconciled health half of a camera's state.
//
// The zero value means "no settled probe yet" and snapshots as
// StatusChecking with a zero ErrorCount.
type healthRecord struct {
	status     string
	errorCount int
	lastCheck  time.Time
}

// normalized returns the record with the zero status made explicit.
func (r healthRecord) normalized() healthRecord {
	if r.status == "" {
		r.status = StatusChecking
	}
	return r
}
