package camwatch

// Status represents the health state of a camera stream.
//
// Status is a string type that can hold one of four predefined values:
// [StatusChecking], [StatusOnline], [StatusOffline], or [StatusError].
// Using a string type allows for easy JSON serialization and human-readable
// logging while maintaining type safety through the defined constants.
//
// Transitions between statuses are governed exclusively by the status store's
// reconciliation rules. A camera never flips to an unhealthy status on a
// single failed probe: consecutive hard failures are counted, and only when
// the count reaches the configured threshold does the camera leave online.
// A single successful probe restores online immediately and resets the count.
type Status string

const (
	// StatusChecking indicates the camera's health has not been established.
	// New cameras start here, and cameras that were never online fall back
	// here while failures accumulate below the threshold.
	StatusChecking Status = "checking"

	// StatusOnline indicates the camera's stream is being served and the
	// last probe confirmed the playback manifest is reachable.
	StatusOnline Status = "online"

	// StatusOffline indicates a camera that had been online stopped
	// responding for at least the failure threshold. The stream was lost.
	StatusOffline Status = "offline"

	// StatusError indicates a camera that never came online and has failed
	// at least the failure threshold of consecutive probes. Typically a
	// misconfigured source or an unreachable device.
	StatusError Status = "error"
)

// String returns the string representation of the status.
// This implements the fmt.Stringer interface.
func (s Status) String() string {
	return string(s)
}
