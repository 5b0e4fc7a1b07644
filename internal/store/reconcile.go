package store

import (
	"time"

	"github.com/camwatch/camwatch/internal/probe"
)

// reconcile applies one settled probe outcome to a camera's health record
// and returns the new record. It is a pure function; the caller owns
// locking and is responsible for persisting the result.
//
// The transition rules favor stability over reactivity:
//
//   - success: the camera is online, errorCount resets to zero. Recovery
//     always takes exactly one successful probe.
//   - soft failure (manifest not ready yet): errorCount is untouched. A
//     camera that was online stays online; anything else moves to checking.
//   - hard failure: errorCount increments. Below threshold an online
//     camera holds online and anything else moves to checking. At the
//     threshold the verdict commits: offline if the camera has been seen
//     online during this process lifetime, error if it never was.
//   - aborted: the probe never settled, so nothing changes. Cancelled
//     cycles and shutdowns must not count against a camera.
//
// threshold is the number of consecutive hard failures required to commit
// a verdict. seenOnline reports whether the camera has a non-zero LastSeen.
func reconcile(rec healthRecord, outcome probe.Outcome, seenOnline bool, threshold int, now time.Time) healthRecord {
	rec = rec.normalized()

	switch outcome {
	case probe.OutcomeSuccess:
		return healthRecord{status: StatusOnline, errorCount: 0, lastCheck: now}

	case probe.OutcomeSoft:
		next := rec
		next.lastCheck = now
		if rec.status != StatusOnline {
			next.status = StatusChecking
		}
		return next

	case probe.OutcomeHard:
		next := rec
		next.lastCheck = now
		next.errorCount = rec.errorCount + 1
		switch {
		case next.errorCount >= threshold && seenOnline:
			next.status = StatusOffline
		case next.errorCount >= threshold:
			next.status = StatusError
		case rec.status == StatusOnline:
			next.status = StatusOnline
		default:
			next.status = StatusChecking
		}
		return next

	default:
		// aborted or unknown: no state change
		return rec
	}
}
