package watcher

import (
	"time"

	"github.com/raoulx24/watchfiles/internal/snapshot"
)

// Maturity is the classification of a tracked file in one cycle.
type Maturity int

const (
	// Immature files have not been stable for long enough, or were first
	// seen this cycle.
	Immature Maturity = iota
	// Unstable files changed since the previous cycle.
	Unstable
	// Mature files are ready for dispatch.
	Mature
)

func (m Maturity) String() string {
	switch m {
	case Immature:
		return "immature"
	case Unstable:
		return "unstable"
	case Mature:
		return "mature"
	default:
		return "unknown"
	}
}

// Classify decides the maturity of snap given what this cycle's observation
// reported. A file is never mature on the cycle it is first seen or touched,
// even with a zero maturation, so at least one poll confirms it is stable.
func Classify(snap snapshot.Snapshot, obs snapshot.Observation, now time.Time, maturation time.Duration) Maturity {
	switch obs {
	case snapshot.New:
		return Immature
	case snapshot.Changed, snapshot.Anomaly:
		return Unstable
	}

	age := now.Sub(snap.LastModified)
	if age < 0 || age < maturation {
		return Immature
	}
	return Mature
}
