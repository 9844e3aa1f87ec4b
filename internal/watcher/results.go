package watcher

import (
	"time"
)

// Status is the coarse result of a dispatch.
type Status int

const (
	Succeeded Status = iota
	Failed
)

func (s Status) String() string {
	if s == Succeeded {
		return "succeeded"
	}
	return "failed"
}

// FailureKind tells apart the ways a dispatch can fail.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureHandler
	FailureDeletion
	FailureVanished
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureHandler:
		return "handler"
	case FailureDeletion:
		return "deletion"
	case FailureVanished:
		return "vanished"
	default:
		return "unknown"
	}
}

// Outcome records one dispatch.
type Outcome struct {
	Path   string
	Status Status
	Kind   FailureKind
	Err    error
	At     time.Time
}

// Reason is the failure message, empty on success.
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Results is what a watch invocation hands back when it ends.
type Results struct {
	// Outcomes are in dispatch order.
	Outcomes []Outcome
	// Skipped holds paths whose metadata could not be read, with the last error.
	Skipped map[string]error
	// NotProcessed holds paths still maturing when the watch stopped.
	NotProcessed []string
	Iterations   int
	Elapsed      time.Duration
}

func newResults() *Results {
	return &Results{Skipped: map[string]error{}}
}

// Succeeded returns the successful outcomes.
func (r *Results) Succeeded() []Outcome {
	return r.filter(Succeeded)
}

// Failed returns the failed outcomes.
func (r *Results) Failed() []Outcome {
	return r.filter(Failed)
}

func (r *Results) filter(s Status) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == s {
			out = append(out, o)
		}
	}
	return out
}

// CycleReport summarises one poll cycle.
type CycleReport struct {
	Iteration  int
	Tracked    int
	Mature     int
	Dispatched int
	Failed     int
	Total      int
	Elapsed    time.Duration
	ScanErr    error
}
