package watcher

import (
	"fmt"
	"time"
)

// StopState is everything a StopCondition may look at.
type StopState struct {
	// Outcomes is the number of dispatch attempts so far, failed ones included.
	Outcomes   int
	Iterations int
	Elapsed    time.Duration
	// SinceLastChange is the time since a new or touched file was last
	// observed, or since the watch started when none was.
	SinceLastChange time.Duration
}

// StopCondition decides after every cycle whether the watch ends.
type StopCondition interface {
	ShouldStop(s StopState) bool
	String() string
}

type filesFound int

// FilesFound stops once n files have been dispatched, whatever their outcome.
func FilesFound(n int) StopCondition { return filesFound(n) }

func (c filesFound) ShouldStop(s StopState) bool { return s.Outcomes >= int(c) }
func (c filesFound) String() string             { return fmt.Sprintf("files found: %d", int(c)) }

type elapsedTime time.Duration

// ElapsedTime stops once d has passed since the watch started.
func ElapsedTime(d time.Duration) StopCondition { return elapsedTime(d) }

func (c elapsedTime) ShouldStop(s StopState) bool { return s.Elapsed >= time.Duration(c) }
func (c elapsedTime) String() string {
	return fmt.Sprintf("elapsed: %s", time.Duration(c))
}

type noNewFilesSince time.Duration

// NoNewFilesSince stops once no file has appeared or changed for d.
func NoNewFilesSince(d time.Duration) StopCondition { return noNewFilesSince(d) }

func (c noNewFilesSince) ShouldStop(s StopState) bool {
	return s.SinceLastChange >= time.Duration(c)
}

func (c noNewFilesSince) String() string {
	return fmt.Sprintf("no new files since: %s", time.Duration(c))
}

type once struct{}

// Once makes a single pass: the first cycle discovers files and the second
// confirms they are unchanged, so files that were already old enough are
// dispatched before it stops.
func Once() StopCondition { return once{} }

func (once) ShouldStop(s StopState) bool { return s.Iterations >= 2 }
func (once) String() string              { return "once" }

type never struct{}

// Never keeps watching until the context is cancelled.
func Never() StopCondition { return never{} }

func (never) ShouldStop(StopState) bool { return false }
func (never) String() string            { return "never" }
