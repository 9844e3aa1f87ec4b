package watcher_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/raoulx24/watchfiles/internal/watcher"
)

func TestStopConditions(t *testing.T) {
	tests := []struct {
		name  string
		cond  watcher.StopCondition
		state watcher.StopState
		want  bool
	}{
		{name: "files found below", cond: watcher.FilesFound(3), state: watcher.StopState{Outcomes: 2}, want: false},
		{name: "files found reached", cond: watcher.FilesFound(3), state: watcher.StopState{Outcomes: 3}, want: true},
		{name: "files found exceeded", cond: watcher.FilesFound(3), state: watcher.StopState{Outcomes: 5}, want: true},
		{name: "files found zero", cond: watcher.FilesFound(0), state: watcher.StopState{}, want: true},
		{name: "elapsed below", cond: watcher.ElapsedTime(time.Minute), state: watcher.StopState{Elapsed: 59 * time.Second}, want: false},
		{name: "elapsed reached", cond: watcher.ElapsedTime(time.Minute), state: watcher.StopState{Elapsed: time.Minute}, want: true},
		{name: "idle below", cond: watcher.NoNewFilesSince(10 * time.Second), state: watcher.StopState{SinceLastChange: 9 * time.Second}, want: false},
		{name: "idle reached", cond: watcher.NoNewFilesSince(10 * time.Second), state: watcher.StopState{SinceLastChange: 10 * time.Second}, want: true},
		{name: "once before first cycle", cond: watcher.Once(), state: watcher.StopState{}, want: false},
		{name: "once after discovery cycle", cond: watcher.Once(), state: watcher.StopState{Iterations: 1}, want: false},
		{name: "once after confirming cycle", cond: watcher.Once(), state: watcher.StopState{Iterations: 2}, want: true},
		{name: "never", cond: watcher.Never(), state: watcher.StopState{Outcomes: 1000, Iterations: 1000, Elapsed: time.Hour}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.ShouldStop(tt.state))
			assert.NotEmpty(t, tt.cond.String())
		})
	}
}
