package watcher

import (
	"context"
	"time"
)

// sleep waits for d or until ctx is done, reporting whether the full wait
// elapsed. A non-positive d only checks ctx.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
