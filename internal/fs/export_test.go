package fs

import (
	"context"
	"time"
)

var (
	SourceChanged = sourceChanged
	IsTransient   = isTransient
)

// Retry runs fn with the given attempt budget and initial delay.
func Retry(ctx context.Context, attempts int, initial time.Duration, fn func() error) error {
	return backoff{attempts: attempts, initial: initial}.do(ctx, "test", fn)
}
