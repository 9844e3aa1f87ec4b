package fs

import (
	"context"
	"fmt"
	"time"
)

// backoff retries an operation while it fails with a transient error,
// doubling the delay after every attempt.
type backoff struct {
	attempts int
	initial  time.Duration
}

var defaultBackoff = backoff{attempts: 5, initial: 100 * time.Millisecond}

// retry runs fn under the default backoff. Remove, copy and rename use it.
func retry(ctx context.Context, op string, fn func() error) error {
	return defaultBackoff.do(ctx, op, fn)
}

func (b backoff) do(ctx context.Context, op string, fn func() error) error {
	delay := b.initial
	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = fn(); err == nil {
			return nil
		}
		if !isTransient(err) {
			return fmt.Errorf("%s: %w", op, err)
		}
		if attempt >= b.attempts {
			return fmt.Errorf("%s: giving up after %d attempts: %w", op, attempt, err)
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
