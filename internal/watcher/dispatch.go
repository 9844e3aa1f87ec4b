package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/zerr"

	"github.com/raoulx24/watchfiles/internal/snapshot"
)

// dispatch runs the handler on a mature file and applies the deletion policy.
// The snapshot is dropped first, so the path is never dispatched twice within
// one watch even if the handler fails and the file keeps matching.
func (r *run) dispatch(ctx context.Context, snap snapshot.Snapshot) (out Outcome) {
	path := snap.Path
	ctx, span := r.w.tracer.Start(ctx, "dispatch", trace.WithAttributes(attribute.String("file.path", path)))
	defer func() { endDispatchSpan(span, out) }()

	r.store.Remove(path)
	r.dispatched[path] = struct{}{}

	if _, err := r.w.fs.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.w.log.Warn("mature file vanished before dispatch", "path", path)
			return r.failed(path, FailureVanished, zerr.With(zerr.Wrap(ErrVanished, ""), "path", path))
		}
		r.w.log.Error("cannot stat mature file, handler not run", "path", path, "error", err)
		return r.failed(path, FailureHandler, zerr.With(fmt.Errorf("%w: stat before dispatch: %w", ErrHandler, err), "path", path))
	}

	start := time.Now()
	if err := r.handle(ctx, path); err != nil {
		r.w.log.Error("handler failed", "path", path, "error", err)
		return r.failed(path, FailureHandler, zerr.With(fmt.Errorf("%w: %w", ErrHandler, err), "path", path))
	}
	r.w.log.Info("processed file", "path", path, "took", time.Since(start))

	if r.w.deleteOnCompletion {
		if err := r.w.fs.Remove(ctx, path); err != nil {
			r.w.log.Error("processed but failed to delete", "path", path, "error", err)
			return r.failed(path, FailureDeletion, zerr.With(fmt.Errorf("%w: %w", ErrDeletion, err), "path", path))
		}
		r.w.log.Debug("deleted processed file", "path", path)
	}

	return Outcome{Path: path, Status: Succeeded, Kind: FailureNone, At: time.Now()}
}

// handle calls the handler, turning a panic into an error.
func (r *run) handle(ctx context.Context, path string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	return r.w.handler.Handle(ctx, path)
}

func (r *run) failed(path string, kind FailureKind, err error) Outcome {
	return Outcome{Path: path, Status: Failed, Kind: kind, Err: err, At: time.Now()}
}
