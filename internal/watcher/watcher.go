// Package watcher polls for files matching a glob pattern, waits until each
// has stopped changing for the maturation period and hands it to a Handler
// exactly once.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/zerr"

	"github.com/raoulx24/watchfiles/internal/fs"
	"github.com/raoulx24/watchfiles/internal/logging"
	"github.com/raoulx24/watchfiles/internal/mailbox"
	"github.com/raoulx24/watchfiles/internal/snapshot"
)

const (
	DefaultCheckInterval = time.Second
	DefaultMaturation    = 5 * time.Second
)

// Watcher holds the watch configuration. Configure it with the builder
// methods, then call Watch; every Watch call starts from an empty state.
type Watcher struct {
	pattern            string
	handler            Handler
	interval           time.Duration
	maturation         time.Duration
	deleteOnCompletion bool
	maxScanFailures    int

	fs      fs.FS
	log     logging.Logger
	reports *mailbox.Mailbox[CycleReport]
	tracer  trace.Tracer
}

// New creates a watcher for files matching pattern.
func New(pattern string, h Handler) *Watcher {
	return &Watcher{
		pattern:    pattern,
		handler:    h,
		interval:   DefaultCheckInterval,
		maturation: DefaultMaturation,
		fs:         fs.New(),
		log:        logging.Nop(),
		tracer:     otel.Tracer(tracerName),
	}
}

// Maturation sets how long a file must go unmodified before it is processed.
func (w *Watcher) Maturation(d time.Duration) *Watcher {
	w.maturation = max(d, 0)
	return w
}

// CheckInterval sets the minimum time between two scans. Time spent in a
// cycle counts towards it.
func (w *Watcher) CheckInterval(d time.Duration) *Watcher {
	if d > 0 {
		w.interval = d
	}
	return w
}

// DeleteOnCompletion removes files the handler processed successfully.
func (w *Watcher) DeleteOnCompletion(del bool) *Watcher {
	w.deleteOnCompletion = del
	return w
}

// MaxScanFailures makes Watch give up after n consecutive failed scans.
// Zero keeps retrying forever.
func (w *Watcher) MaxScanFailures(n int) *Watcher {
	w.maxScanFailures = max(n, 0)
	return w
}

func (w *Watcher) WithFS(f fs.FS) *Watcher {
	if f != nil {
		w.fs = f
	}
	return w
}

func (w *Watcher) WithLogger(l logging.Logger) *Watcher {
	if l != nil {
		w.log = l
	}
	return w
}

// WithReports makes the watcher post a CycleReport after every cycle.
func (w *Watcher) WithReports(mb *mailbox.Mailbox[CycleReport]) *Watcher {
	w.reports = mb
	return w
}

// WithTracerProvider records spans on tp instead of the global provider.
func (w *Watcher) WithTracerProvider(tp trace.TracerProvider) *Watcher {
	if tp != nil {
		w.tracer = tp.Tracer(tracerName)
	}
	return w
}

func (w *Watcher) Pattern() string { return w.pattern }

// run is the state of one Watch invocation.
type run struct {
	w          *Watcher
	store      *snapshot.Store
	dispatched map[string]struct{}
	results    *Results

	start        time.Time
	lastChange   time.Time
	scanFailures int
}

// Watch polls until cond is met, ctx is cancelled or the filesystem stays
// unreadable for longer than MaxScanFailures allows. The results gathered so
// far are returned in every case; the error is nil only when cond was met.
func (w *Watcher) Watch(ctx context.Context, cond StopCondition) (*Results, error) {
	ctx, span := w.tracer.Start(ctx, "watch", trace.WithAttributes(
		attribute.String("watch.pattern", w.pattern),
		attribute.Int64("watch.maturation_ms", w.maturation.Milliseconds()),
	))
	defer span.End()

	res, err := w.watch(ctx, cond)
	span.SetAttributes(
		attribute.Int("watch.iterations", res.Iterations),
		attribute.Int("watch.outcomes", len(res.Outcomes)),
		attribute.Int("watch.failed", len(res.Failed())),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func (w *Watcher) watch(ctx context.Context, cond StopCondition) (*Results, error) {
	if w.handler == nil {
		return newResults(), ErrNoHandler
	}
	if _, err := filepath.Match(w.pattern, ""); err != nil {
		return newResults(), zerr.With(fmt.Errorf("%w: %w", ErrBadPattern, err), "pattern", w.pattern)
	}
	if cond == nil {
		cond = Never()
	}

	now := time.Now()
	r := &run{
		w:          w,
		store:      snapshot.NewStore(),
		dispatched: map[string]struct{}{},
		results:    newResults(),
		start:      now,
		lastChange: now,
	}

	w.log.Info("watch started",
		"pattern", w.pattern,
		"maturation", w.maturation,
		"interval", w.interval,
		"deleteOnCompletion", w.deleteOnCompletion,
		"stop", cond.String(),
	)

	for {
		cycleStart := time.Now()
		r.cycle(ctx)

		if w.maxScanFailures > 0 && r.scanFailures >= w.maxScanFailures {
			err := zerr.With(zerr.Wrap(ErrScanUnavailable, ""), "failures", r.scanFailures)
			w.log.Error("giving up after repeated scan failures", "failures", r.scanFailures)
			return r.finish(), err
		}

		if state := r.stopState(time.Now()); cond.ShouldStop(state) {
			w.log.Info("watch stopped", "reason", cond.String(), "dispatched", state.Outcomes)
			return r.finish(), nil
		}

		if !sleep(ctx, w.interval-time.Since(cycleStart)) {
			w.log.Info("watch cancelled", "error", ctx.Err())
			return r.finish(), ctx.Err()
		}
	}
}

// cycle runs one scan, observe, classify and dispatch pass.
func (r *run) cycle(ctx context.Context) {
	r.results.Iterations++
	report := CycleReport{Iteration: r.results.Iterations}

	ctx, span := r.w.tracer.Start(ctx, "cycle", trace.WithAttributes(attribute.Int("cycle.iteration", report.Iteration)))
	defer func() {
		report.Tracked = r.store.Len()
		report.Total = len(r.results.Outcomes)
		report.Elapsed = time.Since(r.start)
		if r.w.reports != nil {
			r.w.reports.Put(report)
		}
		endCycleSpan(span, report)
	}()

	scan, err := r.w.scan()
	if err != nil {
		r.scanFailures++
		report.ScanErr = err
		r.w.log.Warn("scan failed, skipping cycle", "error", err, "failures", r.scanFailures)
		return
	}
	r.scanFailures = 0

	for path := range r.results.Skipped {
		if _, ok := scan.present[path]; !ok {
			delete(r.results.Skipped, path)
		}
	}
	for path, err := range scan.skipped {
		r.results.Skipped[path] = err
	}

	now := time.Now()
	observed := make(map[string]snapshot.Observation, len(scan.candidates))
	for _, c := range scan.candidates {
		if _, done := r.dispatched[c.path]; done {
			continue
		}
		delete(r.results.Skipped, c.path)

		obs := r.store.Observe(c.path, c.state, now)
		observed[c.path] = obs
		switch obs {
		case snapshot.New:
			r.lastChange = now
			r.w.log.Debug("tracking new file", "path", c.path)
		case snapshot.Changed:
			r.lastChange = now
			r.w.log.Debug("file changed, maturity reset", "path", c.path)
		case snapshot.Anomaly:
			r.lastChange = now
			r.w.log.Warn("file replaced or modification time moved backwards", "path", c.path)
		}
	}

	for _, path := range r.store.MarkMissing(scan.present) {
		r.w.log.Debug("file disappeared, no longer tracked", "path", path)
	}

	var mature []snapshot.Snapshot
	for path, snap := range r.store.All() {
		obs, ok := observed[path]
		if !ok {
			// absent from this scan; wait for it to come back or be dropped
			continue
		}
		if Classify(snap, obs, now, r.w.maturation) == Mature {
			mature = append(mature, snap)
		}
	}
	report.Mature = len(mature)

	for _, snap := range mature {
		if ctx.Err() != nil {
			return
		}
		out := r.dispatch(ctx, snap)
		r.results.Outcomes = append(r.results.Outcomes, out)
		report.Dispatched++
		if out.Status == Failed {
			report.Failed++
		}
	}
}

func (r *run) stopState(now time.Time) StopState {
	return StopState{
		Outcomes:        len(r.results.Outcomes),
		Iterations:      r.results.Iterations,
		Elapsed:         now.Sub(r.start),
		SinceLastChange: now.Sub(r.lastChange),
	}
}

func (r *run) finish() *Results {
	res := r.results
	res.Elapsed = time.Since(r.start)
	res.NotProcessed = res.NotProcessed[:0]
	for path := range r.store.All() {
		res.NotProcessed = append(res.NotProcessed, path)
	}
	slices.Sort(res.NotProcessed)
	return res
}
