// Package app wires configuration, handler and watcher together for the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"

	"github.com/raoulx24/watchfiles/internal/config"
	"github.com/raoulx24/watchfiles/internal/fs"
	"github.com/raoulx24/watchfiles/internal/handler"
	"github.com/raoulx24/watchfiles/internal/logging"
	"github.com/raoulx24/watchfiles/internal/mailbox"
	"github.com/raoulx24/watchfiles/internal/watcher"
)

// ErrFilesFailed is returned when at least one file ended in a Failed outcome.
var ErrFilesFailed = zerr.New("some files failed")

// App runs watch invocations described by a Config.
type App struct {
	fs  fs.FS
	log logging.Logger
}

// New creates an App on filesystem. A nil filesystem means the OS.
func New(filesystem fs.FS) *App {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &App{fs: filesystem}
}

// WithLogger makes Run log to l instead of building a logger from the
// config's logging section.
func (a *App) WithLogger(l logging.Logger) *App {
	a.log = l
	return a
}

// Run executes cfg until its stop condition holds or ctx ends. With a
// schedule set, every tick starts an independent invocation and Run only
// returns once ctx ends.
func (a *App) Run(ctx context.Context, cfg *config.Config) error {
	log, err := a.logger(cfg.Logging)
	if err != nil {
		return err
	}

	h, err := handler.FromConfig(cfg.Handler, a.fs, log)
	if err != nil {
		return err
	}
	cond, err := StopCondition(cfg.Stop)
	if err != nil {
		return err
	}

	if cfg.Watch.Schedule != "" {
		return a.scheduled(ctx, cfg, h, cond, log)
	}

	res, err := a.watch(ctx, cfg, h, cond, log)
	if err != nil && !interrupted(ctx, err) {
		return err
	}
	summarize(log, res)
	if res != nil && len(res.Failed()) > 0 {
		return zerr.With(zerr.Wrap(ErrFilesFailed, ""), "failed", len(res.Failed()))
	}
	return nil
}

func (a *App) logger(cfg config.LoggingConfig) (logging.Logger, error) {
	if a.log != nil {
		return a.log, nil
	}
	return logging.New(logging.Options{
		Level:      cfg.Level,
		Format:     cfg.Format,
		File:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	})
}

// StopCondition maps the stop section of the config to a watcher condition.
func StopCondition(cfg config.StopConfig) (watcher.StopCondition, error) {
	switch cfg.Mode {
	case "files":
		return watcher.FilesFound(cfg.Files), nil
	case "elapsed":
		return watcher.ElapsedTime(cfg.Elapsed), nil
	case "idle":
		return watcher.NoNewFilesSince(cfg.Idle), nil
	case "once":
		return watcher.Once(), nil
	case "never", "":
		return watcher.Never(), nil
	default:
		return nil, fmt.Errorf("unknown stop mode %q", cfg.Mode)
	}
}

// watch runs one invocation while a reporter goroutine logs cycle reports.
func (a *App) watch(ctx context.Context, cfg *config.Config, h watcher.Handler, cond watcher.StopCondition, log logging.Logger) (*watcher.Results, error) {
	reports := mailbox.New[watcher.CycleReport]()
	w := watcher.New(cfg.Source.Pattern, h).
		Maturation(cfg.Watch.Maturation).
		CheckInterval(cfg.Watch.PollInterval).
		DeleteOnCompletion(cfg.Watch.DeleteOnCompletion).
		MaxScanFailures(cfg.Watch.MaxScanFailures).
		WithFS(a.fs).
		WithLogger(log).
		WithReports(reports)

	log.Info("watching",
		"pattern", cfg.Source.Pattern,
		"maturation", cfg.Watch.Maturation,
		"interval", cfg.Watch.PollInterval,
		"stop", cond.String(),
	)

	reportCtx, stopReports := context.WithCancel(ctx)
	defer stopReports()

	var res *watcher.Results
	g, gctx := errgroup.WithContext(reportCtx)
	g.Go(func() error {
		defer stopReports()
		var err error
		res, err = w.Watch(ctx, cond)
		return err
	})
	g.Go(func() error {
		for {
			r, ok := reports.Take(gctx)
			if !ok {
				return nil
			}
			logReport(log, r)
		}
	})

	err := g.Wait()
	if r := reports.TryTake(); r != nil {
		logReport(log, *r)
	}
	return res, err
}

// scheduled starts an invocation on every cron tick. A tick that fires
// while the previous invocation still runs is skipped.
func (a *App) scheduled(ctx context.Context, cfg *config.Config, h watcher.Handler, cond watcher.StopCondition, log logging.Logger) error {
	cl := logging.CronLogger(log)
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	var (
		mu     sync.Mutex
		failed int
		errs   []error
	)
	_, err := c.AddFunc(cfg.Watch.Schedule, func() {
		res, err := a.watch(ctx, cfg, h, cond, log)
		summarize(log, res)

		mu.Lock()
		defer mu.Unlock()
		if err != nil && !interrupted(ctx, err) {
			log.Error("scheduled watch failed", "error", err)
			errs = append(errs, err)
		}
		if res != nil {
			failed += len(res.Failed())
		}
	})
	if err != nil {
		return fmt.Errorf("parsing schedule %q: %w", cfg.Watch.Schedule, err)
	}

	log.Info("schedule started", "schedule", cfg.Watch.Schedule)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	log.Info("schedule stopped")

	mu.Lock()
	defer mu.Unlock()
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if failed > 0 {
		return zerr.With(zerr.Wrap(ErrFilesFailed, ""), "failed", failed)
	}
	return nil
}

// interrupted reports whether err only says that ctx ended.
func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, ctx.Err())
}

func logReport(log logging.Logger, r watcher.CycleReport) {
	kv := []any{
		"iteration", r.Iteration,
		"tracked", r.Tracked,
		"mature", r.Mature,
		"dispatched", r.Dispatched,
		"failed", r.Failed,
		"total", r.Total,
		"elapsed", r.Elapsed,
	}
	switch {
	case r.ScanErr != nil:
		log.Warn("cycle skipped", append(kv, "error", r.ScanErr)...)
	case r.Dispatched > 0:
		log.Info("cycle", kv...)
	default:
		log.Debug("cycle", kv...)
	}
}

func summarize(log logging.Logger, res *watcher.Results) {
	if res == nil {
		return
	}
	for _, o := range res.Failed() {
		log.Error("file failed", "path", o.Path, "kind", o.Kind.String(), "reason", o.Reason())
	}
	log.Info("watch finished",
		"succeeded", len(res.Succeeded()),
		"failed", len(res.Failed()),
		"notProcessed", len(res.NotProcessed),
		"skipped", len(res.Skipped),
		"iterations", res.Iterations,
		"elapsed", res.Elapsed.Round(time.Millisecond),
	)
}
