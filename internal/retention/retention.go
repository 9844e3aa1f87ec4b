// Package retention prunes old files from the archive directory.
package retention

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/raoulx24/watchfiles/internal/fs"
	"github.com/raoulx24/watchfiles/internal/logging"
)

// TimestampLayout prefixes every archived file name.
const TimestampLayout = "2006-01-02T15-04-05"

type Engine struct {
	keep int
	fs   fs.FS
	log  logging.Logger
}

// New keeps the newest keep archived files; zero keeps everything.
func New(keep int, filesystem fs.FS, log logging.Logger) *Engine {
	return &Engine{keep: keep, fs: filesystem, log: log}
}

type archived struct {
	Timestamp time.Time
	Path      string
}

// Apply deletes all but the newest archived files in dir. Files without a
// timestamp prefix are left alone. Individual delete failures are logged.
func (e *Engine) Apply(ctx context.Context, dir string) error {
	if e.keep <= 0 {
		return nil
	}

	entries, err := e.scan(dir)
	if err != nil {
		return err
	}
	if len(entries) <= e.keep {
		return nil
	}

	// newest first; ties broken by name so the result is stable
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.After(entries[j].Timestamp)
		}
		return entries[i].Path > entries[j].Path
	})

	for _, a := range entries[e.keep:] {
		if err := e.fs.Remove(ctx, a.Path); err != nil {
			e.log.Error("retention: delete failed", "path", a.Path, "error", err)
			continue
		}
		e.log.Debug("retention: deleted", "path", a.Path)
	}
	return nil
}

func (e *Engine) scan(dir string) ([]archived, error) {
	paths, err := e.fs.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return nil, err
	}

	var out []archived
	for _, p := range paths {
		ts, ok := ParseName(filepath.Base(p))
		if !ok {
			continue
		}
		out = append(out, archived{Timestamp: ts, Path: p})
	}
	return out, nil
}

// Name builds the archived name of a file modified at mod.
func Name(mod time.Time, base string) string {
	return mod.UTC().Format(TimestampLayout) + "-" + base
}

// ParseName extracts the timestamp prefix written by Name.
func ParseName(name string) (time.Time, bool) {
	if len(name) <= len(TimestampLayout)+1 || strings.HasPrefix(name, ".") {
		return time.Time{}, false
	}
	if name[len(TimestampLayout)] != '-' {
		return time.Time{}, false
	}
	ts, err := time.Parse(TimestampLayout, name[:len(TimestampLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
