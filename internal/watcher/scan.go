package watcher

import (
	"errors"
	"fmt"
	"os"

	"go.trai.ch/zerr"

	"github.com/raoulx24/watchfiles/internal/snapshot"
)

type candidate struct {
	path  string
	state snapshot.FileState
}

type scanResult struct {
	candidates []candidate
	// present holds every matched path, readable or not.
	present map[string]struct{}
	skipped map[string]error
}

// scan lists the files matching the pattern together with their current
// metadata. Directories are ignored. A path that disappears between the
// listing and the stat is left to the missing-path bookkeeping.
func (w *Watcher) scan() (scanResult, error) {
	paths, err := w.fs.Glob(w.pattern)
	if err != nil {
		return scanResult{}, zerr.With(fmt.Errorf("%w: %w", ErrScan, err), "pattern", w.pattern)
	}

	res := scanResult{
		present: make(map[string]struct{}, len(paths)),
		skipped: map[string]error{},
	}

	for _, path := range paths {
		info, err := w.fs.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			res.present[path] = struct{}{}
			res.skipped[path] = err
			w.log.Warn("cannot read file metadata", "path", path, "error", err)
			continue
		}
		if info.IsDir {
			continue
		}

		res.present[path] = struct{}{}
		res.candidates = append(res.candidates, candidate{
			path:  path,
			state: snapshot.FromFileInfo(info),
		})
	}

	return res, nil
}
