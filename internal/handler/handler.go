// Package handler provides the file handlers the watchfiles CLI can run on
// mature files.
package handler

import (
	"fmt"

	"github.com/raoulx24/watchfiles/internal/config"
	"github.com/raoulx24/watchfiles/internal/fs"
	"github.com/raoulx24/watchfiles/internal/logging"
	"github.com/raoulx24/watchfiles/internal/retention"
	"github.com/raoulx24/watchfiles/internal/watcher"
)

// FromConfig builds the handler selected by cfg.Kind.
func FromConfig(cfg config.HandlerConfig, filesystem fs.FS, log logging.Logger) (watcher.Handler, error) {
	switch cfg.Kind {
	case "exec":
		return NewExec(cfg.Command, cfg.Timeout, log), nil
	case "archive":
		ret := retention.New(cfg.Archive.KeepLast, filesystem, log)
		return NewArchive(cfg.Archive.Root, filesystem, ret, log), nil
	case "log", "":
		return NewLog(filesystem, log), nil
	default:
		return nil, fmt.Errorf("unknown handler kind %q", cfg.Kind)
	}
}
