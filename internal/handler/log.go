package handler

import (
	"context"

	"github.com/raoulx24/watchfiles/internal/fs"
	"github.com/raoulx24/watchfiles/internal/logging"
)

// Log only reports the file. Combined with deleteOnCompletion disabled it is
// a dry run.
type Log struct {
	fs  fs.FS
	log logging.Logger
}

func NewLog(filesystem fs.FS, log logging.Logger) *Log {
	return &Log{fs: filesystem, log: log}
}

func (l *Log) Handle(_ context.Context, path string) error {
	info, err := l.fs.Stat(path)
	if err != nil {
		return err
	}
	l.log.Info("mature file", "path", path, "size", info.Size, "modified", info.MTime)
	return nil
}
