// Package fs defines the filesystem abstraction used by watchfiles.
// The watch loop only ever reads through Glob and Stat; Remove is the single
// mutating call it makes. The remaining methods back the archive handler.
package fs

import (
	"context"
	"time"
)

//go:generate mockgen -source=fs.go -destination=mocks/mock_fs.go -package=mocks

// FileInfo is the subset of file metadata the watcher tracks.
type FileInfo struct {
	Path  string
	Size  int64
	MTime time.Time
	Inode uint64
	IsDir bool
}

type FS interface {
	// Glob lists paths matching pattern. It fails when the directory the
	// pattern is rooted in cannot be read.
	Glob(pattern string) ([]string, error)
	Stat(path string) (FileInfo, error)
	Remove(ctx context.Context, path string) error
	CopyFile(ctx context.Context, src, dst string) error
	Rename(ctx context.Context, oldPath, newPath string) error
	MkdirAll(path string) error
	RemoveAll(path string) error
	// Digest returns an xxhash64 of the file contents.
	Digest(path string) (uint64, error)
}
