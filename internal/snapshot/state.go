package snapshot

import (
	"time"

	"github.com/raoulx24/watchfiles/internal/fs"
)

// FileState is what a single scan learns about a path.
type FileState struct {
	ModTime time.Time
	Size    int64
	Inode   uint64
}

// FromFileInfo constructs a FileState from filesystem metadata.
func FromFileInfo(info fs.FileInfo) FileState {
	return FileState{
		ModTime: info.MTime,
		Size:    info.Size,
		Inode:   info.Inode,
	}
}
