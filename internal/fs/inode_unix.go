//go:build unix

package fs

import (
	"os"
	"syscall"
)

// inodeOf lets the watcher notice a file that was replaced (rotated or
// re-created) under the same name.
func inodeOf(info os.FileInfo) uint64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return uint64(st.Ino) //nolint:unconvert // Ino is not uint64 on every unix
}
