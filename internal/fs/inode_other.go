//go:build !unix

package fs

import "os"

// Without POSIX inodes, zero disables replacement detection.
func inodeOf(_ os.FileInfo) uint64 {
	return 0
}
