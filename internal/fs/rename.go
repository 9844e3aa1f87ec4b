package fs

import (
	"context"
	"os"
)

// renameWithRetry is the atomic publish step of the archive handler.
func renameWithRetry(ctx context.Context, oldPath, newPath string) error {
	return retry(ctx, "rename", func() error {
		return os.Rename(oldPath, newPath)
	})
}
