package fs

import (
	"context"
	"errors"
	"io"
	"os"
)

// ErrSourceChanged is returned when the source file is modified while it is
// being copied.
var ErrSourceChanged = errors.New("source changed during copy")

// copyWithRetry copies src to dst. The source is stat'ed before and after
// each attempt; a replaced, touched or resized source fails the copy.
func copyWithRetry(ctx context.Context, f FS, src, dst string) error {
	before, err := f.Stat(src)
	if err != nil {
		return err
	}

	return retry(ctx, "copy", func() error {
		if err := copyContents(src, dst); err != nil {
			return err
		}
		after, err := f.Stat(src)
		if err != nil {
			return err
		}
		if sourceChanged(before, after) {
			return ErrSourceChanged
		}
		return nil
	})
}

// sourceChanged compares two stats of the same path.
func sourceChanged(before, after FileInfo) bool {
	replaced := before.Inode != 0 && after.Inode != 0 && before.Inode != after.Inode
	return replaced || after.MTime.After(before.MTime) || after.Size != before.Size
}

// copyContents writes src to dst, truncating dst, and fsyncs the result.
func copyContents(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
