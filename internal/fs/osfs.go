package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

var _ FS = (*OSFS)(nil)

// OSFS is the FS backed by the local OS filesystem.
// Platform-specific details (such as inode extraction) live in build-tagged files.
type OSFS struct{}

func New() *OSFS {
	return &OSFS{}
}

func (o *OSFS) Stat(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}

	return FileInfo{
		Path:  path,
		Size:  st.Size(),
		MTime: st.ModTime(),
		Inode: inodeOf(st),
		IsDir: st.IsDir(),
	}, nil
}

func (o *OSFS) Glob(pattern string) ([]string, error) {
	return glob(pattern)
}

// Remove deletes a single file. A file that is already gone is not an error.
func (o *OSFS) Remove(ctx context.Context, path string) error {
	return retry(ctx, "remove", func() error {
		err := os.Remove(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	})
}

func (o *OSFS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (o *OSFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func (o *OSFS) CopyFile(ctx context.Context, src, dst string) error {
	return copyWithRetry(ctx, o, src, dst)
}

func (o *OSFS) Rename(ctx context.Context, oldPath, newPath string) error {
	return renameWithRetry(ctx, oldPath, newPath)
}

func (o *OSFS) Digest(path string) (uint64, error) {
	return digestFile(path)
}
