package handler

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/raoulx24/watchfiles/internal/fs"
	"github.com/raoulx24/watchfiles/internal/logging"
	"github.com/raoulx24/watchfiles/internal/retention"
)

// Archive copies each file into a root directory under a timestamped name,
// then prunes the directory.
type Archive struct {
	root      string
	fs        fs.FS
	retention *retention.Engine
	log       logging.Logger
}

func NewArchive(root string, filesystem fs.FS, r *retention.Engine, log logging.Logger) *Archive {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Archive{root: root, fs: filesystem, retention: r, log: log}
}

// Handle writes root/<mtime>-<name> through a temporary file that is only
// renamed into place once its digest matches the source.
func (a *Archive) Handle(ctx context.Context, path string) error {
	info, err := a.fs.Stat(path)
	if err != nil {
		return err
	}

	name := retention.Name(info.MTime, filepath.Base(path))
	tmp := filepath.Join(a.root, ".tmp-"+name)
	final := filepath.Join(a.root, name)
	a.log.Debug("archiving", "path", path, "tmp", tmp, "final", final)

	if err := a.fs.MkdirAll(a.root); err != nil {
		return fmt.Errorf("creating archive dir: %w", err)
	}

	if err := a.fs.CopyFile(ctx, path, tmp); err != nil {
		_ = a.fs.RemoveAll(tmp)
		return fmt.Errorf("copying %s: %w", path, err)
	}

	if err := a.verify(path, tmp); err != nil {
		_ = a.fs.RemoveAll(tmp)
		return err
	}

	if err := a.fs.Rename(ctx, tmp, final); err != nil {
		_ = a.fs.RemoveAll(tmp)
		return fmt.Errorf("finalizing %s: %w", final, err)
	}
	a.log.Info("archived", "path", path, "to", final)

	if a.retention != nil {
		if err := a.retention.Apply(ctx, a.root); err != nil {
			a.log.Error("retention failed", "root", a.root, "error", err)
		}
	}
	return nil
}

func (a *Archive) verify(src, dst string) error {
	want, err := a.fs.Digest(src)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", src, err)
	}
	got, err := a.fs.Digest(dst)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", dst, err)
	}
	if want != got {
		return fmt.Errorf("archived copy of %s does not match source (%016x != %016x)", src, got, want)
	}
	return nil
}
