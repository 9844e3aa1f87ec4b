// Package memfs is an in-memory fs.FS used to drive the watcher in tests.
// Modification times come from time.Now, so inside a synctest bubble they
// follow the fake clock.
package memfs

import (
	"context"
	"io/fs"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	wfs "github.com/raoulx24/watchfiles/internal/fs"
)

var _ wfs.FS = (*FS)(nil)

type file struct {
	info wfs.FileInfo
	data []byte
}

// FS holds files keyed by their cleaned path.
type FS struct {
	mu        sync.Mutex
	files     map[string]*file
	nextInode uint64
	globErr   error
	removeErr map[string]error
	statErr   map[string]error
	removed   []string
}

func New() *FS {
	return &FS{
		files:     map[string]*file{},
		removeErr: map[string]error{},
		statErr:   map[string]error{},
	}
}

// Write creates or appends to path, stamping it with the current time.
func (m *FS) Write(path string, data string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	f, ok := m.files[path]
	if !ok {
		m.nextInode++
		f = &file{info: wfs.FileInfo{Path: path, Inode: m.nextInode}}
		m.files[path] = f
	}
	f.data = append(f.data, data...)
	f.info.Size = int64(len(f.data))
	f.info.MTime = time.Now()
}

// Touch sets the modification time of path to now without changing content.
func (m *FS) Touch(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[filepath.Clean(path)]; ok {
		f.info.MTime = time.Now()
	}
}

// Delete drops path as if another process removed it.
func (m *FS) Delete(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, filepath.Clean(path))
}

// Exists reports whether path is present.
func (m *FS) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[filepath.Clean(path)]
	return ok
}

// FailGlob makes every Glob call fail with err until called with nil.
func (m *FS) FailGlob(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globErr = err
}

// FailRemove makes Remove(path) fail with err.
func (m *FS) FailRemove(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeErr[filepath.Clean(path)] = err
}

// FailStat makes Stat(path) fail with err while path exists.
func (m *FS) FailStat(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statErr[filepath.Clean(path)] = err
}

// Removed lists paths deleted through Remove, in call order.
func (m *FS) Removed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.removed)
}

func (m *FS) Glob(pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.globErr != nil {
		return nil, m.globErr
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, err
	}

	var out []string
	for p := range m.files {
		if ok, _ := filepath.Match(pattern, p); ok {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (m *FS) Stat(path string) (wfs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[filepath.Clean(path)]
	if !ok {
		return wfs.FileInfo{}, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	if err := m.statErr[filepath.Clean(path)]; err != nil {
		return wfs.FileInfo{}, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	return f.info, nil
}

func (m *FS) Remove(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	if err := m.removeErr[path]; err != nil {
		return err
	}
	delete(m.files, path)
	m.removed = append(m.removed, path)
	return nil
}

func (m *FS) CopyFile(_ context.Context, src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[filepath.Clean(src)]
	if !ok {
		return &fs.PathError{Op: "open", Path: src, Err: fs.ErrNotExist}
	}
	m.nextInode++
	cp := &file{info: f.info, data: slices.Clone(f.data)}
	cp.info.Path = filepath.Clean(dst)
	cp.info.Inode = m.nextInode
	m.files[cp.info.Path] = cp
	return nil
}

func (m *FS) Rename(_ context.Context, oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[filepath.Clean(oldPath)]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldPath, Err: fs.ErrNotExist}
	}
	delete(m.files, filepath.Clean(oldPath))
	f.info.Path = filepath.Clean(newPath)
	m.files[f.info.Path] = f
	return nil
}

func (m *FS) MkdirAll(string) error { return nil }

func (m *FS) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, filepath.Clean(path))
	return nil
}

func (m *FS) Digest(path string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[filepath.Clean(path)]
	if !ok {
		return 0, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return xxhash.Sum64(f.data), nil
}
