package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// glob wraps filepath.Glob. filepath.Glob ignores I/O errors, so the static
// directory the pattern is rooted in is read first and its error surfaced.
func glob(pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, err
	}

	base := BaseDir(pattern)
	f, err := os.Open(base)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", base, err)
	}
	_, err = f.Readdirnames(1)
	_ = f.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading %s: %w", base, err)
	}

	return filepath.Glob(pattern)
}

// BaseDir returns the longest leading directory of pattern that contains no
// glob metacharacters.
func BaseDir(pattern string) string {
	dir := filepath.Dir(pattern)
	for hasMeta(dir) {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return dir
}

func hasMeta(path string) bool {
	magic := `*?[`
	if os.PathSeparator != '\\' {
		magic = `*?[\`
	}
	return strings.ContainsAny(path, magic)
}
