package os

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// Errors returned by EnsureDir, wrapped with the offending path.
var (
	ErrNotDir   = errors.New("not a directory")
	ErrNotEmpty = errors.New("directory is not empty")
)

// EnsureDir makes sure dir exists, creating it with 0755 permissions when missing.
// With empty set, an existing dir must not contain any entry.
// The returned boolean reports whether the directory was created.
func EnsureDir(afs afero.Fs, dir string, empty bool) (bool, error) {
	isDir, err := afero.IsDir(afs, dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := afs.MkdirAll(dir, 0755); err != nil {
			return false, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	case !isDir:
		return false, fmt.Errorf("%s: %w", dir, ErrNotDir)
	case !empty:
		return false, nil
	}

	isEmpty, err := IsDirEmpty(afs, dir)
	if err != nil {
		return false, fmt.Errorf("failed to list directory %s: %w", dir, err)
	}
	if !isEmpty {
		return false, fmt.Errorf("%s: %w", dir, ErrNotEmpty)
	}
	return false, nil
}

// IsDirEmpty reports whether the directory at path has no entries.
func IsDirEmpty(afs afero.Fs, path string) (bool, error) {
	f, err := afs.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	names, err := f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return len(names) == 0, nil
}
