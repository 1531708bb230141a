//go:build !windows
// +build !windows

package fs

import (
	"fmt"

	"github.com/spf13/afero"
)

// Open opens path for reading on afs.
func Open(afs afero.Fs, path string) (File, error) {
	f, err := afs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	return f, nil
}
