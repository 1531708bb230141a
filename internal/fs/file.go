package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
)

//go:generate mockgen -destination=mocks/mock_file.go -package=mocks github.com/ostafen/partview/internal/fs File

// File is a readable image handle: a regular file, a raw volume or a block device.
type File interface {
	io.ReadCloser
	io.ReaderAt
	Stat() (os.FileInfo, error)
}

// Size returns the readable length of f.
// Block devices report a zero size through Stat, so their length is queried from the kernel.
func Size(f File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("unable to stat image: %w", err)
	}

	if info.Mode()&os.ModeDevice == 0 {
		return info.Size(), nil
	}

	size, err := deviceSize(f)
	if errors.Is(err, errUnsupported) {
		return info.Size(), nil
	}
	if err != nil {
		return 0, err
	}
	return size, nil
}

var errUnsupported = errors.New("device size query not supported")

type fder interface {
	Fd() uintptr
}
