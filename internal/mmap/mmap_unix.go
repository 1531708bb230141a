//go:build unix

package mmap

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// NewMmapFile maps the whole file at filePath read-only.
// If mapping a raw disk device, ensure the program has the required privileges.
func NewMmapFile(filePath string) (*MmapFile, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get file info for %q: %w", filePath, err)
	}

	fileSize := fi.Size()
	if fileSize == 0 {
		f.Close()
		return nil, fmt.Errorf("file %q is empty, cannot mmap", filePath)
	}
	if int64(int(fileSize)) != fileSize {
		f.Close()
		return nil, fmt.Errorf("file %q is too large to be mapped", filePath)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(fileSize), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mmap file %q with length %d: %w", filePath, fileSize, err)
	}

	return &MmapFile{
		Data:     data,
		FileSize: fileSize,
		closer: func() error {
			if err := unix.Munmap(data); err != nil {
				f.Close()
				return fmt.Errorf("failed to munmap: %w", err)
			}
			return f.Close()
		},
	}, nil
}
