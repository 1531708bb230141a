package mmap

import (
	"errors"
	"fmt"
	"io"
)

// ErrUnsupported is returned on platforms without mmap support.
var ErrUnsupported = errors.New("mmap is not supported on this platform")

// MmapFile represents a read-only memory-mapped file.
type MmapFile struct {
	Data     []byte // The memory-mapped byte slice
	FileSize int64  // Total size of the underlying file

	closer func() error
}

// ReadAt implements io.ReaderAt over the mapped region.
func (m *MmapFile) ReadAt(p []byte, off int64) (int, error) {
	if m.Data == nil {
		return 0, errors.New("mmap: file is closed")
	}
	if off < 0 {
		return 0, fmt.Errorf("mmap: negative offset %d", off)
	}
	if off >= int64(len(m.Data)) {
		return 0, io.EOF
	}

	n := copy(p, m.Data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Len returns the number of mapped bytes.
func (m *MmapFile) Len() int64 {
	return int64(len(m.Data))
}

// Close unmaps the memory region and closes the underlying file.
func (m *MmapFile) Close() error {
	if m.closer == nil {
		return nil
	}
	err := m.closer()
	m.closer = nil
	m.Data = nil
	return err
}
