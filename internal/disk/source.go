package disk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Source is a fixed-length, randomly addressable, read-only view over an image.
// Every read carries its own offset, so a Source can be shared by concurrent
// decoders as long as the underlying io.ReaderAt allows it.
type Source struct {
	r    io.ReaderAt
	size int64
}

// NewSource wraps r, whose readable length is size bytes.
func NewSource(r io.ReaderAt, size int64) *Source {
	return &Source{r: r, size: size}
}

// NewBytesSource returns a Source backed by an in-memory buffer.
func NewBytesSource(data []byte) *Source {
	return NewSource(bytes.NewReader(data), int64(len(data)))
}

// Size returns the total length of the image in bytes.
func (s *Source) Size() int64 {
	return s.size
}

// ReadAt returns exactly n bytes starting at off.
// If fewer than n bytes are available, the returned error wraps ErrShortRead.
func (s *Source) ReadAt(off, n int64) ([]byte, error) {
	if off < 0 || n < 0 {
		return nil, fmt.Errorf("invalid read of %d bytes at offset %d", n, off)
	}
	if off > s.size || n > s.size-off {
		return nil, fmt.Errorf("%w: %d bytes requested at offset %d, image size is %d", ErrShortRead, n, off, s.size)
	}

	buf := make([]byte, n)
	read, err := s.r.ReadAt(buf, off)
	if read == len(buf) {
		return buf, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read %d bytes at offset %d: %w", n, off, err)
	}
	return nil, fmt.Errorf("%w: read %d of %d bytes at offset %d", ErrShortRead, read, n, off)
}

// readStruct reads a fixed-size structure. A short read means the image
// ends inside the structure and is reported as ErrTruncatedImage.
func (s *Source) readStruct(off, n int64, what string) ([]byte, error) {
	b, err := s.ReadAt(off, n)
	if errors.Is(err, ErrShortRead) {
		return nil, fmt.Errorf("%w: %s: %w", ErrTruncatedImage, what, err)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
