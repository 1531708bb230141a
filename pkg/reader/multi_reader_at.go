// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package reader

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// MultiReaderAt exposes a sequence of readers as one contiguous address space.
// It is used to join the segments of a split raw image (.001, .002, ...).
type MultiReaderAt struct {
	readers  []io.ReaderAt
	cumSizes []int64 // cumSizes[i] is the end offset of readers[i]
	size     int64   // total size
}

// NewMultiReaderAt joins readers, whose lengths are given by sizes.
func NewMultiReaderAt(readers []io.ReaderAt, sizes []int64) (*MultiReaderAt, error) {
	if len(readers) != len(sizes) {
		return nil, fmt.Errorf("MultiReaderAt: got %d readers and %d sizes", len(readers), len(sizes))
	}

	cumSizes := make([]int64, len(sizes))

	size := int64(0)
	for i, s := range sizes {
		if s < 0 {
			return nil, fmt.Errorf("MultiReaderAt: negative size for reader %d", i)
		}
		size += s
		cumSizes[i] = size
	}

	return &MultiReaderAt{
		readers:  readers,
		cumSizes: cumSizes,
		size:     size,
	}, nil
}

// Size returns the combined length of all readers.
func (r *MultiReaderAt) Size() int64 {
	return r.size
}

func (r *MultiReaderAt) ReadAt(buf []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("MultiReaderAt.ReadAt: negative offset")
	}
	if off >= r.size {
		return 0, io.EOF
	}

	i := sort.Search(len(r.readers), func(i int) bool {
		return r.cumSizes[i] > off
	})

	bytesRead := 0
	for bytesRead < len(buf) && i < len(r.readers) {
		var base int64
		if i > 0 {
			base = r.cumSizes[i-1]
		}

		want := min(int64(len(buf)-bytesRead), r.cumSizes[i]-off)
		n, err := r.readers[i].ReadAt(buf[bytesRead:bytesRead+int(want)], off-base)
		bytesRead += n
		off += int64(n)

		if int64(n) < want {
			if err == nil || errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return bytesRead, fmt.Errorf("MultiReaderAt: segment %d: %w", i, err)
		}
		i++
	}

	if bytesRead < len(buf) {
		return bytesRead, io.EOF
	}
	return bytesRead, nil
}
