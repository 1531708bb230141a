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
package image

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/ostafen/partview/internal/disk"
	"github.com/ostafen/partview/internal/fs"
	"github.com/ostafen/partview/internal/mmap"
	"github.com/ostafen/partview/pkg/reader"
	"github.com/spf13/afero"
)

// ErrTooLarge is returned when a compressed image expands beyond the configured cap.
var ErrTooLarge = errors.New("decompressed image exceeds size limit")

// Kind describes how an image was acquired.
type Kind string

const (
	KindFile       Kind = "file"
	KindMmap       Kind = "mmap"
	KindSplit      Kind = "split"
	KindCompressed Kind = "compressed"
)

// Image is an opened disk image.
type Image struct {
	Name     string
	Kind     Kind
	Segments int

	r       io.ReaderAt
	size    int64
	closers []io.Closer
	closed  bool
}

// Size returns the image length in bytes.
func (img *Image) Size() int64 {
	return img.size
}

// ReaderAt returns the random access view of the image.
func (img *Image) ReaderAt() io.ReaderAt {
	return img.r
}

// Source returns a decoding source over the whole image.
func (img *Image) Source() *disk.Source {
	return disk.NewSource(img.r, img.size)
}

// Reader returns a sequential reader over the whole image.
func (img *Image) Reader() io.Reader {
	return io.NewSectionReader(img.r, 0, img.size)
}

// Close releases every handle of the image. Subsequent calls are no-ops.
func (img *Image) Close() error {
	if img.closed {
		return nil
	}
	img.closed = true

	var errs []error
	for _, c := range img.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	img.closers = nil
	return errors.Join(errs...)
}

// FromFile wraps an already opened file. The image takes ownership of f,
// which is closed on error as well.
func FromFile(name string, f fs.File) (*Image, error) {
	size, err := fs.Size(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Image{
		Name:     name,
		Kind:     KindFile,
		Segments: 1,
		r:        f,
		size:     size,
		closers:  []io.Closer{f},
	}, nil
}

// Opener opens images from a filesystem.
type Opener struct {
	Fs                  afero.Fs
	UseMmap             bool
	MaxDecompressedSize uint64
	Log                 *slog.Logger
}

func (o *Opener) log() *slog.Logger {
	if o.Log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Log
}

// Open selects the acquisition strategy from the path:
// split sets end in .001, compressed images carry a compression extension
// or magic number, everything else is read in place (memory-mapped when requested).
func (o *Opener) Open(path string) (*Image, error) {
	if strings.HasSuffix(path, ".001") {
		return o.openSplit(path)
	}
	if dec := decompressorFor(path); dec != nil {
		return o.openCompressed(path, dec)
	}

	volume := fs.IsVolumePath(path)
	if !volume {
		if dec, ext := o.sniff(path); dec != nil {
			o.log().Debug("compressed image detected by content", "path", path, "format", ext)
			return o.openCompressed(path, dec)
		}
	}

	if o.UseMmap && !volume {
		img, err := o.openMmap(path)
		if !errors.Is(err, mmap.ErrUnsupported) {
			return img, err
		}
		o.log().Warn("mmap unavailable, falling back to regular reads", "path", path)
	}

	f, err := fs.Open(o.Fs, path)
	if err != nil {
		return nil, err
	}
	return FromFile(path, f)
}

func (o *Opener) openMmap(path string) (*Image, error) {
	m, err := mmap.NewMmapFile(path)
	if err != nil {
		return nil, err
	}
	return &Image{
		Name:     path,
		Kind:     KindMmap,
		Segments: 1,
		r:        m,
		size:     m.Len(),
		closers:  []io.Closer{m},
	}, nil
}

// openSplit opens path and every consecutive sibling (.002, .003, ...).
func (o *Opener) openSplit(path string) (*Image, error) {
	base := strings.TrimSuffix(path, ".001")

	img := &Image{Name: path, Kind: KindSplit}

	var (
		readers []io.ReaderAt
		sizes   []int64
	)
	for i := 1; i <= 999; i++ {
		segPath := fmt.Sprintf("%s.%03d", base, i)
		if i > 1 {
			if ok, _ := afero.Exists(o.Fs, segPath); !ok {
				break
			}
		}

		f, err := fs.Open(o.Fs, segPath)
		if err != nil {
			img.Close()
			return nil, err
		}
		img.closers = append(img.closers, f)

		size, err := fs.Size(f)
		if err != nil {
			img.Close()
			return nil, fmt.Errorf("segment %s: %w", filepath.Base(segPath), err)
		}
		readers = append(readers, f)
		sizes = append(sizes, size)
	}

	mr, err := reader.NewMultiReaderAt(readers, sizes)
	if err != nil {
		img.Close()
		return nil, err
	}

	img.r = mr
	img.size = mr.Size()
	img.Segments = len(readers)
	return img, nil
}

type decompressor func(io.Reader) (io.ReadCloser, error)

var decompressors = map[string]decompressor{
	".gz": func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	},
	".zlib": zlib.NewReader,
	".zst": func(r io.Reader) (io.ReadCloser, error) {
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	},
	".bz2": func(r io.Reader) (io.ReadCloser, error) {
		return bzip2.NewReader(r, &bzip2.ReaderConfig{})
	},
	".sz": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(snappy.NewReader(r)), nil
	},
	".snappy": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(snappy.NewReader(r)), nil
	},
	".s2": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(s2.NewReader(r)), nil
	},
}

func decompressorFor(path string) decompressor {
	return decompressors[strings.ToLower(filepath.Ext(path))]
}

// openCompressed expands the whole image into memory, up to MaxDecompressedSize bytes.
func (o *Opener) openCompressed(path string, dec decompressor) (*Image, error) {
	f, err := fs.Open(o.Fs, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dr, err := dec(f)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize decompressor for %q: %w", path, err)
	}
	defer dr.Close()

	var buf bytes.Buffer
	limit := o.MaxDecompressedSize
	if limit == 0 || limit > uint64(maxInt64-1) {
		limit = uint64(maxInt64 - 1)
	}

	n, err := io.Copy(&buf, io.LimitReader(dr, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %q: %w", path, err)
	}
	if uint64(n) > limit {
		return nil, fmt.Errorf("%w: %q expands beyond %d bytes", ErrTooLarge, path, limit)
	}

	o.log().Debug("decompressed image", "path", path, "size", n)

	return &Image{
		Name:     path,
		Kind:     KindCompressed,
		Segments: 1,
		r:        bytes.NewReader(buf.Bytes()),
		size:     n,
	}, nil
}

const maxInt64 = 1<<63 - 1
