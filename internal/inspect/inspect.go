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
package inspect

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ostafen/partview/internal/disk"
	"github.com/ostafen/partview/internal/hash"
	"github.com/ostafen/partview/internal/image"
	"github.com/ostafen/partview/internal/parttype"
	"github.com/ostafen/partview/internal/report"
	"github.com/ostafen/partview/pkg/pbar"
	osutils "github.com/ostafen/partview/pkg/util/os"
	"github.com/spf13/afero"
)

type Options struct {
	Fs       afero.Fs
	Out      io.Writer // report destination
	Progress io.Writer // live progress destination, nil disables it
	Log      *slog.Logger
	Types    *parttype.Lookup
	Report   report.Options

	Hash           bool
	HashAlgorithms []string
	OutputDir      string // where hash files are saved

	// Offsets are boot-record offsets, applied to partitions in table order.
	Offsets []int64

	UseMmap             bool
	MaxDecompressedSize uint64
	BufferSize          int
}

func (opts *Options) logger() *slog.Logger {
	if opts.Log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return opts.Log
}

// Open opens the image at path as configured by opts.
func Open(path string, opts Options) (*image.Image, error) {
	o := &image.Opener{
		Fs:                  opts.Fs,
		UseMmap:             opts.UseMmap,
		MaxDecompressedSize: opts.MaxDecompressedSize,
		Log:                 opts.Log,
	}
	img, err := o.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %q: %w", path, err)
	}
	return img, nil
}

// Run analyzes the image at path and writes the report to opts.Out.
func Run(path string, opts Options) (*report.Report, error) {
	img, err := Open(path, opts)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	r, err := Analyze(img, opts)
	if err != nil {
		return nil, err
	}

	if err := report.Write(opts.Out, r, opts.Report); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return r, nil
}

// Analyze hashes the image when requested, decodes its partition table
// and dumps the requested boot records.
func Analyze(img *image.Image, opts Options) (*report.Report, error) {
	log := opts.logger()
	start := time.Now()

	var sums []hash.Sum
	if opts.Hash {
		var err error
		if sums, err = HashImage(img, opts); err != nil {
			return nil, err
		}
	}

	src := img.Source()

	table, err := disk.Read(src)
	if err != nil {
		return nil, err
	}
	log.Info("partition table decoded", "image", img.Name, "scheme", table.Scheme, "partitions", table.Len())

	r := report.New(img.Name, img.Size(), table, opts.Types)
	r.Hashes = sums

	if table.Scheme == disk.SchemeGPT {
		if err := table.GPTHeader.VerifyHeaderCRC(); err != nil {
			r.Warn(err.Error())
		}
		if err := table.GPTHeader.VerifyArrayCRC(src); err != nil {
			r.Warn(err.Error())
		}
	}

	r.BootRecords = BootRecords(src, table.Partitions(), opts.Offsets)

	for _, msg := range r.Warnings {
		log.Warn(msg, "image", img.Name)
	}
	log.Debug("analysis completed", "image", img.Name, "duration", FormatDurationHMS(time.Since(start)))
	return r, nil
}

// HashImage computes the configured digests of img and saves one file per
// digest to opts.OutputDir.
func HashImage(img *image.Image, opts Options) ([]hash.Sum, error) {
	log := opts.logger()

	var progress io.Writer
	var bar *pbar.ProgressBarState
	if opts.Progress != nil {
		bar = pbar.NewProgressBarState(opts.Progress, "Hashing", img.Size())
		progress = bar
	}

	start := time.Now()
	sums, err := hash.Compute(img.Reader(), opts.HashAlgorithms, progress, opts.BufferSize)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return nil, err
	}
	log.Info("hash calculation completed", "image", img.Name, "duration", FormatDurationHMS(time.Since(start)))

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	if _, err := osutils.EnsureDir(opts.Fs, dir, false); err != nil {
		return nil, err
	}

	paths, err := hash.Save(opts.Fs, dir, img.Name, sums)
	for _, p := range paths {
		log.Info("hash saved", "path", p)
	}
	if err != nil {
		return nil, err
	}
	return sums, nil
}

var (
	errNegativeOffset  = errors.New("boot record offset is before the start of the image")
	errMalformedExtent = errors.New("partition extent is malformed")
)

// BootRecords dumps report.BootRecordSize bytes at offsets[i] past the start
// of parts[i]. Extra offsets or partitions are ignored. Unreadable dumps are
// recorded as failed and do not stop the others.
func BootRecords(src *disk.Source, parts []disk.Partition, offsets []int64) []report.BootRecord {
	n := min(len(parts), len(offsets))
	if n == 0 {
		return nil
	}

	records := make([]report.BootRecord, 0, n)
	for i := 0; i < n; i++ {
		p, off := parts[i], offsets[i]
		startLBA := p.Offset / disk.SectorSize
		if p.Malformed {
			records = append(records, report.FailedBootRecord(p.Num, startLBA, off, errMalformedExtent))
			continue
		}

		pos, err := bootRecordPos(p.Offset, off)
		if err != nil {
			records = append(records, report.FailedBootRecord(p.Num, startLBA, off, err))
			continue
		}

		data, err := src.ReadAt(pos, report.BootRecordSize)
		if err != nil {
			records = append(records, report.FailedBootRecord(p.Num, startLBA, off, err))
			continue
		}
		records = append(records, report.NewBootRecord(p.Num, startLBA, off, data))
	}
	return records
}

func bootRecordPos(partOffset uint64, off int64) (int64, error) {
	const maxInt64 = 1<<63 - 1
	if partOffset > maxInt64 || (off > 0 && int64(partOffset) > maxInt64-off) {
		return 0, disk.ErrShortRead
	}
	pos := int64(partOffset) + off
	if pos < 0 {
		return 0, errNegativeOffset
	}
	return pos, nil
}

// FormatDurationHMS formats a time.Duration into HH:MM:SS string.
// Durations shorter than a second are shown in fractional seconds.
func FormatDurationHMS(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	totalSeconds := int64(d.Seconds())

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
