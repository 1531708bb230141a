package inspect

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/ostafen/partview/internal/disk"
	"github.com/ostafen/partview/pkg/dfxml"
	osutils "github.com/ostafen/partview/pkg/util/os"
	"github.com/spf13/afero"
)

// PartitionFileName is the name under which partition num is extracted or mounted.
func PartitionFileName(num int) string {
	return fmt.Sprintf("p%d.img", num)
}

// Extract copies every partition of r to dir/p<N>.img. dir must be empty
// or missing. Partitions that run past the end of the image are truncated.
func Extract(afs afero.Fs, r io.ReaderAt, size int64, parts []disk.Partition, dir string, bufSize int, log *slog.Logger) ([]string, error) {
	if _, err := osutils.EnsureDir(afs, dir, true); err != nil {
		return nil, err
	}
	if bufSize <= 0 {
		bufSize = 1024 * 1024
	}

	paths := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.Malformed {
			log.Warn("partition has a malformed extent, skipping", "partition", p.Num)
			continue
		}
		length, ok := clampExtent(p, size)
		if !ok {
			log.Warn("partition starts past the end of the image, skipping", "partition", p.Num, "offset", p.Offset)
			continue
		}
		if length < int64(p.Size) {
			log.Warn("partition extends past the end of the image, truncating", "partition", p.Num, "size", p.Size, "available", length)
		}

		path := filepath.Join(dir, PartitionFileName(p.Num))
		log.Info("extracting partition", "partition", p.Num, "path", path)

		if err := dumpPartition(afs, path, io.NewSectionReader(r, int64(p.Offset), length), bufSize); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// clampExtent returns the number of bytes of p that lie inside an image of the given size.
func clampExtent(p disk.Partition, size int64) (int64, bool) {
	if p.Offset >= uint64(size) {
		return 0, false
	}
	return int64(min(p.Size, uint64(size)-p.Offset)), true
}

func dumpPartition(afs afero.Fs, path string, r io.Reader, bufSize int) error {
	f, err := afs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, bufSize)
	if _, err := io.Copy(w, r); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// PartitionsFromVolumes rebuilds partition extents from a saved DFXML report.
func PartitionsFromVolumes(volumes []dfxml.Volume) ([]disk.Partition, error) {
	parts := make([]disk.Partition, len(volumes))
	for i, v := range volumes {
		runs := v.ByteRuns.Runs
		if len(runs) < 1 {
			return nil, fmt.Errorf("invalid report file: volume %d has no byte runs", v.PartitionIndex)
		}

		blockSize := v.BlockSize
		if blockSize == 0 {
			blockSize = disk.SectorSize
		}
		parts[i] = disk.Partition{
			Num:       v.PartitionIndex,
			Offset:    runs[0].ImgOffset,
			Size:      runs[0].Length,
			BlockSize: blockSize,
			Name:      v.PartitionName,
			Bootable:  v.Bootable,
		}
	}
	return parts, nil
}
