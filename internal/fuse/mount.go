//go:build !linux
// +build !linux

package fuse

import (
	"errors"
	"io"
	"log/slog"

	"github.com/ostafen/partview/internal/disk"
)

var ErrUnsupported = errors.New("FUSE mount is only supported on Linux")

func Mount(mountpoint string, r io.ReaderAt, parts []disk.Partition, log *slog.Logger) error {
	return ErrUnsupported
}
