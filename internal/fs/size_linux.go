//go:build linux
// +build linux

package fs

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// deviceSize issues BLKGETSIZE64 on the file descriptor backing f.
func deviceSize(f File) (int64, error) {
	d, ok := f.(fder)
	if !ok {
		return 0, errUnsupported
	}

	size, err := unix.IoctlGetInt(int(d.Fd()), unix.BLKGETSIZE64)
	if err != nil {
		return 0, fmt.Errorf("ioctl BLKGETSIZE64 failed: %w", err)
	}
	return int64(size), nil
}
