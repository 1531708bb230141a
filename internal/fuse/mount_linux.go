//go:build linux
// +build linux

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
package fuse

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"github.com/ostafen/partview/internal/disk"
	osutils "github.com/ostafen/partview/pkg/util/os"
	"github.com/spf13/afero"
)

const maxUnmountRetries = 3

// Mount exports parts of r under mountpoint and serves them until the process
// receives SIGINT or SIGTERM.
func Mount(mountpoint string, r io.ReaderAt, parts []disk.Partition, log *slog.Logger) error {
	created, err := osutils.EnsureDir(afero.NewOsFs(), mountpoint, true)
	if err != nil {
		return fmt.Errorf("invalid mountpoint: %w", err)
	}
	if created {
		defer os.Remove(mountpoint)
	}

	c, err := fuse.Mount(mountpoint, fuse.ReadOnly(), fuse.FSName("partview"), fuse.Subtype("partview"))
	if err != nil {
		return err
	}
	defer c.Close()

	pfs := &PartitionFS{
		r:         r,
		entries:   Entries(parts),
		mountTime: time.Now(),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- fusefs.Serve(c, pfs)
	}()

	log.Info("partitions mounted", "mountpoint", mountpoint, "partitions", len(parts))
	return waitForUmount(mountpoint, serveErr, log)
}

func waitForUmount(mountpoint string, serveErr <-chan error, log *slog.Logger) error {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)

	log.Info("waiting for termination signal")

	unmountAttempts := 0
	for {
		select {
		case err := <-serveErr:
			// unmounted from outside, e.g. by fusermount -u
			return err
		case sig := <-sigc:
			log.Info("signal received", "signal", sig)

			log.Info("attempting unmount", "mountpoint", mountpoint, "attempt", unmountAttempts+1, "max", maxUnmountRetries)
			err := fuse.Unmount(mountpoint)
			if err == nil {
				log.Info("unmounted successfully")
				return <-serveErr
			}

			unmountAttempts++
			if unmountAttempts >= maxUnmountRetries {
				return errors.Join(fmt.Errorf("unable to unmount %s after %d attempts", mountpoint, maxUnmountRetries), err)
			}
			log.Warn("unmount failed, waiting for another signal to retry", "err", err, "remaining", maxUnmountRetries-unmountAttempts)
		}
	}
}
