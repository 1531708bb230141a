//go:build windows
// +build windows

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
package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unsafe"

	"github.com/spf13/afero"
	"golang.org/x/sys/windows"
)

const (
	deviceSectorSize = 512

	ioctlDiskGetLengthInfo = 0x7405C
)

// rawDevice reads a disk or volume opened through the \\.\ device namespace.
// Unbuffered device handles only accept sector-aligned reads.
type rawDevice struct {
	path   string
	handle windows.Handle
	pos    int64 // used for io.Reader
}

type deviceInfo struct {
	name string
	size int64
}

func (fi *deviceInfo) Name() string       { return fi.name }
func (fi *deviceInfo) Size() int64        { return fi.size }
func (fi *deviceInfo) Mode() os.FileMode  { return os.ModeDevice | 0444 }
func (fi *deviceInfo) ModTime() time.Time { return time.Time{} }
func (fi *deviceInfo) IsDir() bool        { return false }
func (fi *deviceInfo) Sys() any           { return nil }

// Open opens path for reading. Drive letters ("C:") and physical drives
// ("PhysicalDrive0") are opened as raw devices; anything else goes through afs.
func Open(afs afero.Fs, path string) (File, error) {
	if !IsVolumePath(path) {
		f, err := afs.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %q: %w", path, err)
		}
		return f, nil
	}

	path = NormalizeVolumePath(path)
	handle, err := windows.CreateFile(
		windows.StringToUTF16Ptr(path),
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open device %q: %w", path, err)
	}
	return &rawDevice{path: path, handle: handle}, nil
}

func (d *rawDevice) Read(p []byte) (int, error) {
	n, err := d.ReadAt(p, d.pos)
	d.pos += int64(n)
	return n, err
}

func (d *rawDevice) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if len(p) == 0 {
		return 0, nil
	}

	start, skip, size := alignedSpan(off, len(p), deviceSectorSize)
	buf := make([]byte, size)

	var read uint32
	ov := &windows.Overlapped{
		Offset:     uint32(start),
		OffsetHigh: uint32(start >> 32),
	}
	err := windows.ReadFile(d.handle, buf, &read, ov)
	if errors.Is(err, windows.ERROR_IO_PENDING) {
		err = windows.GetOverlappedResult(d.handle, ov, &read, true)
	}
	if errors.Is(err, windows.ERROR_HANDLE_EOF) {
		return 0, io.EOF
	}
	if err != nil {
		return 0, fmt.Errorf("read of %d bytes at offset %d on %s failed: %w", size, start, d.path, err)
	}

	if int(read) <= skip {
		return 0, io.EOF
	}
	n := copy(p, buf[skip:read])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Stat reports the exact device length, as returned by IOCTL_DISK_GET_LENGTH_INFO.
func (d *rawDevice) Stat() (os.FileInfo, error) {
	var length int64
	var returned uint32

	err := windows.DeviceIoControl(
		d.handle,
		ioctlDiskGetLengthInfo,
		nil,
		0,
		(*byte)(unsafe.Pointer(&length)),
		uint32(unsafe.Sizeof(length)),
		&returned,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("IOCTL_DISK_GET_LENGTH_INFO on %s failed: %w", d.path, err)
	}
	return &deviceInfo{name: d.path, size: length}, nil
}

func (d *rawDevice) Close() error {
	return windows.CloseHandle(d.handle)
}
