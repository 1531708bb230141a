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
package sysinfo

import (
	"bufio"
	"bytes"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/afero"
)

const osReleasePath = "/etc/os-release"

// SysUnknown is returned when the host cannot be identified.
var SysUnknown = SysInfo{
	Name:    runtime.GOOS,
	Release: "unknown",
	Version: "unknown",
}

// SysInfo holds the basic operating system details recorded in reports.
type SysInfo struct {
	Name    string // runtime.GOOS
	Release string // distribution or product name
	Version string
}

// Stat describes the running host. On Linux the release is read from
// /etc/os-release through afs.
func Stat(afs afero.Fs) SysInfo {
	var release, version string

	switch runtime.GOOS {
	case "linux":
		release, version = linuxInfo(afs)
	case "darwin":
		release, version = darwinInfo()
	case "windows":
		release, version = windowsInfo()
	}

	if release == "" {
		release = SysUnknown.Release
	}
	if version == "" {
		version = SysUnknown.Version
	}
	return SysInfo{
		Name:    runtime.GOOS,
		Release: release,
		Version: version,
	}
}

func linuxInfo(afs afero.Fs) (string, string) {
	f, err := afs.Open(osReleasePath)
	if err != nil {
		return "", ""
	}
	defer f.Close()

	return ParseOSRelease(f)
}

// ParseOSRelease extracts NAME and VERSION from an os-release file.
func ParseOSRelease(r io.Reader) (name, version string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"'`)

		switch key {
		case "NAME":
			name = value
		case "VERSION":
			version = value
		}
	}
	return name, version
}

func darwinInfo() (string, string) {
	output, err := exec.Command("sw_vers").Output()
	if err != nil {
		return "macOS", ""
	}

	var productName, productVersion string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if v, ok := strings.CutPrefix(line, "ProductName:"); ok {
			productName = strings.TrimSpace(v)
		}
		if v, ok := strings.CutPrefix(line, "ProductVersion:"); ok {
			productVersion = strings.TrimSpace(v)
		}
	}
	return productName, productVersion
}

func windowsInfo() (string, string) {
	output, err := exec.Command("cmd", "/c", "ver").Output()
	if err != nil {
		return "Windows", ""
	}
	return "Windows", strings.TrimSpace(string(output))
}
