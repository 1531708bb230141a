package fs

import (
	"runtime"
	"strings"
	"unicode"
)

const devicePrefix = `\\.\`

// IsVolumePath reports whether path names a Windows drive ("C:", "C:\"),
// a physical drive ("PhysicalDrive0") or any \\.\ device. It is always false
// on other platforms.
func IsVolumePath(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	_, ok := parseDevicePath(path)
	return ok
}

// NormalizeVolumePath rewrites a Windows device path to its \\.\ form
// (\\.\C:, \\.\PhysicalDrive0). Other paths, and every path on other
// platforms, are returned unchanged.
func NormalizeVolumePath(path string) string {
	if runtime.GOOS != "windows" {
		return path
	}
	if dev, ok := parseDevicePath(path); ok {
		return dev
	}
	return path
}

func parseDevicePath(path string) (string, bool) {
	p := strings.ReplaceAll(strings.TrimSpace(path), "/", `\`)

	name, namespaced := strings.CutPrefix(p, devicePrefix)
	if namespaced && name == "" {
		return "", false
	}

	if drive, ok := driveLetter(name); ok {
		return devicePrefix + drive + ":", true
	}
	if n, ok := physicalDrive(name); ok {
		return devicePrefix + "PhysicalDrive" + n, true
	}
	if namespaced {
		return devicePrefix + name, true
	}
	return "", false
}

func driveLetter(s string) (string, bool) {
	if len(s) != 2 && !(len(s) == 3 && s[2] == '\\') {
		return "", false
	}
	if s[1] != ':' || !unicode.IsLetter(rune(s[0])) {
		return "", false
	}
	return strings.ToUpper(s[:1]), true
}

func physicalDrive(s string) (string, bool) {
	const prefix = "PHYSICALDRIVE"
	if len(s) <= len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	n := s[len(prefix):]
	for _, c := range n {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return n, true
}
