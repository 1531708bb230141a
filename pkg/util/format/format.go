package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const (
	_  = iota // ignore first value
	KB = 1 << (10 * iota)
	MB
	GB
	TB
)

// FormatSize renders a byte count with two decimals in GB, MB or KB.
// The larger unit is chosen as soon as the value reaches it, so exactly
// 1024 bytes is "1.00 KB" and anything below is a fraction of a KB.
func FormatSize(b uint64) string {
	switch {
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/GB)
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/MB)
	default:
		return fmt.Sprintf("%.2f KB", float64(b)/KB)
	}
}

// Helper to format bytes into human-readable units, avoiding .00 for whole numbers
func FormatBytes(b int64) string {
	val := float64(b)
	var unit string

	switch {
	case b >= TB:
		val /= float64(TB)
		unit = "TB"
	case b >= GB:
		val /= float64(GB)
		unit = "GB"
	case b >= MB:
		val /= float64(MB)
		unit = "MB"
	case b >= KB:
		val /= float64(KB)
		unit = "KB"
	default:
		return fmt.Sprintf("%dB", b)
	}

	// Use %.0f for whole numbers, %.2f for numbers with decimals
	if val == float64(int(val)) {
		return fmt.Sprintf("%.0f%s", val, unit)
	}
	return fmt.Sprintf("%.2f%s", val, unit)
}

var units = map[string]uint64{
	"":   1,
	"B":  1,
	"K":  KB,
	"KB": KB,
	"M":  MB,
	"MB": MB,
	"G":  GB,
	"GB": GB,
	"T":  TB,
	"TB": TB,
}

// ParseBytes parses sizes like "512", "4MB", "1.5 GB" or "2k" into bytes.
// An empty string parses to zero.
func ParseBytes(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	i := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	if i == 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	num, unit := s, ""
	if i > 0 {
		num, unit = s[:i], strings.ToUpper(strings.TrimSpace(s[i:]))
	}

	mult, ok := units[unit]
	if !ok {
		return 0, fmt.Errorf("invalid size %q: unknown unit %q", s, unit)
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	bytes := v * float64(mult)
	if bytes >= math.MaxUint64 {
		return 0, fmt.Errorf("invalid size %q: overflows uint64", s)
	}
	return uint64(bytes), nil
}
