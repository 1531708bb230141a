package format_test

import (
	"testing"

	"github.com/ostafen/partview/pkg/util/format"
	"github.com/stretchr/testify/require"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in       uint64
		expected string
	}{
		{0, "0.00 KB"},
		{512, "0.50 KB"},
		{1023, "1.00 KB"},
		{1024, "1.00 KB"},
		{1024*1024 - 1, "1024.00 KB"},
		{1024 * 1024, "1.00 MB"},
		{104857600, "100.00 MB"},
		{1024*1024*1024 - 1, "1024.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{5 * 1024 * 1024 * 1024 / 2, "2.50 GB"},
		{2 * 1024 * 1024 * 1024 * 1024, "2048.00 GB"},
	}

	for _, tc := range tests {
		require.Equal(t, tc.expected, format.FormatSize(tc.in), "size %d", tc.in)
	}
}

func TestFormatBytes(t *testing.T) {
	require.Equal(t, "100B", format.FormatBytes(100))
	require.Equal(t, "4KB", format.FormatBytes(4096))
	require.Equal(t, "1.50MB", format.FormatBytes(3*1024*1024/2))
	require.Equal(t, "2TB", format.FormatBytes(2*1024*1024*1024*1024))
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in       string
		expected uint64
	}{
		{"", 0},
		{"512", 512},
		{"4MB", 4 * 1024 * 1024},
		{"4mb", 4 * 1024 * 1024},
		{"2k", 2048},
		{"1.5 GB", 3 * 1024 * 1024 * 1024 / 2},
		{"1TB", 1024 * 1024 * 1024 * 1024},
		{"10B", 10},
	}

	for _, tc := range tests {
		v, err := format.ParseBytes(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.expected, v, tc.in)
	}

	for _, in := range []string{"MB", "12XB", "1..2MB", "-5"} {
		_, err := format.ParseBytes(in)
		require.Error(t, err, in)
	}
}
