package mmap_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/partview/internal/mmap"
	"github.com/stretchr/testify/require"
)

func TestMmapFileReadAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	data := []byte("0123456789abcdef")
	require.NoError(t, os.WriteFile(path, data, 0644))

	m, err := mmap.NewMmapFile(path)
	if err == mmap.ErrUnsupported {
		t.Skip(err)
	}
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), m.Len())

	buf := make([]byte, 4)
	n, err := m.ReadAt(buf, 10)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte("abcd"), buf)

	n, err = m.ReadAt(buf, 14)
	require.Equal(t, io.EOF, err)
	require.Equal(t, 2, n)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err = m.ReadAt(buf, 0)
	require.Error(t, err)
}

func TestMmapEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.img")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := mmap.NewMmapFile(path)
	require.Error(t, err)
}
