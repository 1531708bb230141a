package disk_test

import (
	"errors"
	"testing"

	"github.com/ostafen/partview/internal/disk"
	"github.com/stretchr/testify/require"
)

func TestSourceReadAt(t *testing.T) {
	data := []byte("0123456789")
	src := disk.NewBytesSource(data)

	require.Equal(t, int64(10), src.Size())

	b, err := src.ReadAt(2, 4)
	require.NoError(t, err)
	require.Equal(t, []byte("2345"), b)

	b, err = src.ReadAt(0, 10)
	require.NoError(t, err)
	require.Equal(t, data, b)

	b, err = src.ReadAt(10, 0)
	require.NoError(t, err)
	require.Empty(t, b)
}

func TestSourceShortRead(t *testing.T) {
	src := disk.NewBytesSource(make([]byte, 600))

	_, err := src.ReadAt(512, 92)
	require.ErrorIs(t, err, disk.ErrShortRead)

	_, err = src.ReadAt(1000, 1)
	require.ErrorIs(t, err, disk.ErrShortRead)

	_, err = src.ReadAt(-1, 1)
	require.Error(t, err)
	require.False(t, errors.Is(err, disk.ErrShortRead))
}

type errReaderAt struct{ err error }

func (r errReaderAt) ReadAt(p []byte, off int64) (int, error) { return 0, r.err }

func TestSourceIOError(t *testing.T) {
	ioErr := errors.New("device gone")
	src := disk.NewSource(errReaderAt{err: ioErr}, 4096)

	_, err := src.ReadAt(0, 512)
	require.ErrorIs(t, err, ioErr)
	require.NotErrorIs(t, err, disk.ErrShortRead)
}
