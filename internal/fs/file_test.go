package fs_test

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/ostafen/partview/internal/fs"
	"github.com/ostafen/partview/internal/fs/mocks"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestOpenAndSize(t *testing.T) {
	afs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(afs, "disk.img", make([]byte, 4096), 0644))

	f, err := fs.Open(afs, "disk.img")
	require.NoError(t, err)
	defer f.Close()

	size, err := fs.Size(f)
	require.NoError(t, err)
	require.Equal(t, int64(4096), size)

	_, err = fs.Open(afs, "missing.img")
	require.Error(t, err)
}

func TestSizeStatError(t *testing.T) {
	ctrl := gomock.NewController(t)

	statErr := errors.New("stat failed")
	f := mocks.NewMockFile(ctrl)
	f.EXPECT().Stat().Return(nil, statErr)

	_, err := fs.Size(f)
	require.ErrorIs(t, err, statErr)
}

func TestVolumePath(t *testing.T) {
	if fs.IsVolumePath("C:") {
		require.Equal(t, `\\.\C:`, fs.NormalizeVolumePath("c:"))
		return
	}
	require.Equal(t, "disk.img", fs.NormalizeVolumePath("disk.img"))
	require.False(t, fs.IsVolumePath("/dev/sda"))
}
