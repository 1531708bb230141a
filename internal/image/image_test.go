package image_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dsnet/compress/bzip2"
	"github.com/golang/mock/gomock"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/ostafen/partview/internal/disk"
	"github.com/ostafen/partview/internal/fs/mocks"
	"github.com/ostafen/partview/internal/image"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// mbrImage returns a small MBR image with one Linux partition.
func mbrImage() []byte {
	img := make([]byte, 4096)
	img[446+4] = 0x83
	img[446+8] = 0x01 // start LBA 1
	img[446+12] = 0x07
	img[510], img[511] = 0x55, 0xAA
	return img
}

func TestOpenPlainFile(t *testing.T) {
	afs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(afs, "/disk.img", mbrImage(), 0644))

	o := &image.Opener{Fs: afs}
	img, err := o.Open("/disk.img")
	require.NoError(t, err)
	defer img.Close()

	require.Equal(t, image.KindFile, img.Kind)
	require.Equal(t, int64(4096), img.Size())

	scheme, err := disk.Detect(img.Source())
	require.NoError(t, err)
	require.Equal(t, disk.SchemeMBR, scheme)

	data, err := io.ReadAll(img.Reader())
	require.NoError(t, err)
	require.Equal(t, mbrImage(), data)

	require.NoError(t, img.Close())
	require.NoError(t, img.Close())
}

func TestOpenMissingFile(t *testing.T) {
	o := &image.Opener{Fs: afero.NewMemMapFs()}
	_, err := o.Open("/nope.img")
	require.Error(t, err)
}

func TestOpenSplitImage(t *testing.T) {
	afs := afero.NewMemMapFs()
	data := mbrImage()

	require.NoError(t, afero.WriteFile(afs, "/disk.001", data[:1000], 0644))
	require.NoError(t, afero.WriteFile(afs, "/disk.002", data[1000:3000], 0644))
	require.NoError(t, afero.WriteFile(afs, "/disk.003", data[3000:], 0644))
	require.NoError(t, afero.WriteFile(afs, "/disk.005", []byte("not part of the set"), 0644))

	o := &image.Opener{Fs: afs}
	img, err := o.Open("/disk.001")
	require.NoError(t, err)
	defer img.Close()

	require.Equal(t, image.KindSplit, img.Kind)
	require.Equal(t, 3, img.Segments)
	require.Equal(t, int64(len(data)), img.Size())

	b, err := img.Source().ReadAt(990, 20)
	require.NoError(t, err)
	require.Equal(t, data[990:1010], b)

	_, parts, err := disk.ReadMBR(img.Source())
	require.NoError(t, err)
	require.Len(t, parts, 1)
}

func compress(t *testing.T, ext string, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	var w io.WriteCloser
	var err error

	switch ext {
	case ".gz":
		w = gzip.NewWriter(&buf)
	case ".zlib":
		w = zlib.NewWriter(&buf)
	case ".zst":
		w, err = zstd.NewWriter(&buf)
	case ".bz2":
		w, err = bzip2.NewWriter(&buf, &bzip2.WriterConfig{})
	case ".sz":
		w = snappy.NewBufferedWriter(&buf)
	case ".s2":
		w = s2.NewWriter(&buf)
	default:
		t.Fatalf("unknown extension %s", ext)
	}
	require.NoError(t, err)

	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestOpenCompressedImages(t *testing.T) {
	data := mbrImage()

	for _, ext := range []string{".gz", ".zlib", ".zst", ".bz2", ".sz", ".s2"} {
		t.Run(ext, func(t *testing.T) {
			afs := afero.NewMemMapFs()
			path := "/disk.img" + ext
			require.NoError(t, afero.WriteFile(afs, path, compress(t, ext, data), 0644))

			o := &image.Opener{Fs: afs, MaxDecompressedSize: 1 << 20}
			img, err := o.Open(path)
			require.NoError(t, err)
			defer img.Close()

			require.Equal(t, image.KindCompressed, img.Kind)
			require.Equal(t, int64(len(data)), img.Size())

			table, err := disk.Read(img.Source())
			require.NoError(t, err)
			require.Equal(t, disk.SchemeMBR, table.Scheme)
		})
	}
}

func TestOpenCompressedTooLarge(t *testing.T) {
	afs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(afs, "/disk.img.gz", compress(t, ".gz", mbrImage()), 0644))

	o := &image.Opener{Fs: afs, MaxDecompressedSize: 1024}
	_, err := o.Open("/disk.img.gz")
	require.ErrorIs(t, err, image.ErrTooLarge)
}

func TestOpenCorruptCompressed(t *testing.T) {
	afs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(afs, "/disk.img.gz", []byte("definitely not gzip"), 0644))

	o := &image.Opener{Fs: afs}
	_, err := o.Open("/disk.img.gz")
	require.Error(t, err)
}

func TestOpenMmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, mbrImage(), 0644))

	o := &image.Opener{Fs: afero.NewOsFs(), UseMmap: true}
	img, err := o.Open(path)
	require.NoError(t, err)
	defer img.Close()

	require.Equal(t, int64(4096), img.Size())

	scheme, err := disk.Detect(img.Source())
	require.NoError(t, err)
	require.Equal(t, disk.SchemeMBR, scheme)
}

type fileInfo struct {
	size int64
}

func (fi fileInfo) Name() string       { return "disk.img" }
func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) Mode() os.FileMode  { return 0644 }
func (fi fileInfo) ModTime() time.Time { return time.Time{} }
func (fi fileInfo) IsDir() bool        { return false }
func (fi fileInfo) Sys() any           { return nil }

func TestImageClosesFileOnce(t *testing.T) {
	ctrl := gomock.NewController(t)

	data := mbrImage()
	f := mocks.NewMockFile(ctrl)
	f.EXPECT().Stat().Return(fileInfo{size: int64(len(data))}, nil)
	f.EXPECT().ReadAt(gomock.Any(), gomock.Any()).DoAndReturn(func(p []byte, off int64) (int, error) {
		return bytes.NewReader(data).ReadAt(p, off)
	}).AnyTimes()
	f.EXPECT().Close().Return(nil).Times(1)

	img, err := image.FromFile("disk.img", f)
	require.NoError(t, err)

	_, err = disk.Read(img.Source())
	require.NoError(t, err)

	require.NoError(t, img.Close())
	require.NoError(t, img.Close())
}

func TestImageClosesFileOnStatError(t *testing.T) {
	ctrl := gomock.NewController(t)

	f := mocks.NewMockFile(ctrl)
	f.EXPECT().Stat().Return(nil, errors.New("stat failed"))
	f.EXPECT().Close().Return(nil).Times(1)

	_, err := image.FromFile("disk.img", f)
	require.Error(t, err)
}

func TestImageCloseError(t *testing.T) {
	ctrl := gomock.NewController(t)

	closeErr := errors.New("close failed")
	f := mocks.NewMockFile(ctrl)
	f.EXPECT().Stat().Return(fileInfo{size: 512}, nil)
	f.EXPECT().Close().Return(closeErr).Times(1)

	img, err := image.FromFile("disk.img", f)
	require.NoError(t, err)

	require.ErrorIs(t, img.Close(), closeErr)
	require.NoError(t, img.Close())
}

func TestOpenCompressedWithoutExtension(t *testing.T) {
	data := mbrImage()

	for _, ext := range []string{".gz", ".zlib", ".zst", ".bz2", ".sz", ".s2"} {
		t.Run(ext, func(t *testing.T) {
			afs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(afs, "/disk.raw", compress(t, ext, data), 0644))

			o := &image.Opener{Fs: afs}
			img, err := o.Open("/disk.raw")
			require.NoError(t, err)
			defer img.Close()

			require.Equal(t, image.KindCompressed, img.Kind)
			require.Equal(t, int64(len(data)), img.Size())
		})
	}
}

func TestRawImageIsNotSniffed(t *testing.T) {
	data := mbrImage()
	data[0], data[1] = 0x1F, 0x8B // gzip magic in the boot code

	afs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(afs, "/disk.raw", data, 0644))

	o := &image.Opener{Fs: afs}
	img, err := o.Open("/disk.raw")
	require.NoError(t, err)
	defer img.Close()

	require.Equal(t, image.KindFile, img.Kind)
}
