package disk_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/ostafen/partview/internal/disk"
	"github.com/ostafen/partview/pkg/util/format"
	"github.com/stretchr/testify/require"
)

func TestReadTableMBR(t *testing.T) {
	img := newMBRImage(512,
		mbrEntry{boot: 0x80, ptype: 0x83, startLBA: 2048, sectors: 204800},
		mbrEntry{},
		mbrEntry{ptype: 0x82, startLBA: 206848, sectors: 8192},
	)

	table, err := disk.Read(disk.NewBytesSource(img))
	require.NoError(t, err)
	require.Equal(t, disk.SchemeMBR, table.Scheme)
	require.Nil(t, table.GPTHeader)
	require.Equal(t, 2, table.Len())

	expected := []disk.Partition{
		{Num: 1, Offset: 2048 * 512, Size: 204800 * 512, BlockSize: 512, Bootable: true},
		{Num: 3, Offset: 206848 * 512, Size: 8192 * 512, BlockSize: 512},
	}
	require.Equal(t, expected, table.Partitions())
}

func TestReadTableGPT(t *testing.T) {
	img := newGPTImage(4096, 2, 128,
		gptEntry{typeGUID: linuxFSDisk, start: 2048, end: 4095, name: utf16Name("root"), attrs: disk.GPTAttrLegacyBIOSBoot},
		gptEntry{typeGUID: linuxFSDisk, start: 10, end: 5},
	)

	table, err := disk.Read(disk.NewBytesSource(img))
	require.NoError(t, err)
	require.Equal(t, disk.SchemeGPT, table.Scheme)
	require.Nil(t, table.MBR)

	expected := []disk.Partition{
		{Num: 1, Offset: 2048 * 512, Size: 2048 * 512, BlockSize: 512, Name: "root", Bootable: true},
		{Num: 2, Offset: 10 * 512, Size: 0, BlockSize: 512, Malformed: true},
	}
	require.Equal(t, expected, table.Partitions())
}

func TestReadTableMBRSingleEntry(t *testing.T) {
	img := make([]byte, 1024)
	img[446+4] = 0x83
	binary.LittleEndian.PutUint32(img[446+8:], 2048)
	binary.LittleEndian.PutUint32(img[446+12:], 204800)
	img[510], img[511] = 0x55, 0xAA

	table, err := disk.Read(disk.NewBytesSource(img))
	require.NoError(t, err)
	require.Equal(t, disk.SchemeMBR, table.Scheme)
	require.Len(t, table.MBRPartitions, 1)

	p := table.MBRPartitions[0]
	require.Equal(t, 1, p.Slot)
	require.Equal(t, disk.MBRPartitionType(0x83), p.Type)
	require.Equal(t, uint32(2048), p.StartLBA)
	require.Equal(t, uint32(204800), p.TotalSectors)
	require.Equal(t, "100.00 MB", format.FormatSize(p.Size()))
}

func TestReadTableGPTUnaddressableExtent(t *testing.T) {
	img := newGPTImage(4096, 3, 128,
		gptEntry{typeGUID: linuxFSDisk, start: 1 << 55, end: 1<<55 + 10},
		gptEntry{typeGUID: linuxFSDisk, start: 0, end: math.MaxUint64},
		gptEntry{typeGUID: linuxFSDisk, start: 34, end: 41},
	)

	table, err := disk.Read(disk.NewBytesSource(img))
	require.NoError(t, err)
	require.Len(t, table.GPTPartitions, 3)

	for _, p := range table.GPTPartitions[:2] {
		require.True(t, p.Malformed())
		require.Zero(t, p.Sectors())
		require.Zero(t, p.Size())
		require.ErrorIs(t, p.Validate(), disk.ErrMalformedEntry)
	}
	require.NoError(t, table.GPTPartitions[2].Validate())

	expected := []disk.Partition{
		{Num: 1, Offset: 0, Size: 0, BlockSize: 512, Malformed: true},
		{Num: 2, Offset: 0, Size: 0, BlockSize: 512, Malformed: true},
		{Num: 3, Offset: 34 * 512, Size: 8 * 512, BlockSize: 512},
	}
	require.Equal(t, expected, table.Partitions())
}

func TestReadTableUnknownScheme(t *testing.T) {
	_, err := disk.Read(disk.NewBytesSource(make([]byte, 1024)))
	require.ErrorIs(t, err, disk.ErrAmbiguousScheme)
	require.ErrorIs(t, err, disk.ErrInvalidMBRSignature)

	_, err = disk.Read(disk.NewBytesSource(make([]byte, 10)))
	require.ErrorIs(t, err, disk.ErrAmbiguousScheme)
	require.ErrorIs(t, err, disk.ErrTruncatedImage)
}
