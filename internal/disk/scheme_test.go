package disk_test

import (
	"testing"

	"github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/ostafen/partview/internal/disk"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	protectiveOnly := newMBRImage(512, mbrEntry{ptype: 0xEE, startLBA: 1, sectors: 100})

	protectiveNoHeader := newMBRImage(2048, mbrEntry{ptype: 0xEE, startLBA: 1, sectors: 3})
	copy(protectiveNoHeader[512:], "NOT GPT!")

	badSignature := newMBRImage(512, mbrEntry{ptype: 0x83, startLBA: 2048, sectors: 100})
	badSignature[511] = 0x00

	tests := []struct {
		name   string
		image  []byte
		scheme disk.Scheme
		err    error
	}{
		{name: "empty image", image: nil, err: disk.ErrTruncatedImage},
		{name: "shorter than a sector", image: make([]byte, 511), err: disk.ErrTruncatedImage},
		{name: "missing boot signature", image: badSignature, err: disk.ErrInvalidMBRSignature},
		{name: "all zero sector", image: make([]byte, 512), err: disk.ErrInvalidMBRSignature},
		{name: "mbr", image: newMBRImage(512, mbrEntry{ptype: 0x83, startLBA: 2048, sectors: 204800}), scheme: disk.SchemeMBR},
		{name: "mbr without partitions", image: newMBRImage(512), scheme: disk.SchemeMBR},
		{name: "protective mbr on truncated image", image: protectiveOnly, err: disk.ErrTruncatedImage},
		{name: "protective mbr without gpt header", image: protectiveNoHeader, err: disk.ErrInvalidGPTSignature},
		{name: "gpt", image: newGPTImage(4096, 0, 128), scheme: disk.SchemeGPT},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			scheme, err := disk.Detect(disk.NewBytesSource(tc.image))
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				require.Equal(t, disk.SchemeUnknown, scheme)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.scheme, scheme)
		})
	}
}

func TestDetectOnlyLooksAtFirstSlot(t *testing.T) {
	img := newMBRImage(512,
		mbrEntry{ptype: 0x07, startLBA: 2048, sectors: 100},
		mbrEntry{ptype: 0xEE, startLBA: 4096, sectors: 100},
	)

	scheme, err := disk.Detect(disk.NewBytesSource(img))
	require.NoError(t, err)
	require.Equal(t, disk.SchemeMBR, scheme)
}

func TestDetectDiskfsImages(t *testing.T) {
	const size = 8 * 1024 * 1024

	mbrFile := newMemFile(t, size)
	mbrTable := &mbr.Table{
		LogicalSectorSize:  512,
		PhysicalSectorSize: 512,
		Partitions: []*mbr.Partition{
			{Type: mbr.Fat32LBA, Start: 2048, Size: 4096},
		},
	}
	require.NoError(t, mbrTable.Write(mbrFile, size))

	scheme, err := disk.Detect(disk.NewSource(mbrFile, size))
	require.NoError(t, err)
	require.Equal(t, disk.SchemeMBR, scheme)

	gptFile := newMemFile(t, size)
	gptTable := &gpt.Table{
		LogicalSectorSize:  512,
		PhysicalSectorSize: 512,
		ProtectiveMBR:      true,
		Partitions: []*gpt.Partition{
			{Type: gpt.LinuxFilesystem, Start: 2048, End: 4095},
		},
	}
	require.NoError(t, gptTable.Write(gptFile, size))

	scheme, err = disk.Detect(disk.NewSource(gptFile, size))
	require.NoError(t, err)
	require.Equal(t, disk.SchemeGPT, scheme)
}

func TestSchemeString(t *testing.T) {
	require.Equal(t, "MBR", disk.SchemeMBR.String())
	require.Equal(t, "GPT", disk.SchemeGPT.String())
	require.Equal(t, "Unknown", disk.SchemeUnknown.String())
}
