package disk_test

import (
	"encoding/binary"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type mbrEntry struct {
	boot     byte
	ptype    byte
	startLBA uint32
	sectors  uint32
}

// newMBRImage builds an image of size bytes with a valid boot signature
// and the given entries in slots 1..4.
func newMBRImage(size int, entries ...mbrEntry) []byte {
	img := make([]byte, size)
	for i, e := range entries {
		off := 446 + i*16
		img[off] = e.boot
		img[off+4] = e.ptype
		binary.LittleEndian.PutUint32(img[off+8:off+12], e.startLBA)
		binary.LittleEndian.PutUint32(img[off+12:off+16], e.sectors)
	}
	img[510], img[511] = 0x55, 0xAA
	return img
}

type gptEntry struct {
	typeGUID   [16]byte // on-disk order
	uniqueGUID [16]byte // on-disk order
	start, end uint64
	attrs      uint64
	name       []uint16
}

// newGPTImage builds a protective MBR, a GPT header at LBA 1 and an entry
// array at LBA 2. count and entrySize are written verbatim to the header.
func newGPTImage(size int, count, entrySize uint32, entries ...gptEntry) []byte {
	img := newMBRImage(size, mbrEntry{ptype: 0xEE, startLBA: 1, sectors: uint32(size/512 - 1)})

	h := img[512:]
	copy(h[0:8], "EFI PART")
	binary.LittleEndian.PutUint32(h[8:12], 0x00010000)
	binary.LittleEndian.PutUint32(h[12:16], 92)
	binary.LittleEndian.PutUint64(h[24:32], 1)
	binary.LittleEndian.PutUint64(h[72:80], 2)
	binary.LittleEndian.PutUint32(h[80:84], count)
	binary.LittleEndian.PutUint32(h[84:88], entrySize)

	for i, e := range entries {
		off := 1024 + i*int(entrySize)
		if off+128 > len(img) {
			break
		}
		b := img[off:]
		copy(b[0:16], e.typeGUID[:])
		copy(b[16:32], e.uniqueGUID[:])
		binary.LittleEndian.PutUint64(b[32:40], e.start)
		binary.LittleEndian.PutUint64(b[40:48], e.end)
		binary.LittleEndian.PutUint64(b[48:56], e.attrs)
		for j, u := range e.name {
			binary.LittleEndian.PutUint16(b[56+2*j:], u)
		}
	}
	return img
}

func utf16Name(s string) []uint16 {
	var out []uint16
	for _, r := range s {
		out = append(out, uint16(r))
	}
	return out
}

// linuxFSDisk is 0FC63DAF-8483-4772-8E79-3D69D8477DE4 in on-disk order.
var linuxFSDisk = [16]byte{
	0xAF, 0x3D, 0xC6, 0x0F, 0x83, 0x84, 0x72, 0x47,
	0x8E, 0x79, 0x3D, 0x69, 0xD8, 0x47, 0x7D, 0xE4,
}

// newMemFile returns an in-memory file of the given size, usable by go-diskfs
// table writers.
func newMemFile(t *testing.T, size int64) afero.File {
	t.Helper()

	f, err := afero.NewMemMapFs().Create("disk.img")
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))

	t.Cleanup(func() { f.Close() })
	return f
}
