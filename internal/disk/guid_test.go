package disk_test

import (
	"testing"

	"github.com/ostafen/partview/internal/disk"
	"github.com/stretchr/testify/require"
)

func TestGUIDFromDisk(t *testing.T) {
	g := disk.GUIDFromDisk(linuxFSDisk[:])

	require.Equal(t, "0FC63DAF848347728E793D69D8477DE4", g.String())
	require.Equal(t, "0FC63DAF-8483-4772-8E79-3D69D8477DE4", g.Canonical())
	require.False(t, g.IsZero())
	require.Equal(t, linuxFSDisk, g.Disk())
}

func TestGUIDReorderIsInvolution(t *testing.T) {
	var raw [16]byte
	for i := range raw {
		raw[i] = byte(i)
	}

	g := disk.GUIDFromDisk(raw[:])
	require.Equal(t, "03020100050407060809", g.String()[:20])
	require.Equal(t, raw, g.Disk())

	onDisk := g.Disk()
	back := disk.GUIDFromDisk(onDisk[:])
	require.Equal(t, g, back)
}

func TestGUIDZero(t *testing.T) {
	var g disk.GUID
	require.True(t, g.IsZero())
	require.Equal(t, "00000000000000000000000000000000", g.String())
}

func TestParseGUID(t *testing.T) {
	g, err := disk.ParseGUID("c12a7328-f81f-11d2-ba4b-00a0c93ec93b")
	require.NoError(t, err)
	require.Equal(t, "C12A7328F81F11D2BA4B00A0C93EC93B", g.String())

	_, err = disk.ParseGUID("not-a-guid")
	require.Error(t, err)
}
