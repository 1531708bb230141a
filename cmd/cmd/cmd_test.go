package cmd_test

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ostafen/partview/cmd/cmd"
	"github.com/stretchr/testify/require"
)

func writeMBRImage(t *testing.T) string {
	t.Helper()

	img := make([]byte, 8192)
	put := func(slot int, ptype byte, start, sectors uint32) {
		off := 446 + (slot-1)*16
		img[off+4] = ptype
		binary.LittleEndian.PutUint32(img[off+8:], start)
		binary.LittleEndian.PutUint32(img[off+12:], sectors)
	}
	put(1, 0x83, 1, 7)
	put(2, 0x07, 8, 8)
	img[510], img[511] = 0x55, 0xAA
	copy(img[512:], "BOOTCODE")

	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, img, 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := cmd.NewRootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)

	err := root.Execute()
	return out.String(), err
}

func TestInspectCommand(t *testing.T) {
	path := writeMBRImage(t)

	out, err := run(t, "inspect", path, "--color", "never")
	require.NoError(t, err)
	require.Equal(t, "(83), Linux , 1, 7\n(07), HPFS/NTFS/exFAT , 8, 8\n", out)
}

func TestInspectJSON(t *testing.T) {
	path := writeMBRImage(t)

	out, err := run(t, "inspect", path, "--format", "json", "--offset", "0")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Equal(t, "MBR", decoded["scheme"])
	require.Len(t, decoded["mbr_partitions"], 2)
	require.Len(t, decoded["boot_records"], 1)
}

func TestInspectTypesFile(t *testing.T) {
	path := writeMBRImage(t)
	types := filepath.Join(t.TempDir(), "types.csv")
	require.NoError(t, os.WriteFile(types, []byte("83,My Linux\nnot-hex,ignored\n"), 0644))

	out, err := run(t, "inspect", path, "--types-file", types)
	require.NoError(t, err)
	require.Contains(t, out, "(83), My Linux , 1, 7")
}

func TestInspectInvalidFormat(t *testing.T) {
	_, err := run(t, "inspect", writeMBRImage(t), "--format", "xml")
	require.Error(t, err)
}

func TestInspectUnpartitioned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 1024), 0644))

	_, err := run(t, "inspect", path)
	require.Error(t, err)
}

func TestBootRecordCommand(t *testing.T) {
	path := writeMBRImage(t)

	out, err := run(t, "bootrecord", path, "--offset", "0", "--offset", "2")
	require.NoError(t, err)
	require.Contains(t, out, "16 bytes of boot record from offset 0: 42 4F 4F 54 43 4F 44 45")
	require.Contains(t, out, "Partition number: 2")
	require.NotContains(t, out, "Linux")
}

func TestHashCommand(t *testing.T) {
	path := writeMBRImage(t)
	dir := t.TempDir()

	out, err := run(t, "hash", path, "--output-dir", dir, "--hash-algorithms", "md5,sha-512")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "MD5:"))
	require.Contains(t, out, "SHA-512:")

	_, err = os.Stat(filepath.Join(dir, "MD5-disk.img.txt"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "SHA-512-disk.img.txt"))
	require.NoError(t, err)
}

func TestTypesCommand(t *testing.T) {
	out, err := run(t, "types", "--scheme", "mbr")
	require.NoError(t, err)
	require.Contains(t, out, "0x83")
	require.NotContains(t, out, "GPT TYPE GUID")

	out, err = run(t, "types", "--scheme", "gpt")
	require.NoError(t, err)
	require.Contains(t, out, "C12A7328-F81F-11D2-BA4B-00A0C93EC93B")

	_, err = run(t, "types", "--scheme", "apm")
	require.Error(t, err)
}

func TestExtractCommand(t *testing.T) {
	path := writeMBRImage(t)
	dir := filepath.Join(t.TempDir(), "parts")

	out, err := run(t, "extract", path, "--dir", dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "p1.img")+"\n"+filepath.Join(dir, "p2.img")+"\n", out)

	p1, err := os.ReadFile(filepath.Join(dir, "p1.img"))
	require.NoError(t, err)
	require.Len(t, p1, 7*512)
	require.True(t, bytes.HasPrefix(p1, []byte("BOOTCODE")))
}

func TestExtractFromReport(t *testing.T) {
	path := writeMBRImage(t)
	tmp := t.TempDir()

	report, err := run(t, "inspect", path, "--format", "dfxml")
	require.NoError(t, err)
	reportPath := filepath.Join(tmp, "report.xml")
	require.NoError(t, os.WriteFile(reportPath, []byte(report), 0644))

	dir := filepath.Join(tmp, "parts")
	_, err = run(t, "extract", path, reportPath, "--dir", dir)
	require.NoError(t, err)

	p2, err := os.ReadFile(filepath.Join(dir, "p2.img"))
	require.NoError(t, err)
	require.Len(t, p2, 8*512)
}
