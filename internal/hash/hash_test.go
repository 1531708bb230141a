package hash_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ostafen/partview/internal/hash"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	var progress bytes.Buffer

	sums, err := hash.Compute(strings.NewReader("abc"), []string{"md5", "sha256", "sha512"}, &progress, 2)
	require.NoError(t, err)
	require.Equal(t, "abc", progress.String())

	require.Equal(t, []hash.Sum{
		{Algorithm: "MD5", Hex: "900150983cd24fb0d6963f7d28e17f72"},
		{Algorithm: "SHA-256", Hex: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{Algorithm: "SHA-512", Hex: "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a" +
			"2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"},
	}, sums)
}

func TestComputeUnsupported(t *testing.T) {
	_, err := hash.Compute(strings.NewReader(""), []string{"crc32"}, nil, 0)
	require.Error(t, err)

	sums, err := hash.Compute(strings.NewReader("x"), nil, nil, 0)
	require.NoError(t, err)
	require.Empty(t, sums)
}

func TestSave(t *testing.T) {
	afs := afero.NewMemMapFs()
	sums := []hash.Sum{
		{Algorithm: "MD5", Hex: "00ff"},
		{Algorithm: "SHA-256", Hex: "abcd"},
	}

	paths, err := hash.Save(afs, "/out", "/images/disk.dd", sums)
	require.NoError(t, err)
	require.Equal(t, []string{"/out/MD5-disk.dd.txt", "/out/SHA-256-disk.dd.txt"}, paths)

	data, err := afero.ReadFile(afs, "/out/SHA-256-disk.dd.txt")
	require.NoError(t, err)
	require.Equal(t, "abcd", string(data))
}
