package image

import (
	"errors"
	"io"

	"github.com/ostafen/partview/internal/fs"
	"github.com/ostafen/partview/pkg/table"
)

// magic numbers of the supported compressed streams, keyed to decompressor extensions
var magics = func() *table.PrefixTable[string] {
	t := table.New[string]()
	t.Insert([]byte{0x1F, 0x8B}, ".gz")
	t.Insert([]byte{0x28, 0xB5, 0x2F, 0xFD}, ".zst")
	t.Insert([]byte("BZh"), ".bz2")
	t.Insert([]byte("\xff\x06\x00\x00sNaPpY"), ".sz")
	t.Insert([]byte("\xff\x06\x00\x00S2sTwO"), ".s2")
	for _, level := range []byte{0x01, 0x5E, 0x9C, 0xDA} {
		t.Insert([]byte{0x78, level}, ".zlib")
	}
	return t
}()

const sniffLen = 512

// sniff recognizes compressed images without a compression extension.
// A first sector ending with the 0x55AA boot signature is always taken as raw.
func (o *Opener) sniff(path string) (decompressor, string) {
	f, err := fs.Open(o.Fs, path)
	if err != nil {
		return nil, ""
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := f.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, ""
	}
	return detectCompression(head[:n])
}

func detectCompression(head []byte) (decompressor, string) {
	if len(head) == sniffLen && head[510] == 0x55 && head[511] == 0xAA {
		return nil, ""
	}

	ext, ok := magics.Longest(head)
	if !ok {
		return nil, ""
	}
	return decompressors[ext], ext
}
