//go:build !unix

package mmap

func NewMmapFile(string) (*MmapFile, error) {
	return nil, ErrUnsupported
}
