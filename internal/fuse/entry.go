package fuse

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ostafen/partview/internal/disk"
)

// Entry is a partition exported as a file.
type Entry struct {
	Name   string
	Offset uint64
	Size   uint64
}

// EntryName returns the file name of p: p<N>.img, or p<N>-<name>.img when
// the partition carries a GPT name.
func EntryName(p disk.Partition) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == 0:
			return '_'
		case r == ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(p.Name))

	if name == "" {
		return fmt.Sprintf("p%d.img", p.Num)
	}
	return fmt.Sprintf("p%d-%s.img", p.Num, name)
}

// Entries maps every well-formed partition to its exported file.
func Entries(parts []disk.Partition) map[string]Entry {
	entries := make(map[string]Entry, len(parts))
	for _, p := range parts {
		if p.Malformed {
			continue
		}
		name := EntryName(p)
		entries[name] = Entry{
			Name:   name,
			Offset: p.Offset,
			Size:   p.Size,
		}
	}
	return entries
}

// readRange reads up to size bytes at offset from a file of the given length.
// Reads past the end return no data.
func readRange(r io.ReaderAt, length uint64, offset int64, size int) ([]byte, error) {
	if offset < 0 || uint64(offset) >= length {
		return []byte{}, nil
	}
	size = int(min(uint64(size), length-uint64(offset)))

	buf := make([]byte, size)
	n, err := r.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}
