// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package disk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"strings"
	"unicode/utf16"
)

const (
	gptHeaderSize = 92

	// MinGPTEntrySize is the smallest partition entry that holds every field including the name.
	MinGPTEntrySize = 128

	gptNameOffset = 56
	gptNameEnd    = 128
)

// GPTHeader represents the primary GPT header found at LBA 1.
// Based on UEFI Specification 2.10, Section 5.3.2.
type GPTHeader struct {
	Signature                [8]byte // 0x00: "EFI PART"
	Revision                 uint32  // 0x08
	HeaderSize               uint32  // 0x0C
	HeaderCRC32              uint32  // 0x10
	MyLBA                    uint64  // 0x18
	AlternateLBA             uint64  // 0x20
	FirstUsableLBA           uint64  // 0x28
	LastUsableLBA            uint64  // 0x30
	DiskGUID                 GUID    // 0x38, display order
	PartitionEntryLBA        uint64  // 0x48
	NumberOfPartitionEntries uint32  // 0x50
	SizeOfPartitionEntry     uint32  // 0x54
	PartitionEntryArrayCRC32 uint32  // 0x58

	raw []byte
}

// ParseGPTHeader decodes the 92-byte GPT header.
func ParseGPTHeader(data []byte) (*GPTHeader, error) {
	if len(data) < gptHeaderSize {
		return nil, fmt.Errorf("%w: expected %d bytes of GPT header, got %d", ErrTruncatedImage, gptHeaderSize, len(data))
	}

	var h GPTHeader
	copy(h.Signature[:], data[0:8])
	if !bytes.Equal(h.Signature[:], gptSignature) {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidGPTSignature, h.Signature[:])
	}

	le := binary.LittleEndian
	h.Revision = le.Uint32(data[8:12])
	h.HeaderSize = le.Uint32(data[12:16])
	h.HeaderCRC32 = le.Uint32(data[16:20])
	h.MyLBA = le.Uint64(data[24:32])
	h.AlternateLBA = le.Uint64(data[32:40])
	h.FirstUsableLBA = le.Uint64(data[40:48])
	h.LastUsableLBA = le.Uint64(data[48:56])
	h.DiskGUID = GUIDFromDisk(data[56:72])
	h.PartitionEntryLBA = le.Uint64(data[72:80])
	h.NumberOfPartitionEntries = le.Uint32(data[80:84])
	h.SizeOfPartitionEntry = le.Uint32(data[84:88])
	h.PartitionEntryArrayCRC32 = le.Uint32(data[88:92])
	h.raw = append([]byte(nil), data[:gptHeaderSize]...)

	return &h, nil
}

// ReadGPTHeader reads and parses the primary GPT header (LBA 1).
func ReadGPTHeader(src *Source) (*GPTHeader, error) {
	data, err := src.readStruct(SectorSize, gptHeaderSize, "GPT header")
	if err != nil {
		return nil, err
	}
	return ParseGPTHeader(data)
}

// VerifyHeaderCRC recomputes the header checksum with the CRC field zeroed.
// Only the first 92 bytes are covered, so headers declaring a larger size are
// checked against that prefix.
func (h *GPTHeader) VerifyHeaderCRC() error {
	if h.raw == nil {
		return fmt.Errorf("header was not decoded from raw bytes")
	}

	tmp := append([]byte(nil), h.raw...)
	binary.LittleEndian.PutUint32(tmp[16:20], 0)

	size := min(int(h.HeaderSize), len(tmp))
	if calc := crc32.ChecksumIEEE(tmp[:size]); calc != h.HeaderCRC32 {
		return fmt.Errorf("GPT header CRC mismatch: calculated 0x%08X, expected 0x%08X", calc, h.HeaderCRC32)
	}
	return nil
}

// VerifyArrayCRC checksums the partition entry array as declared by the header.
func (h *GPTHeader) VerifyArrayCRC(src *Source) error {
	off, ok := lbaOffset(h.PartitionEntryLBA)
	if !ok {
		return fmt.Errorf("partition entry LBA %d out of range", h.PartitionEntryLBA)
	}

	size := int64(h.NumberOfPartitionEntries) * int64(h.SizeOfPartitionEntry)
	data, err := src.ReadAt(off, size)
	if err != nil {
		return fmt.Errorf("unable to read partition entry array: %w", err)
	}

	if calc := crc32.ChecksumIEEE(data); calc != h.PartitionEntryArrayCRC32 {
		return fmt.Errorf("GPT entry array CRC mismatch: calculated 0x%08X, expected 0x%08X", calc, h.PartitionEntryArrayCRC32)
	}
	return nil
}

// GPTPartition is a used GPT partition entry.
type GPTPartition struct {
	Num        int // 1-based, counts only used entries
	Index      int // 0-based position in the entry array
	TypeGUID   GUID
	UniqueGUID GUID
	StartLBA   uint64
	EndLBA     uint64 // inclusive
	Attributes uint64
	Name       string
}

// Malformed reports whether the ending LBA precedes the starting LBA, or
// the extent does not fit in an int64 byte range.
func (p GPTPartition) Malformed() bool {
	return p.EndLBA < p.StartLBA || !p.addressable()
}

// addressable reports whether the byte just past the last sector is representable.
func (p GPTPartition) addressable() bool {
	_, ok := lbaOffset(p.EndLBA + 1)
	return ok && p.EndLBA < math.MaxUint64
}

// Sectors returns the number of sectors spanned by the partition.
// A malformed entry spans zero sectors.
func (p GPTPartition) Sectors() uint64 {
	if p.Malformed() {
		return 0
	}
	return p.EndLBA - p.StartLBA + 1
}

// Validate returns ErrMalformedEntry for entries whose extent is inverted
// or out of the addressable range.
func (p GPTPartition) Validate() error {
	if p.EndLBA < p.StartLBA {
		return fmt.Errorf("%w: partition %d ends at LBA %d before its start LBA %d", ErrMalformedEntry, p.Num, p.EndLBA, p.StartLBA)
	}
	if !p.addressable() {
		return fmt.Errorf("%w: partition %d spans LBA %d..%d, beyond the addressable range", ErrMalformedEntry, p.Num, p.StartLBA, p.EndLBA)
	}
	return nil
}

// Offset returns the byte offset of the partition, or 0 when the
// starting LBA is beyond the addressable range.
func (p GPTPartition) Offset() uint64 {
	off, ok := lbaOffset(p.StartLBA)
	if !ok {
		return 0
	}
	return uint64(off)
}

// Size returns the partition size in bytes.
func (p GPTPartition) Size() uint64 {
	return p.Sectors() * SectorSize
}

// Attribute bits defined by the UEFI specification.
const (
	GPTAttrRequired       = 1 << 0
	GPTAttrNoBlockIO      = 1 << 1
	GPTAttrLegacyBIOSBoot = 1 << 2
)

// parseGPTEntry decodes a raw entry. The boolean is false for unused entries.
func parseGPTEntry(b []byte) (GPTPartition, bool) {
	typeGUID := GUIDFromDisk(b[0:16])
	if typeGUID.IsZero() {
		return GPTPartition{}, false
	}

	le := binary.LittleEndian
	return GPTPartition{
		TypeGUID:   typeGUID,
		UniqueGUID: GUIDFromDisk(b[16:32]),
		StartLBA:   le.Uint64(b[32:40]),
		EndLBA:     le.Uint64(b[40:48]),
		Attributes: le.Uint64(b[48:56]),
		Name:       decodePartitionName(b[gptNameOffset:gptNameEnd]),
	}, true
}

// decodePartitionName decodes a UTF-16LE name, dropping unpaired surrogates
// and trimming the NUL padding and surrounding whitespace.
func decodePartitionName(b []byte) string {
	u16 := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u16 = append(u16, binary.LittleEndian.Uint16(b[i:i+2]))
	}

	runes := make([]rune, 0, len(u16))
	for i := 0; i < len(u16); i++ {
		c := u16[i]
		switch {
		case utf16.IsSurrogate(rune(c)):
			if c < 0xDC00 && i+1 < len(u16) {
				if r := utf16.DecodeRune(rune(c), rune(u16[i+1])); r != '�' {
					runes = append(runes, r)
					i++
				}
			}
		default:
			runes = append(runes, rune(c))
		}
	}

	return strings.TrimSpace(strings.TrimRight(string(runes), "\x00"))
}

// ReadGPT reads the primary GPT header and its partition entry array.
//
// Entries are read one at a time at PartitionEntryLBA*512 + i*SizeOfPartitionEntry.
// A short read marks the end of the table. Unused entries are skipped and
// do not consume a sequence number.
func ReadGPT(src *Source) (*GPTHeader, []GPTPartition, error) {
	header, err := ReadGPTHeader(src)
	if err != nil {
		return nil, nil, err
	}

	count := header.NumberOfPartitionEntries
	entrySize := int64(header.SizeOfPartitionEntry)
	if count > 0 && entrySize < MinGPTEntrySize {
		return nil, nil, fmt.Errorf("%w: partition entry size %d is smaller than %d", ErrInvalidGPTHeader, entrySize, MinGPTEntrySize)
	}

	var partitions []GPTPartition

	base, ok := lbaOffset(header.PartitionEntryLBA)
	if !ok {
		return header, partitions, nil
	}

	for i := int64(0); i < int64(count); i++ {
		if base > src.Size() || i > (src.Size()-base)/entrySize {
			break
		}

		entry, err := src.ReadAt(base+i*entrySize, entrySize)
		if errors.Is(err, ErrShortRead) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read partition entry %d: %w", i, err)
		}

		p, used := parseGPTEntry(entry)
		if !used {
			continue
		}
		p.Index = int(i)
		p.Num = len(partitions) + 1
		partitions = append(partitions, p)
	}
	return header, partitions, nil
}
