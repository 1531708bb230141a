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
	"encoding/binary"
	"fmt"
)

// MBRPartitionType is the one-byte partition type code of an MBR entry.
type MBRPartitionType uint8

const (
	PartitionTypeEmpty         MBRPartitionType = 0x00
	PartitionTypeExtendedCHS   MBRPartitionType = 0x05
	PartitionTypeExtendedLBA   MBRPartitionType = 0x0F
	PartitionTypeLinuxExtended MBRPartitionType = 0x85
	PartitionTypeGPTProtective MBRPartitionType = 0xEE
)

// BootIndicatorActive marks a bootable MBR partition.
const BootIndicatorActive = 0x80

// MBRPartitionEntry represents a single 16-byte entry in the MBR's partition table.
// All multi-byte fields are stored as byte arrays to explicitly handle little-endian
// conversion when reading from the raw MBR byte slice.
type MBRPartitionEntry struct {
	BootIndicator uint8            // 0x00: 0x80 for bootable, 0x00 for inactive
	StartCHS      [3]byte          // 0x01: Starting Cylinder-Head-Sector address
	PartitionType MBRPartitionType // 0x04: Partition type ID (e.g., 0x0B for FAT32, 0x83 for Linux)
	EndCHS        [3]byte          // 0x05: Ending Cylinder-Head-Sector address
	StartLBA      [4]byte          // 0x08: Starting Logical Block Address (LBA) - uint32, Little-Endian
	TotalSectors  [4]byte          // 0x0C: Total sectors in partition - uint32, Little-Endian
}

// ReadStartLBA returns the starting LBA of the partition.
func (p *MBRPartitionEntry) ReadStartLBA() uint32 {
	return binary.LittleEndian.Uint32(p.StartLBA[:])
}

// ReadTotalSectors returns the total number of sectors in the partition.
func (p *MBRPartitionEntry) ReadTotalSectors() uint32 {
	return binary.LittleEndian.Uint32(p.TotalSectors[:])
}

// IsEmpty reports whether the slot is unused.
func (p *MBRPartitionEntry) IsEmpty() bool {
	return p.PartitionType == PartitionTypeEmpty
}

// Bytes returns the 16-byte on-disk encoding of the entry.
func (p *MBRPartitionEntry) Bytes() [mbrPartitionEntrySize]byte {
	var b [mbrPartitionEntrySize]byte
	b[0x00] = p.BootIndicator
	copy(b[0x01:0x04], p.StartCHS[:])
	b[0x04] = byte(p.PartitionType)
	copy(b[0x05:0x08], p.EndCHS[:])
	copy(b[0x08:0x0C], p.StartLBA[:])
	copy(b[0x0C:0x10], p.TotalSectors[:])
	return b
}

func parseMBRPartitionEntry(b []byte) MBRPartitionEntry {
	var e MBRPartitionEntry
	e.BootIndicator = b[0x00]
	copy(e.StartCHS[:], b[0x01:0x04])
	e.PartitionType = MBRPartitionType(b[0x04])
	copy(e.EndCHS[:], b[0x05:0x08])
	copy(e.StartLBA[:], b[0x08:0x0C])
	copy(e.TotalSectors[:], b[0x0C:0x10])
	return e
}

// MBR represents the Master Boot Record structure.
type MBR struct {
	BootCode         [440]byte                            // 0x000-0x1B7: Bootstrap code
	DiskSignature    [4]byte                              // 0x1B8-0x1BB: Optional 32-bit disk signature
	Reserved         [2]byte                              // 0x1BC-0x1BD: Usually 0x0000
	PartitionEntries [mbrPartitionCount]MBRPartitionEntry // 0x1BE-0x1FD: Four 16-byte partition entries
	Signature        [2]byte                              // 0x1FE-0x1FF: MBR signature (0x55AA)
}

// ReadDiskSignature returns the disk signature as a uint32.
func (m *MBR) ReadDiskSignature() uint32 {
	return binary.LittleEndian.Uint32(m.DiskSignature[:])
}

// ReadSignature returns the MBR signature (should be 0xAA55).
func (m *MBR) ReadSignature() uint16 {
	return binary.LittleEndian.Uint16(m.Signature[:])
}

// IsProtective reports whether the first entry marks a GPT protective MBR.
func (m *MBR) IsProtective() bool {
	return m.PartitionEntries[0].PartitionType == PartitionTypeGPTProtective
}

// Partitions returns the used entries in slot order.
// Empty slots are skipped but emitted entries keep their original slot number.
func (m *MBR) Partitions() []MBRPartition {
	partitions := make([]MBRPartition, 0, mbrPartitionCount)
	for i := range m.PartitionEntries {
		e := &m.PartitionEntries[i]
		if e.IsEmpty() {
			continue
		}
		partitions = append(partitions, MBRPartition{
			Slot:         i + 1,
			BootFlag:     e.BootIndicator,
			Type:         e.PartitionType,
			StartLBA:     e.ReadStartLBA(),
			TotalSectors: e.ReadTotalSectors(),
		})
	}
	return partitions
}

// ParseMBR parses a 512-byte slice into an MBR struct.
// It assumes the input slice contains the raw binary data of an MBR in little-endian format.
func ParseMBR(data []byte) (*MBR, error) {
	if len(data) != mbrSize {
		return nil, fmt.Errorf("%w: expected %d bytes of MBR, got %d", ErrTruncatedImage, mbrSize, len(data))
	}

	var mbr MBR
	copy(mbr.BootCode[:], data[0x000:0x1B8])
	copy(mbr.DiskSignature[:], data[0x1B8:0x1BC])
	copy(mbr.Reserved[:], data[0x1BC:0x1BE])

	for i := 0; i < mbrPartitionCount; i++ {
		off := mbrPartitionsOffset + i*mbrPartitionEntrySize
		mbr.PartitionEntries[i] = parseMBRPartitionEntry(data[off : off+mbrPartitionEntrySize])
	}

	copy(mbr.Signature[:], data[mbrSignatureOffset:mbrSignatureOffset+2])

	if mbr.ReadSignature() != 0xAA55 {
		return nil, fmt.Errorf("%w: expected 0xAA55, got 0x%04X", ErrInvalidMBRSignature, mbr.ReadSignature())
	}
	return &mbr, nil
}

// ReadMBR reads sector 0 of src and decodes its primary partition table.
// Extended partitions are reported as regular entries; their EBR chain is not followed.
func ReadMBR(src *Source) (*MBR, []MBRPartition, error) {
	sector, err := src.readStruct(0, mbrSize, "MBR")
	if err != nil {
		return nil, nil, err
	}

	mbr, err := ParseMBR(sector)
	if err != nil {
		return nil, nil, err
	}
	return mbr, mbr.Partitions(), nil
}

// MBRPartition is a used primary partition entry.
type MBRPartition struct {
	Slot         int // 1-based slot index in the partition table
	BootFlag     uint8
	Type         MBRPartitionType
	StartLBA     uint32
	TotalSectors uint32
}

// Bootable reports whether the boot indicator is 0x80.
func (p MBRPartition) Bootable() bool {
	return p.BootFlag == BootIndicatorActive
}

// IsExtended reports whether the entry points to an extended partition container.
func (p MBRPartition) IsExtended() bool {
	switch p.Type {
	case PartitionTypeExtendedCHS, PartitionTypeExtendedLBA, PartitionTypeLinuxExtended:
		return true
	}
	return false
}

// Offset returns the byte offset of the partition.
func (p MBRPartition) Offset() uint64 {
	return uint64(p.StartLBA) * SectorSize
}

// Size returns the partition size in bytes.
func (p MBRPartition) Size() uint64 {
	return uint64(p.TotalSectors) * SectorSize
}

// String provides a human-readable representation of an MBRPartition.
func (p MBRPartition) String() string {
	return fmt.Sprintf("slot %d: type 0x%02X, boot 0x%02X, start LBA %d, %d sectors",
		p.Slot, uint8(p.Type), p.BootFlag, p.StartLBA, p.TotalSectors)
}
