package disk

import (
	"fmt"
)

// Partition is the scheme-independent extent of a partition.
type Partition struct {
	Num       int
	Offset    uint64 // Offset in bytes from the start of the disk
	Size      uint64 // Size in bytes of the partition
	BlockSize uint32 // Block size in bytes
	Name      string // GPT partition name, empty for MBR
	Bootable  bool

	// Malformed extents are listed but never read.
	Malformed bool
}

// Table is a decoded partition table.
// Only the fields matching Scheme are populated.
type Table struct {
	Scheme Scheme

	MBR           *MBR
	MBRPartitions []MBRPartition

	GPTHeader     *GPTHeader
	GPTPartitions []GPTPartition
}

// Read detects the partitioning scheme of src and decodes its partition table.
func Read(src *Source) (*Table, error) {
	scheme, err := Detect(src)
	if err != nil {
		if scheme == SchemeUnknown {
			return nil, fmt.Errorf("%w: %w", ErrAmbiguousScheme, err)
		}
		return nil, err
	}

	t := &Table{Scheme: scheme}
	switch scheme {
	case SchemeMBR:
		t.MBR, t.MBRPartitions, err = ReadMBR(src)
	case SchemeGPT:
		t.GPTHeader, t.GPTPartitions, err = ReadGPT(src)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Len returns the number of decoded partitions.
func (t *Table) Len() int {
	if t.Scheme == SchemeGPT {
		return len(t.GPTPartitions)
	}
	return len(t.MBRPartitions)
}

// Partitions returns the byte extents of the decoded partitions.
// MBR partitions are numbered by slot, GPT partitions by sequence number.
func (t *Table) Partitions() []Partition {
	parts := make([]Partition, 0, t.Len())

	switch t.Scheme {
	case SchemeMBR:
		for _, p := range t.MBRPartitions {
			parts = append(parts, Partition{
				Num:       p.Slot,
				Offset:    p.Offset(),
				Size:      p.Size(),
				BlockSize: SectorSize,
				Bootable:  p.Bootable(),
			})
		}
	case SchemeGPT:
		for _, p := range t.GPTPartitions {
			parts = append(parts, Partition{
				Num:       p.Num,
				Offset:    p.Offset(),
				Size:      p.Size(),
				BlockSize: SectorSize,
				Name:      p.Name,
				Bootable:  p.Attributes&GPTAttrLegacyBIOSBoot != 0,
				Malformed: p.Malformed(),
			})
		}
	}
	return parts
}
