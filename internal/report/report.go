// Package report turns a decoded partition table into a printable report.
package report

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ostafen/partview/internal/disk"
	"github.com/ostafen/partview/internal/hash"
	"github.com/ostafen/partview/internal/parttype"
	"github.com/ostafen/partview/pkg/util/format"
)

// BootRecordSize is the number of bytes dumped per boot record.
const BootRecordSize = 16

// MBREntry is a used primary partition slot.
type MBREntry struct {
	Slot     int    `json:"slot" yaml:"slot"`
	BootFlag uint8  `json:"boot_flag" yaml:"boot_flag"`
	Bootable bool   `json:"bootable" yaml:"bootable"`
	TypeCode uint8  `json:"type_code" yaml:"type_code"`
	TypeName string `json:"type_name" yaml:"type_name"`
	StartLBA uint32 `json:"start_lba" yaml:"start_lba"`
	Sectors  uint32 `json:"sectors" yaml:"sectors"`
	Size     uint64 `json:"size_bytes" yaml:"size_bytes"`
	SizeText string `json:"size" yaml:"size"`
	Raw      string `json:"raw" yaml:"raw"`
}

// GPTInfo holds the header fields worth showing.
type GPTInfo struct {
	Revision       string `json:"revision" yaml:"revision"`
	DiskGUID       string `json:"disk_guid" yaml:"disk_guid"`
	FirstUsableLBA uint64 `json:"first_usable_lba" yaml:"first_usable_lba"`
	LastUsableLBA  uint64 `json:"last_usable_lba" yaml:"last_usable_lba"`
	EntryLBA       uint64 `json:"entry_lba" yaml:"entry_lba"`
	EntryCount     uint32 `json:"entry_count" yaml:"entry_count"`
	EntrySize      uint32 `json:"entry_size" yaml:"entry_size"`
}

// GPTEntry is a used GPT partition entry.
type GPTEntry struct {
	Num        int    `json:"number" yaml:"number"`
	Index      int    `json:"index" yaml:"index"`
	TypeGUID   string `json:"type_guid" yaml:"type_guid"`
	TypeName   string `json:"type_name" yaml:"type_name"`
	UniqueGUID string `json:"unique_guid" yaml:"unique_guid"`
	StartLBA   uint64 `json:"start_lba" yaml:"start_lba"`
	EndLBA     uint64 `json:"end_lba" yaml:"end_lba"`
	Attributes uint64 `json:"attributes" yaml:"attributes"`
	Name       string `json:"name" yaml:"name"`
	Size       uint64 `json:"size_bytes" yaml:"size_bytes"`
	SizeText   string `json:"size" yaml:"size"`
	Malformed  bool   `json:"malformed,omitempty" yaml:"malformed,omitempty"`
}

// BootRecord is a fixed-size dump taken at a caller-supplied offset inside a partition.
type BootRecord struct {
	Partition  int    `json:"partition" yaml:"partition"`
	StartLBA   uint64 `json:"start_lba" yaml:"start_lba"`
	Offset     int64  `json:"offset" yaml:"offset"`
	ByteOffset int64  `json:"byte_offset" yaml:"byte_offset"`
	Hex        string `json:"hex,omitempty" yaml:"hex,omitempty"`
	ASCII      string `json:"ascii,omitempty" yaml:"ascii,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is everything partview knows about an image.
type Report struct {
	Image         string       `json:"image" yaml:"image"`
	ImageSize     int64        `json:"image_size" yaml:"image_size"`
	Scheme        string       `json:"scheme" yaml:"scheme"`
	Hashes        []hash.Sum   `json:"hashes,omitempty" yaml:"hashes,omitempty"`
	DiskSignature string       `json:"disk_signature,omitempty" yaml:"disk_signature,omitempty"`
	MBR           []MBREntry   `json:"mbr_partitions,omitempty" yaml:"mbr_partitions,omitempty"`
	UnusedSlots   []int        `json:"unused_slots,omitempty" yaml:"unused_slots,omitempty"`
	GPT           *GPTInfo     `json:"gpt,omitempty" yaml:"gpt,omitempty"`
	GPTPartitions []GPTEntry   `json:"gpt_partitions,omitempty" yaml:"gpt_partitions,omitempty"`
	BootRecords   []BootRecord `json:"boot_records,omitempty" yaml:"boot_records,omitempty"`
	Warnings      []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// extents of the listed partitions, used by the DFXML writer
	parts []disk.Partition
}

// New builds a report from a decoded table, resolving type names with types.
func New(image string, size int64, t *disk.Table, types *parttype.Lookup) *Report {
	if types == nil {
		types = parttype.Default()
	}

	r := &Report{
		Image:     image,
		ImageSize: size,
		Scheme:    t.Scheme.String(),
		parts:     t.Partitions(),
	}

	switch t.Scheme {
	case disk.SchemeMBR:
		r.fillMBR(t, types)
	case disk.SchemeGPT:
		r.fillGPT(t, types)
	}
	return r
}

func (r *Report) fillMBR(t *disk.Table, types *parttype.Lookup) {
	if t.MBR == nil {
		return
	}
	r.DiskSignature = fmt.Sprintf("0x%08X", t.MBR.ReadDiskSignature())

	for i := range t.MBR.PartitionEntries {
		if t.MBR.PartitionEntries[i].IsEmpty() {
			r.UnusedSlots = append(r.UnusedSlots, i+1)
		}
	}

	for _, p := range t.MBRPartitions {
		raw := t.MBR.PartitionEntries[p.Slot-1].Bytes()
		r.MBR = append(r.MBR, MBREntry{
			Slot:     p.Slot,
			BootFlag: p.BootFlag,
			Bootable: p.Bootable(),
			TypeCode: uint8(p.Type),
			TypeName: types.MBRName(uint8(p.Type)),
			StartLBA: p.StartLBA,
			Sectors:  p.TotalSectors,
			Size:     p.Size(),
			SizeText: format.FormatSize(p.Size()),
			Raw:      strings.ToUpper(hex.EncodeToString(raw[:])),
		})
		if p.IsExtended() {
			r.Warn(fmt.Sprintf("partition %d is an extended partition; logical partitions are not listed", p.Slot))
		}
	}
}

func (r *Report) fillGPT(t *disk.Table, types *parttype.Lookup) {
	h := t.GPTHeader
	if h == nil {
		return
	}
	r.GPT = &GPTInfo{
		Revision:       fmt.Sprintf("%d.%d", h.Revision>>16, h.Revision&0xFFFF),
		DiskGUID:       h.DiskGUID.String(),
		FirstUsableLBA: h.FirstUsableLBA,
		LastUsableLBA:  h.LastUsableLBA,
		EntryLBA:       h.PartitionEntryLBA,
		EntryCount:     h.NumberOfPartitionEntries,
		EntrySize:      h.SizeOfPartitionEntry,
	}

	for _, p := range t.GPTPartitions {
		r.GPTPartitions = append(r.GPTPartitions, GPTEntry{
			Num:        p.Num,
			Index:      p.Index,
			TypeGUID:   p.TypeGUID.String(),
			TypeName:   types.GPTName(p.TypeGUID),
			UniqueGUID: p.UniqueGUID.String(),
			StartLBA:   p.StartLBA,
			EndLBA:     p.EndLBA,
			Attributes: p.Attributes,
			Name:       p.Name,
			Size:       p.Size(),
			SizeText:   format.FormatSize(p.Size()),
			Malformed:  p.Malformed(),
		})
		if err := p.Validate(); err != nil {
			r.Warn(err.Error())
		}
	}
}

// Warn records a non-fatal problem found while analyzing the image.
func (r *Report) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Partitions returns the extents of the listed partitions.
func (r *Report) Partitions() []disk.Partition {
	return r.parts
}

// NewBootRecord describes data read at startLBA*512+offset for partition num.
func NewBootRecord(num int, startLBA uint64, offset int64, data []byte) BootRecord {
	ascii := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			ascii[i] = b
		} else {
			ascii[i] = '.'
		}
	}

	hexValues := make([]string, len(data))
	for i, b := range data {
		hexValues[i] = fmt.Sprintf("%02X", b)
	}

	return BootRecord{
		Partition:  num,
		StartLBA:   startLBA,
		Offset:     offset,
		ByteOffset: int64(startLBA*disk.SectorSize) + offset,
		Hex:        strings.Join(hexValues, " "),
		ASCII:      string(ascii),
	}
}

// FailedBootRecord records that the dump for partition num could not be read.
func FailedBootRecord(num int, startLBA uint64, offset int64, err error) BootRecord {
	return BootRecord{
		Partition:  num,
		StartLBA:   startLBA,
		Offset:     offset,
		ByteOffset: int64(startLBA*disk.SectorSize) + offset,
		Error:      err.Error(),
	}
}
