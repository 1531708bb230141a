// Package parttype maps partition type codes to human readable names.
package parttype

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/ostafen/partview/internal/disk"
	"github.com/spf13/afero"
)

// Unknown is returned for codes without a known name.
const Unknown = "Unknown"

var defaultMBR = map[mbr.Type]string{
	mbr.Fat12:         "FAT12",
	mbr.XenixRoot:     "XENIX root",
	mbr.XenixUsr:      "XENIX usr",
	mbr.Fat16:         "FAT16 <32M",
	mbr.ExtendedCHS:   "Extended",
	mbr.Fat16b:        "FAT16",
	mbr.NTFS:          "HPFS/NTFS/exFAT",
	mbr.CommodoreFAT:  "AIX",
	mbr.Fat32CHS:      "W95 FAT32",
	mbr.Fat32LBA:      "W95 FAT32 (LBA)",
	mbr.Fat16bLBA:     "W95 FAT16 (LBA)",
	mbr.ExtendedLBA:   "W95 Extended (LBA)",
	mbr.LinuxSwap:     "Linux swap / Solaris",
	mbr.Linux:         "Linux",
	mbr.LinuxExtended: "Linux extended",
	mbr.LinuxLVM:      "Linux LVM",
	mbr.Iso9660:       "ISO 9660",
	mbr.MacOSXUFS:     "Darwin UFS",
	mbr.MacOSXBoot:    "Darwin boot",
	mbr.HFS:           "HFS / HFS+",
	mbr.Solaris8Boot:  "Solaris boot",
	mbr.GPTProtective: "GPT",
	mbr.EFISystem:     "EFI (FAT-12/16/32)",
	mbr.VMWareFS:      "VMware VMFS",
	mbr.VMWareSwap:    "VMware VMKCORE",
}

var defaultGPT = map[gpt.Type]string{
	gpt.MBRPartitionScheme:       "MBR partition scheme",
	gpt.EFISystemPartition:       "EFI System",
	gpt.BIOSBoot:                 "BIOS boot",
	gpt.MicrosoftReserved:        "Microsoft reserved",
	gpt.MicrosoftBasicData:       "Microsoft basic data",
	gpt.MicrosoftLDMMetadata:     "Microsoft LDM metadata",
	gpt.MicrosoftLDMData:         "Microsoft LDM data",
	gpt.MicrosoftWindowsRecovery: "Windows recovery environment",
	gpt.LinuxFilesystem:          "Linux filesystem",
	gpt.LinuxRAID:                "Linux RAID",
	gpt.LinuxRootX86:             "Linux root (x86)",
	gpt.LinuxRootX86_64:          "Linux root (x86-64)",
	gpt.LinuxRootArm:             "Linux root (ARM)",
	gpt.LinuxRootArm64:           "Linux root (ARM-64)",
	gpt.LinuxSwap:                "Linux swap",
	gpt.LinuxLVM:                 "Linux LVM",
	gpt.LinuxDMCrypt:             "Linux dm-crypt",
	gpt.LinuxLUKS:                "Linux LUKS",
	gpt.VMwareVMFS:               "VMware VMFS",
}

// Lookup resolves partition type names. It is immutable once built and safe
// for concurrent use.
type Lookup struct {
	mbr map[uint8]string
	gpt map[disk.GUID]string
}

// Default returns the built-in type tables.
func Default() *Lookup {
	l := &Lookup{
		mbr: make(map[uint8]string, len(defaultMBR)),
		gpt: make(map[disk.GUID]string, len(defaultGPT)),
	}
	for code, name := range defaultMBR {
		l.mbr[uint8(code)] = name
	}
	for t, name := range defaultGPT {
		g, err := disk.ParseGUID(string(t))
		if err != nil {
			continue
		}
		l.gpt[g] = name
	}
	return l
}

// MBRName returns the name of an MBR type code or Unknown.
func (l *Lookup) MBRName(code uint8) string {
	if name, ok := l.mbr[code]; ok {
		return name
	}
	return Unknown
}

// GPTName returns the name of a GPT type GUID or Unknown.
func (l *Lookup) GPTName(g disk.GUID) string {
	if name, ok := l.gpt[g]; ok {
		return name
	}
	return Unknown
}

// MBRCodes returns the known MBR codes in ascending order.
func (l *Lookup) MBRCodes() []uint8 {
	return slices.Sorted(maps.Keys(l.mbr))
}

// GPTTypes returns the known GPT type GUIDs ordered by name.
func (l *Lookup) GPTTypes() []disk.GUID {
	return slices.SortedFunc(maps.Keys(l.gpt), func(a, b disk.GUID) int {
		if c := strings.Compare(l.gpt[a], l.gpt[b]); c != 0 {
			return c
		}
		return strings.Compare(a.String(), b.String())
	})
}

// WithCSV returns a copy of l overlaid with the MBR rows of r.
// Each row is "code,name" with a hexadecimal code, optionally prefixed by 0x.
// Rows that cannot be parsed are skipped and reported to log.
func (l *Lookup) WithCSV(r io.Reader, log *slog.Logger) (*Lookup, error) {
	out := &Lookup{
		mbr: maps.Clone(l.mbr),
		gpt: maps.Clone(l.gpt),
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				log.Warn("skipping malformed type row", "line", perr.Line, "err", perr.Err)
				continue
			}
			return nil, fmt.Errorf("failed to read type table: %w", err)
		}

		line, _ := cr.FieldPos(0)
		if len(row) < 2 {
			log.Warn("skipping invalid type row", "line", line, "row", row)
			continue
		}

		code := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(row[0])), "0x")
		v, err := strconv.ParseUint(code, 16, 8)
		if err != nil {
			log.Warn("skipping invalid type row", "line", line, "row", row)
			continue
		}
		out.mbr[uint8(v)] = strings.TrimSpace(row[1])
	}
	return out, nil
}

// LoadCSV overlays the type table stored at path on afs.
func (l *Lookup) LoadCSV(afs afero.Fs, path string, log *slog.Logger) (*Lookup, error) {
	f, err := afs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open type table %q: %w", path, err)
	}
	defer f.Close()

	return l.WithCSV(f, log)
}
