package report

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/ostafen/partview/internal/disk"
	"github.com/ostafen/partview/pkg/util/format"
)

const (
	ansiReset     = "\033[0m"
	ansiBold      = "\033[1m"
	ansiUnderline = "\033[4m"
	ansiRed       = "\033[31m"
	ansiGreen     = "\033[32m"
	ansiYellow    = "\033[33m"
	ansiCyan      = "\033[36m"
)

type painter bool

func (p painter) paint(s string, codes ...string) string {
	if !p || len(codes) == 0 {
		return s
	}
	return strings.Join(codes, "") + s + ansiReset
}

func (p painter) title(s string) string { return p.paint(s, ansiBold, ansiUnderline) }

// textWriter keeps the first write error so rendering code can stay linear.
type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func writeText(w io.Writer, r *Report, opts Options) error {
	p := painter(opts.Color)
	tw := &textWriter{w: w}

	if len(r.Hashes) > 0 {
		if opts.Verbose {
			tw.printf("%s\n", p.title("Hashes for "+r.Image+":"))
			tw.printf("File size: %s (%d bytes)\n", format.FormatSize(uint64(max(r.ImageSize, 0))), r.ImageSize)
		}
		if tw.err == nil {
			tab := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			for _, s := range r.Hashes {
				fmt.Fprintf(tab, "%s:\t%s\n", s.Algorithm, s.Hex)
			}
			tw.err = tab.Flush()
		}
		tw.printf("\n")
	}

	if opts.Verbose {
		tw.printf("%s\n", p.title("Partition scheme of "+r.Image+":"))
		tw.printf("%s\n", p.paint(r.Scheme+" partition scheme detected.", ansiGreen))
	}

	switch r.Scheme {
	case disk.SchemeMBR.String():
		writeMBRText(tw, r, p, opts.Verbose)
	case disk.SchemeGPT.String():
		writeGPTText(tw, r, p, opts.Verbose)
	}

	for _, br := range r.BootRecords {
		writeBootRecord(tw, br, p, opts.Verbose)
	}

	if len(r.Warnings) > 0 {
		tw.printf("\n")
		for _, msg := range r.Warnings {
			tw.printf("%s\n", p.paint("[WARN] "+msg, ansiYellow))
		}
	}
	return tw.err
}

func writeMBRText(tw *textWriter, r *Report, p painter, verbose bool) {
	if verbose {
		tw.printf("%s\n", p.title("MBR of "+r.Image+":"))
		tw.printf("Sector size assumed: %d bytes\n", disk.SectorSize)
		if r.DiskSignature != "" {
			tw.printf("Disk signature: %s\n", r.DiskSignature)
		}

		for slot := 1; slot <= 4; slot++ {
			if slices.Contains(r.UnusedSlots, slot) {
				tw.printf("\n%s\n", p.paint(fmt.Sprintf("Partition %d is unused.", slot), ansiYellow))
				continue
			}
			idx := slices.IndexFunc(r.MBR, func(e MBREntry) bool { return e.Slot == slot })
			if idx < 0 {
				continue
			}
			e := r.MBR[idx]

			status := p.paint("Non-bootable", ansiRed)
			if e.Bootable {
				status = p.paint("Bootable", ansiGreen)
			}
			tw.printf("\n%s %s\n", p.paint(fmt.Sprintf("Partition Entry %d raw data:", slot), ansiBold), e.Raw)
			tw.printf("%s\n", p.paint(fmt.Sprintf("Partition %d:", slot), ansiBold))
			tw.printf("  Boot Flag: 0x%02X (%s)\n", e.BootFlag, status)
			tw.printf("  Partition Type: 0x%02X (%s)\n", e.TypeCode, e.TypeName)
			tw.printf("  Start LBA: %d (%d bytes)\n", e.StartLBA, uint64(e.StartLBA)*disk.SectorSize)
			tw.printf("  Size in sectors: %d\n", e.Sectors)
			tw.printf("  Partition Size: %s\n", e.SizeText)
		}
		tw.printf("\n")
	}

	if len(r.MBR) == 0 {
		tw.printf("%s\n", p.paint("No valid partitions found.", ansiRed))
		return
	}
	for _, e := range r.MBR {
		tw.printf("(%02X), %s , %d, %d\n", e.TypeCode, e.TypeName, e.StartLBA, e.Sectors)
	}
}

func writeGPTText(tw *textWriter, r *Report, p painter, verbose bool) {
	if verbose && r.GPT != nil {
		tw.printf("%s\n", p.title("GPT of "+r.Image+":"))
		tw.printf("Disk GUID: %s\n", p.paint(r.GPT.DiskGUID, ansiCyan))
		tw.printf("Partition entries start at LBA %d\n", r.GPT.EntryLBA)
		tw.printf("Number of partition entries: %d\n", r.GPT.EntryCount)
		tw.printf("Size of each partition entry: %d bytes\n", r.GPT.EntrySize)

		for _, e := range r.GPTPartitions {
			tw.printf("\n%s\n", p.paint(fmt.Sprintf("Partition %d:", e.Num), ansiBold))
			tw.printf("  Partition Type GUID: %s (%s)\n", p.paint(e.TypeGUID, ansiCyan), e.TypeName)
			tw.printf("  Unique Partition GUID: %s\n", p.paint(e.UniqueGUID, ansiCyan))
			tw.printf("  Start LBA: %d (%s)\n", e.StartLBA, lbaBytes(e.StartLBA))
			tw.printf("  End LBA: %d (%s)\n", e.EndLBA, lbaBytes(e.EndLBA))
			tw.printf("  Attributes Flags: 0x%X\n", e.Attributes)
			tw.printf("  Partition Size: %s\n", e.SizeText)
			tw.printf("  Partition Name: %s\n", e.Name)
		}
	}

	if len(r.GPTPartitions) == 0 {
		tw.printf("%s\n", p.paint("No valid partitions found.", ansiRed))
		return
	}
	for _, e := range r.GPTPartitions {
		tw.printf("\nPartition number: %d\n", e.Num)
		tw.printf("Partition Type GUID : %s\n", e.TypeGUID)
		tw.printf("Starting LBA in hex: 0x%X\n", e.StartLBA)
		tw.printf("Ending LBA in hex: 0x%X\n", e.EndLBA)
		tw.printf("Starting LBA in Decimal: %d\n", e.StartLBA)
		tw.printf("Ending LBA in Decimal: %d\n", e.EndLBA)
		tw.printf("Partition name: %s\n", e.Name)
	}
}

func writeBootRecord(tw *textWriter, br BootRecord, p painter, verbose bool) {
	if verbose {
		tw.printf("%s\n", p.title(fmt.Sprintf("Boot record of partition %d at offset %d:", br.Partition, br.Offset)))
		tw.printf("Start LBA: %d, Calculated byte offset: %d\n", br.StartLBA, br.ByteOffset)
	}

	if br.Error != "" {
		tw.printf("%s\n", p.paint(fmt.Sprintf("Could not read %d bytes from offset %d in partition %d.", BootRecordSize, br.Offset, br.Partition), ansiRed))
		return
	}

	ascii := make([]string, len(br.ASCII))
	for i := range br.ASCII {
		ascii[i] = br.ASCII[i : i+1]
	}

	tw.printf("\nPartition number: %d\n", br.Partition)
	tw.printf("%d bytes of boot record from offset %d: %s\n", BootRecordSize, br.Offset, br.Hex)
	tw.printf("ASCII:%s%s\n", strings.Repeat(" ", 36), strings.Join(ascii, "  "))
}

func lbaBytes(lba uint64) string {
	if lba > math.MaxUint64/disk.SectorSize {
		return "out of range"
	}
	return fmt.Sprintf("%d bytes", lba*disk.SectorSize)
}
