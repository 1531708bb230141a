package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/ostafen/partview/internal/disk"
	"github.com/ostafen/partview/internal/env"
	"github.com/ostafen/partview/pkg/dfxml"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Options control how a report is rendered.
type Options struct {
	Format  string // text, json, yaml or dfxml
	Verbose bool
	Color   bool
	Fs      afero.Fs // used to describe the host in DFXML output
}

// Write renders r to w in the requested format.
func Write(w io.Writer, r *Report, opts Options) error {
	switch opts.Format {
	case "", "text":
		return writeText(w, r, opts)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "dfxml":
		return writeDFXML(w, r, opts)
	}
	return fmt.Errorf("unsupported report format %q", opts.Format)
}

// UseColor resolves a color mode (auto, always, never) for w.
// In auto mode colors are enabled only when w is a terminal.
func UseColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeDFXML(w io.Writer, r *Report, opts Options) error {
	afs := opts.Fs
	if afs == nil {
		afs = afero.NewOsFs()
	}

	src := dfxml.Source{
		ImageFilename: r.Image,
		SectorSize:    disk.SectorSize,
		ImageSize:     uint64(r.ImageSize),
		PartitionType: r.Scheme,
	}
	if r.GPT != nil {
		src.DiskGUID = r.GPT.DiskGUID
	}
	for _, s := range r.Hashes {
		src.Hashes = append(src.Hashes, dfxml.HashDigest{Type: s.Algorithm, Value: s.Hex})
	}

	dw := dfxml.NewDFXMLWriter(w)
	err := dw.WriteHeader(dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Creator: dfxml.Creator{
			Package:              env.AppName,
			Version:              env.Version,
			ExecutionEnvironment: dfxml.GetExecEnv(afs),
		},
		Source: src,
	})
	if err != nil {
		return err
	}

	for _, v := range r.volumes() {
		if err := dw.WriteVolume(v); err != nil {
			return err
		}
	}
	return dw.Close()
}

func (r *Report) volumes() []dfxml.Volume {
	byNum := make(map[int]disk.Partition, len(r.parts))
	for _, p := range r.parts {
		byNum[p.Num] = p
	}

	volume := func(p disk.Partition) dfxml.Volume {
		var blocks uint64
		if p.BlockSize > 0 {
			blocks = p.Size / uint64(p.BlockSize)
		}
		return dfxml.Volume{
			Offset:          p.Offset,
			PartitionIndex:  p.Num,
			PartitionOffset: p.Offset,
			BlockSize:       p.BlockSize,
			BlockCount:      blocks,
			PartitionName:   p.Name,
			Bootable:        p.Bootable,
			ByteRuns: dfxml.ByteRuns{
				Runs: []dfxml.ByteRun{{ImgOffset: p.Offset, Length: p.Size}},
			},
		}
	}

	var volumes []dfxml.Volume
	for _, e := range r.MBR {
		v := volume(byNum[e.Slot])
		v.FTypeStr = e.TypeName
		v.TypeCode = fmt.Sprintf("0x%02X", e.TypeCode)
		volumes = append(volumes, v)
	}
	for _, e := range r.GPTPartitions {
		if e.Malformed {
			continue
		}
		v := volume(byNum[e.Num])
		v.FTypeStr = e.TypeName
		v.TypeCode = e.TypeGUID
		v.UniqueGUID = e.UniqueGUID
		volumes = append(volumes, v)
	}
	return volumes
}
