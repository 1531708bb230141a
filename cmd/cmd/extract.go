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
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ostafen/partview/internal/disk"
	"github.com/ostafen/partview/internal/image"
	"github.com/ostafen/partview/internal/inspect"
	"github.com/ostafen/partview/pkg/dfxml"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func DefineExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <image> [report_file]",
		Short: "Copy every partition of an image to its own file",
		Long: `The 'extract' command writes the byte range of each partition to <dir>/p<N>.img.
Partitions are read from the image's partition table, or from a DFXML report previously
produced with 'inspect --format dfxml' when a report file is given.`,
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE:         RunExtract,
	}
	cmd.Flags().StringP("dir", "i", "", "directory where partitions are written (default: <image name>-partitions)")
	return cmd
}

func RunExtract(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts, err := s.inspectOptions(cmd)
	if err != nil {
		return err
	}

	img, err := inspect.Open(imagePath(args[0]), opts)
	if err != nil {
		return err
	}
	defer img.Close()

	parts, err := resolvePartitions(s.fs, img, args[1:])
	if err != nil {
		return err
	}

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = defaultDir(img.Name, "-partitions")
	}

	paths, err := inspect.Extract(s.fs, img.ReaderAt(), img.Size(), parts, dir, opts.BufferSize, s.log)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

// resolvePartitions reads partitions from a DFXML report when one is given,
// and from the image's partition table otherwise.
func resolvePartitions(afs afero.Fs, img *image.Image, reportArgs []string) ([]disk.Partition, error) {
	if len(reportArgs) == 0 {
		table, err := disk.Read(img.Source())
		if err != nil {
			return nil, err
		}
		return table.Partitions(), nil
	}

	f, err := afs.Open(reportArgs[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	volumes, err := dfxml.ReadVolumes(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %q: %w", reportArgs[0], err)
	}
	return inspect.PartitionsFromVolumes(volumes)
}

// defaultDir derives a directory name from an image path by stripping its extensions.
func defaultDir(imagePath, suffix string) string {
	base := filepath.Base(imagePath)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base + suffix
}

