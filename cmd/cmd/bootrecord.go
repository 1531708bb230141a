package cmd

import (
	"errors"

	"github.com/ostafen/partview/internal/inspect"
	"github.com/ostafen/partview/internal/report"
	"github.com/spf13/cobra"
)

func DefineBootRecordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootrecord <image> --offset N [--offset N ...]",
		Short: "Dump 16 bytes at the given offsets of each partition",
		Long: `The 'bootrecord' command prints 16 bytes, in hex and ASCII, read at start LBA * 512 + offset.
The first offset applies to the first listed partition, the second to the second one and so on.
Extra offsets are ignored.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunBootRecord,
	}

	cmd.Flags().Int64SliceP("offset", "o", nil, "boot record offsets, one per partition in table order")
	_ = cmd.MarkFlagRequired("offset")
	return cmd
}

func RunBootRecord(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts, err := s.inspectOptions(cmd)
	if err != nil {
		return err
	}
	if opts.Offsets, err = getOffsets(cmd); err != nil {
		return err
	}
	if len(opts.Offsets) == 0 {
		return errors.New("at least one --offset is required")
	}
	opts.Hash = false

	img, err := inspect.Open(imagePath(args[0]), opts)
	if err != nil {
		return err
	}
	defer img.Close()

	full, err := inspect.Analyze(img, opts)
	if err != nil {
		return err
	}

	r := &report.Report{
		Image:       full.Image,
		ImageSize:   full.ImageSize,
		BootRecords: full.BootRecords,
	}
	return report.Write(opts.Out, r, opts.Report)
}
