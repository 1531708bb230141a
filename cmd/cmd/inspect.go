package cmd

import (
	"github.com/ostafen/partview/internal/inspect"
	"github.com/spf13/cobra"
)

func DefineInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <image>",
		Short: "Detect the partitioning scheme of an image and list its partitions",
		Long: `The 'inspect' command reads the partition table of a raw disk image or device.
MBR tables are listed one line per used slot as "(type), name , start LBA, sectors".
GPT tables are listed with type GUID, LBA range and partition name.
Split images (.001) and compressed images (.gz, .zlib, .zst, .bz2, .sz, .s2) are accepted.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunInspect,
	}

	cmd.Flags().Bool("hash", false, "compute and save the image hashes before decoding")
	cmd.Flags().Int64SliceP("offset", "o", nil, "boot record offsets, one per partition in table order")
	return cmd
}

func RunInspect(cmd *cobra.Command, args []string) error {
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

	_, err = inspect.Run(imagePath(args[0]), opts)
	return err
}
