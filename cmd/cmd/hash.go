package cmd

import (
	"github.com/ostafen/partview/internal/inspect"
	"github.com/ostafen/partview/internal/report"
	"github.com/spf13/cobra"
)

func DefineHashCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash <image>",
		Short: "Compute the hashes of an image",
		Long: `The 'hash' command computes the MD5, SHA-256 and SHA-512 digests of an image in a single pass.
Each digest is saved to <output-dir>/<ALGORITHM>-<image name>.txt.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunHash,
	}
	return cmd
}

func RunHash(cmd *cobra.Command, args []string) error {
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

	sums, err := inspect.HashImage(img, opts)
	if err != nil {
		return err
	}

	r := &report.Report{
		Image:     img.Name,
		ImageSize: img.Size(),
		Hashes:    sums,
	}
	return report.Write(opts.Out, r, opts.Report)
}
