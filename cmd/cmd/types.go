package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func DefineTypesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List known partition type codes and GUIDs",
		Long: `The 'types' command displays the MBR type codes and GPT type GUIDs partview can name.
Entries of the CSV file given with --types-file override the built-in MBR names.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         RunTypes,
	}

	cmd.Flags().String("scheme", "all", "which table to list: mbr, gpt or all")
	return cmd
}

func RunTypes(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	scheme, _ := cmd.Flags().GetString("scheme")
	switch scheme {
	case "all", "mbr", "gpt":
	default:
		return fmt.Errorf("invalid scheme %q (expected mbr, gpt or all)", scheme)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	if scheme != "gpt" {
		fmt.Fprintln(w, "MBR CODE\tNAME")
		for _, code := range s.types.MBRCodes() {
			fmt.Fprintf(w, "0x%02X\t%s\n", code, s.types.MBRName(code))
		}
	}
	if scheme == "all" {
		fmt.Fprintln(w, "\t")
	}
	if scheme != "mbr" {
		fmt.Fprintln(w, "GPT TYPE GUID\tNAME")
		for _, g := range s.types.GPTTypes() {
			fmt.Fprintf(w, "%s\t%s\n", g.Canonical(), s.types.GPTName(g))
		}
	}
	return w.Flush()
}
