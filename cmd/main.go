package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ostafen/partview/cmd/cmd"
	"github.com/ostafen/partview/internal/env"
)

func main() {
	// stdout is reserved for the report.
	PrintLogo(os.Stderr)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func PrintLogo(w io.Writer) {
	fmt.Fprintln(w, "                   _        _               ")
	fmt.Fprintln(w, " _ __   __ _ _ __| |___   _(_) _____      __")
	fmt.Fprintln(w, "| '_ \\ / _` | '__| __\\ \\ / / |/ _ \\ \\ /\\ / /")
	fmt.Fprintln(w, "| |_) | (_| | |  | |_ \\ V /| |  __/\\ V  V / ")
	fmt.Fprintln(w, "| .__/ \\__,_|_|   \\__| \\_/ |_|\\___| \\_/\\_/  ")
	fmt.Fprintln(w, "|_|                                         ")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "MBR and GPT partition table inspector")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Version:   %s\n", env.Version)
	fmt.Fprintf(w, "Commit:    %s\n", env.CommitHash)
	fmt.Fprintf(w, "Build Time: %s\n", env.BuildTime)
	fmt.Fprintln(w, " ")
}
