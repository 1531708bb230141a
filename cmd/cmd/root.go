package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ostafen/partview/internal/config"
	"github.com/ostafen/partview/internal/env"
	"github.com/ostafen/partview/internal/fs"
	"github.com/ostafen/partview/internal/inspect"
	"github.com/ostafen/partview/internal/logger"
	"github.com/ostafen/partview/internal/parttype"
	"github.com/ostafen/partview/internal/report"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     env.AppName,
		Short:   env.AppName + " - MBR and GPT partition table inspector",
		Version: env.Version,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "path to a configuration file (default: partview.yaml in ., $HOME/.partview, /etc/partview)")
	flags.String("log-level", "INFO", "log level: DEBUG, INFO, WARN or ERROR")
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.StringP("format", "f", "text", "report format: text, json, yaml or dfxml")
	flags.BoolP("verbose", "v", false, "print every decoded field")
	flags.String("color", "auto", "colorize text output: auto, always or never")
	flags.StringP("types-file", "t", "", "CSV file of MBR type codes and names (code,name)")
	flags.StringSlice("hash-algorithms", config.HashAlgorithms, "hash algorithms: md5, sha256, sha512")
	flags.StringP("output-dir", "d", ".", "directory where hash files are saved")
	flags.Bool("mmap", false, "memory-map image files")
	flags.String("max-decompressed-size", "4GB", "maximum size of a decompressed image held in memory")
	flags.String("buffer-size", "1MB", "size of the read buffer used for hashing and extraction")

	rootCmd.AddCommand(
		DefineInspectCommand(),
		DefineHashCommand(),
		DefineBootRecordCommand(),
		DefineTypesCommand(),
		DefineExtractCommand(),
		DefineMountCommand(),
	)
	return rootCmd
}

func Execute() error {
	return NewRootCommand().Execute()
}

// session holds what every command needs once flags are parsed.
type session struct {
	fs     afero.Fs
	cfg    *config.Config
	log    *slog.Logger
	types  *parttype.Lookup
	closer io.Closer
}

func newSession(cmd *cobra.Command) (*session, error) {
	afs := afero.NewOsFs()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(afs, cmd.Flags(), configFile)
	if err != nil {
		return nil, err
	}

	level := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(cmd.ErrOrStderr(), level)

	var closer io.Closer
	if cfg.LogFile != "" {
		log, closer, err = logger.Setup(afs, cfg.LogFile, level)
		if err != nil {
			return nil, err
		}
	}

	s := &session{
		fs:     afs,
		cfg:    cfg,
		log:    log,
		types:  parttype.Default(),
		closer: closer,
	}

	if cfg.TypesFile != "" {
		s.types, err = s.types.LoadCSV(afs, cfg.TypesFile, log)
		if err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *session) Close() {
	if s.closer != nil {
		_ = s.closer.Close()
	}
}

func (s *session) inspectOptions(cmd *cobra.Command) (inspect.Options, error) {
	maxDecompressed, err := s.cfg.MaxDecompressedBytes()
	if err != nil {
		return inspect.Options{}, err
	}
	bufSize, err := s.cfg.BufferBytes()
	if err != nil {
		return inspect.Options{}, err
	}

	out := cmd.OutOrStdout()
	return inspect.Options{
		Fs:       s.fs,
		Out:      out,
		Progress: cmd.ErrOrStderr(),
		Log:      s.log,
		Types:    s.types,
		Report: report.Options{
			Format:  s.cfg.Format,
			Verbose: s.cfg.Verbose,
			Color:   report.UseColor(s.cfg.Color, out),
			Fs:      s.fs,
		},
		Hash:                s.cfg.Hash,
		HashAlgorithms:      s.cfg.HashAlgorithms,
		OutputDir:           s.cfg.OutputDir,
		UseMmap:             s.cfg.Mmap,
		MaxDecompressedSize: maxDecompressed,
		BufferSize:          bufSize,
	}, nil
}

func imagePath(arg string) string {
	return fs.NormalizeVolumePath(arg)
}

func getOffsets(cmd *cobra.Command) ([]int64, error) {
	offsets, err := cmd.Flags().GetInt64Slice("offset")
	if err != nil {
		return nil, fmt.Errorf("invalid --offset: %w", err)
	}
	return offsets, nil
}
