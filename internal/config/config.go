package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ostafen/partview/pkg/util/format"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigName = "partview"
	EnvPrefix  = "PARTVIEW"
)

// Output formats understood by the report writer.
var Formats = []string{"text", "json", "yaml", "dfxml"}

// Supported hash algorithms, in the order results are printed.
var HashAlgorithms = []string{"md5", "sha256", "sha512"}

// Config holds the settings shared by every command.
type Config struct {
	LogLevel            string   `mapstructure:"log-level"`
	LogFile             string   `mapstructure:"log-file"`
	Format              string   `mapstructure:"format"`
	Verbose             bool     `mapstructure:"verbose"`
	Color               string   `mapstructure:"color"`
	TypesFile           string   `mapstructure:"types-file"`
	Hash                bool     `mapstructure:"hash"`
	HashAlgorithms      []string `mapstructure:"hash-algorithms"`
	OutputDir           string   `mapstructure:"output-dir"`
	Mmap                bool     `mapstructure:"mmap"`
	MaxDecompressedSize string   `mapstructure:"max-decompressed-size"`
	BufferSize          string   `mapstructure:"buffer-size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log-level", "INFO")
	v.SetDefault("log-file", "")
	v.SetDefault("format", "text")
	v.SetDefault("verbose", false)
	v.SetDefault("color", "auto")
	v.SetDefault("types-file", "")
	v.SetDefault("hash", false)
	v.SetDefault("hash-algorithms", HashAlgorithms)
	v.SetDefault("output-dir", ".")
	v.SetDefault("mmap", false)
	v.SetDefault("max-decompressed-size", "4GB")
	v.SetDefault("buffer-size", "1MB")
}

// Load merges defaults, the optional config file, PARTVIEW_* environment
// variables and the flags that were set explicitly, in increasing priority.
// If configFile is empty, partview.yaml is searched in the usual locations and
// its absence is not an error.
func Load(afs afero.Fs, flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	v.SetFs(afs)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "."+ConfigName))
		}
		v.AddConfigPath("/etc/" + ConfigName)
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("unable to bind flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings and byte sizes.
func (c *Config) Validate() error {
	c.Format = strings.ToLower(c.Format)
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("unsupported output format %q (expected one of %s)", c.Format, strings.Join(Formats, ", "))
	}

	c.Color = strings.ToLower(c.Color)
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color mode %q (expected auto, always or never)", c.Color)
	}

	for i, alg := range c.HashAlgorithms {
		alg = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(alg), "-", ""))
		if !slices.Contains(HashAlgorithms, alg) {
			return fmt.Errorf("unsupported hash algorithm %q", c.HashAlgorithms[i])
		}
		c.HashAlgorithms[i] = alg
	}

	if _, err := c.MaxDecompressedBytes(); err != nil {
		return fmt.Errorf("max-decompressed-size: %w", err)
	}
	if _, err := c.BufferBytes(); err != nil {
		return fmt.Errorf("buffer-size: %w", err)
	}
	return nil
}

// MaxDecompressedBytes returns the in-memory cap for compressed images.
func (c *Config) MaxDecompressedBytes() (uint64, error) {
	return format.ParseBytes(c.MaxDecompressedSize)
}

// BufferBytes returns the copy buffer size used while hashing and extracting.
func (c *Config) BufferBytes() (int, error) {
	n, err := format.ParseBytes(c.BufferSize)
	if err != nil {
		return 0, err
	}
	if n == 0 || n > 1<<30 {
		return 0, fmt.Errorf("buffer size must be between 1B and 1GB, got %d", n)
	}
	return int(n), nil
}
