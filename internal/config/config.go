// Package config loads tool configuration and marker sidecar files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override file
// settings, e.g. RAWTEXT_LOG_LEVEL for log.level.
const EnvPrefix = "RAWTEXT"

// Config is the configuration shared by the command line tools.
type Config struct {
	Process ProcessConfig `mapstructure:"process"`
	Output  OutputConfig  `mapstructure:"output"`
	Log     LogConfig     `mapstructure:"log"`
	Bench   BenchConfig   `mapstructure:"bench"`
}

// ProcessConfig controls how input is fed to a stream.
type ProcessConfig struct {
	SegmentSize  int    `mapstructure:"segment_size"`  // bytes per segment, 0 for whole input
	Divider      string `mapstructure:"divider"`       // joins elided text at one offset
	ElidedPrefix int    `mapstructure:"elided_prefix"` // skipped bytes kept before an override, 0 keeps all
}

// OutputConfig controls how sentences are written.
type OutputConfig struct {
	Format    string `mapstructure:"format"` // text, jsonl or proto
	Locations bool   `mapstructure:"locations"`
}

// LogConfig controls the tool logger.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // text or json
	File       string `mapstructure:"file"`   // empty logs to stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// BenchConfig controls the segment-size sweep.
type BenchConfig struct {
	Corpus  string `mapstructure:"corpus"`
	Sizes   []int  `mapstructure:"sizes"`
	Workers int    `mapstructure:"workers"`
}

// Load reads configuration from path, a .env file in the working directory
// and RAWTEXT_ environment variables, in increasing order of precedence.
// A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings no tool can run with.
func (c *Config) Validate() error {
	if c.Process.SegmentSize < 0 {
		return fmt.Errorf("process.segment_size must not be negative, got %d", c.Process.SegmentSize)
	}
	if c.Process.ElidedPrefix < 0 {
		return fmt.Errorf("process.elided_prefix must not be negative, got %d", c.Process.ElidedPrefix)
	}
	switch c.Output.Format {
	case "text", "jsonl", "proto":
	default:
		return fmt.Errorf("output.format must be text, jsonl or proto, got %q", c.Output.Format)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	for _, s := range c.Bench.Sizes {
		if s <= 0 {
			return fmt.Errorf("bench.sizes must be positive, got %d", s)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("process.segment_size", 0)
	v.SetDefault("process.divider", "")
	v.SetDefault("process.elided_prefix", 4096)

	v.SetDefault("output.format", "text")
	v.SetDefault("output.locations", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)

	v.SetDefault("bench.corpus", "testdata/corpus")
	v.SetDefault("bench.sizes", []int{16, 64, 256, 1024})
	v.SetDefault("bench.workers", 4)
}
