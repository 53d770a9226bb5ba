package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every configuration failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the application configuration
type Config struct {
	Encoder     Encoder `yaml:"encoder"`
	Batch       Batch   `yaml:"batch"`
	LogLevel    string  `yaml:"log_level"`
	MetricsAddr string  `yaml:"metrics_addr"`
}

// Encoder represents the external encoder invocation
type Encoder struct {
	Binary  string `yaml:"binary"`
	Options string `yaml:"options"`
	Suffix  string `yaml:"suffix"`
}

// Batch represents what to encode and how
type Batch struct {
	SourceDir    string   `yaml:"source_dir"`
	ResultDir    string   `yaml:"result_dir"`
	Workers      int      `yaml:"workers"`
	Types        []string `yaml:"types"`
	Matches      []string `yaml:"matches"`
	Purge        bool     `yaml:"purge"`
	CheckSize    bool     `yaml:"check_size"`
	ShowProgress bool     `yaml:"show_progress"`
}

// Load loads configuration from file and command line flags
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	cfg := &Config{
		LogLevel: "info",
		Encoder: Encoder{
			Binary: "cwebp",
			Suffix: ".webp",
		},
		Batch: Batch{
			Workers: 1,
			Types:   []string{"jpg", "png"},
		},
	}

	// Load from YAML file if provided
	if configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("%w: failed to load config file: %v", ErrInvalidConfig, err)
		}
	}

	// Override with command line flags
	if flags != nil {
		if err := loadFromFlags(cfg, flags); err != nil {
			return nil, fmt.Errorf("%w: failed to load flags: %v", ErrInvalidConfig, err)
		}
	}

	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func loadFromFlags(cfg *Config, flags *pflag.FlagSet) error {
	var err error
	getString := func(name string, dst *string) {
		if flags.Changed(name) {
			v, e := flags.GetString(name)
			err = multierr.Append(err, e)
			*dst = v
		}
	}
	getBool := func(name string, dst *bool) {
		if flags.Changed(name) {
			v, e := flags.GetBool(name)
			err = multierr.Append(err, e)
			*dst = v
		}
	}

	getString("encoder", &cfg.Encoder.Binary)
	getString("encoder-options", &cfg.Encoder.Options)
	getString("suffix", &cfg.Encoder.Suffix)

	getString("source-dir", &cfg.Batch.SourceDir)
	getString("result-dir", &cfg.Batch.ResultDir)
	if flags.Changed("workers") {
		v, e := flags.GetInt("workers")
		err = multierr.Append(err, e)
		cfg.Batch.Workers = v
	}
	if flags.Changed("types") {
		var v string
		getString("types", &v)
		cfg.Batch.Types = splitList(v)
	}
	if flags.Changed("matches") {
		var v string
		getString("matches", &v)
		cfg.Batch.Matches = splitList(v)
	}
	getBool("purge", &cfg.Batch.Purge)
	getBool("check-size", &cfg.Batch.CheckSize)
	getBool("show-progress", &cfg.Batch.ShowProgress)

	getString("log-level", &cfg.LogLevel)
	getString("metrics-addr", &cfg.MetricsAddr)

	return err
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) normalize() {
	if c.Batch.SourceDir != "" {
		c.Batch.SourceDir = filepath.Clean(c.Batch.SourceDir)
	}
	if c.Batch.ResultDir == "" {
		c.Batch.ResultDir = c.Batch.SourceDir
	} else {
		c.Batch.ResultDir = filepath.Clean(c.Batch.ResultDir)
	}

	types := make([]string, 0, len(c.Batch.Types))
	for _, t := range c.Batch.Types {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "."))
		if t != "" {
			types = append(types, t)
		}
	}
	c.Batch.Types = types
}

// EncoderArgs splits the encoder options string using shell quoting rules.
func (c *Config) EncoderArgs() ([]string, error) {
	args, err := shellquote.Split(c.Encoder.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to parse encoder options: %w", err)
	}
	return args, nil
}

func (c *Config) validate() error {
	var err error

	if strings.TrimSpace(c.Encoder.Options) == "" {
		err = multierr.Append(err, fmt.Errorf("encoder options are required"))
	} else if _, e := c.EncoderArgs(); e != nil {
		err = multierr.Append(err, e)
	}
	if c.Encoder.Binary == "" {
		err = multierr.Append(err, fmt.Errorf("encoder binary is required"))
	}
	if c.Encoder.Suffix == "" {
		err = multierr.Append(err, fmt.Errorf("output suffix is required"))
	}

	if c.Batch.SourceDir == "" {
		err = multierr.Append(err, fmt.Errorf("source directory is required"))
	} else if info, e := os.Stat(c.Batch.SourceDir); e != nil {
		err = multierr.Append(err, fmt.Errorf("source directory is not readable: %w", e))
	} else if !info.IsDir() {
		err = multierr.Append(err, fmt.Errorf("source directory %s is not a directory", c.Batch.SourceDir))
	}

	if c.Batch.Workers <= 0 {
		err = multierr.Append(err, fmt.Errorf("workers must be at least 1, got %d", c.Batch.Workers))
	}

	for _, m := range c.Batch.Matches {
		if _, e := filepath.Match(m, ""); e != nil {
			err = multierr.Append(err, fmt.Errorf("invalid match pattern %q: %w", m, e))
		}
	}

	return err
}
