// Package config loads pqmashup settings from defaults, an optional YAML
// file, PQMASHUP_ environment variables and command-line flags.
package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultConfigFile is read from the working directory when no explicit
// config file is given.
const DefaultConfigFile = "pqmashup.yaml"

// EnvPrefix prefixes environment overrides, e.g. PQMASHUP_STRICT_HEADER.
const EnvPrefix = "PQMASHUP_"

// Config holds all settings.
type Config struct {
	OutputDir    string   `koanf:"output_dir"`
	Split        bool     `koanf:"split"`
	QueriesDir   string   `koanf:"queries_dir"`
	Compression  string   `koanf:"compression"`
	StrictHeader bool     `koanf:"strict_header"`
	Exclude      []string `koanf:"exclude"`
	Visible      bool     `koanf:"visible"`
	LogLevel     string   `koanf:"log_level"`
	LogFormat    string   `koanf:"log_format"`
}

// flagKeys maps flag names to config keys. Flags not listed are
// command-specific and never reach the config.
var flagKeys = map[string]string{
	"split":         "split",
	"queries-dir":   "queries_dir",
	"compression":   "compression",
	"strict-header": "strict_header",
	"exclude":       "exclude",
	"visible":       "visible",
	"log-level":     "log_level",
	"log-format":    "log_format",
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"output_dir":    ".",
		"split":         false,
		"queries_dir":   "Individual_Queries",
		"compression":   "deflate",
		"strict_header": false,
		"exclude":       []string{},
		"visible":       false,
		"log_level":     "info",
		"log_format":    "text",
	}
}

// Load builds a Config. Precedence (highest to lowest): changed flags >
// env vars > config file > defaults. An explicit cfgFile must exist.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := cfgFile
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// PQMASHUP_STRICT_HEADER -> strict_header
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be typed by the loader.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Compression) {
	case "deflate", "store":
	default:
		return fmt.Errorf("invalid compression: %s (must be deflate or store)", c.Compression)
	}
	if c.QueriesDir == "" {
		return fmt.Errorf("queries_dir is required")
	}
	return nil
}

// NewLogger builds the slog logger described by cfg, writing to w.
func NewLogger(cfg *Config, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(cfg.LogFormat) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format: %s (must be text or json)", cfg.LogFormat)
	}
}

type configKey struct{}

type loggerKey struct{}

// WithConfig stores cfg and logger in ctx.
func WithConfig(ctx context.Context, cfg *Config, logger *slog.Logger) context.Context {
	return WithLogger(context.WithValue(ctx, configKey{}, cfg), logger)
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the config stored by WithConfig, or defaults.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	cfg, err := Load("", nil)
	if err != nil {
		return &Config{OutputDir: ".", QueriesDir: "Individual_Queries", Compression: "deflate"}
	}
	return cfg
}

// GetLogger returns the logger stored by WithConfig or WithLogger, or a
// discard logger.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
