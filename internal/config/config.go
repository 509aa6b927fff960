// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads propsuite configuration from a YAML file and command
// line flags.
package config

import (
	"fmt"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/propsuite/internal/logging"
	"github.com/holomush/propsuite/pkg/prop"
	"github.com/holomush/propsuite/pkg/validate"
)

// CodeInvalid is the oops code of configuration errors.
const CodeInvalid = "CONFIG_INVALID"

// Default values.
const (
	DefaultLogFormat   = "json"
	DefaultLogLevel    = "info"
	DefaultPolicy      = validate.PolicyAdvisory
	DefaultMetricsAddr = ""
	DefaultPluginsDir  = "plugins"
)

// Config is the full propsuite configuration.
type Config struct {
	Log        LogConfig        `koanf:"log"`
	Validation ValidationConfig `koanf:"validation"`
	Suite      SuiteConfig      `koanf:"suite"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Plugins    PluginsConfig    `koanf:"plugins"`
	Database   DatabaseConfig   `koanf:"database"`
}

// LogConfig selects log output.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// ValidationConfig controls what happens to validation violations.
type ValidationConfig struct {
	Policy        validate.Policy `koanf:"policy"`
	CheckDefaults bool            `koanf:"check_defaults"`
}

// SuiteConfig tunes property sets handed to plugins.
type SuiteConfig struct {
	MaxGrowth int `koanf:"max_growth"`
}

// MetricsConfig configures the observability server. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// PluginsConfig locates plugins.
type PluginsConfig struct {
	Dir string `koanf:"dir"`
}

// DatabaseConfig configures the snapshot store. An empty URL disables it.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Log:        LogConfig{Format: DefaultLogFormat, Level: DefaultLogLevel},
		Validation: ValidationConfig{Policy: DefaultPolicy, CheckDefaults: true},
		Suite:      SuiteConfig{MaxGrowth: prop.DefaultMaxGrowth},
		Metrics:    MetricsConfig{Addr: DefaultMetricsAddr},
		Plugins:    PluginsConfig{Dir: DefaultPluginsDir},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format", fmt.Sprintf("must be 'json' or 'text', got %q", c.Log.Format))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", err.Error())
	}
	if !c.Validation.Policy.Valid() {
		return invalid("validation.policy", fmt.Sprintf("must be 'strict' or 'advisory', got %q", c.Validation.Policy))
	}
	if c.Suite.MaxGrowth <= 0 {
		return invalid("suite.max_growth", "must be positive")
	}
	return nil
}

func invalid(key, reason string) error {
	return oops.Code(CodeInvalid).With("key", key).Errorf("%s %s", key, reason)
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"log-format":     "log.format",
	"log-level":      "log.level",
	"policy":         "validation.policy",
	"check-defaults": "validation.check_defaults",
	"max-growth":     "suite.max_growth",
	"metrics-addr":   "metrics.addr",
	"plugins-dir":    "plugins.dir",
	"database-url":   "database.url",
}

// AddFlags registers the configuration flags on fs.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("log-format", d.Log.Format, "log format (json, text)")
	fs.String("log-level", d.Log.Level, "minimum log level (debug, info, warn, error)")
	fs.String("policy", string(d.Validation.Policy), "validation policy (strict, advisory)")
	fs.Bool("check-defaults", d.Validation.CheckDefaults, "compare property values against expected defaults")
	fs.Int("max-growth", d.Suite.MaxGrowth, "largest variable-dimension property a plugin may create")
	fs.String("metrics-addr", d.Metrics.Addr, "metrics and health address (empty disables)")
	fs.String("plugins-dir", d.Plugins.Dir, "directory containing plugin subdirectories")
	fs.String("database-url", d.Database.URL, "PostgreSQL URL for property snapshots (empty disables)")
}

// Load merges defaults, the YAML file at path (if any) and flags, then
// validates the result. Flags the user did not set do not override the file.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, oops.Code(CodeInvalid).With("path", path).Wrapf(err, "load config file")
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code(CodeInvalid).Wrapf(err, "load flags")
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code(CodeInvalid).Wrapf(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
