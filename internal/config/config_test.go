// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/propsuite/pkg/errutil"
	"github.com/holomush/propsuite/pkg/prop"
	"github.com/holomush/propsuite/pkg/validate"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "propsuite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, validate.PolicyAdvisory, cfg.Validation.Policy)
	assert.True(t, cfg.Validation.CheckDefaults)
	assert.Equal(t, prop.DefaultMaxGrowth, cfg.Suite.MaxGrowth)
	assert.Equal(t, "plugins", cfg.Plugins.Dir)
}

func TestLoad_FlagDefaultsMatchDefault(t *testing.T) {
	cfg, err := Load("", newFlags(t))
	require.NoError(t, err)
	want := Default()
	assert.Equal(t, &want, cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log:
  format: text
  level: debug
validation:
  policy: strict
  check_defaults: false
suite:
  max_growth: 64
plugins:
  dir: /opt/plugins
database:
  url: postgres://localhost/propsuite
`)
	cfg, err := Load(path, newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, validate.PolicyStrict, cfg.Validation.Policy)
	assert.False(t, cfg.Validation.CheckDefaults)
	assert.Equal(t, 64, cfg.Suite.MaxGrowth)
	assert.Equal(t, "/opt/plugins", cfg.Plugins.Dir)
	assert.Equal(t, "postgres://localhost/propsuite", cfg.Database.URL)
}

func TestLoad_ExplicitFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "validation:\n  policy: strict\nplugins:\n  dir: /opt/plugins\n")

	cfg, err := Load(path, newFlags(t, "--policy=advisory", "--metrics-addr=127.0.0.1:9100"))
	require.NoError(t, err)

	assert.Equal(t, validate.PolicyAdvisory, cfg.Validation.Policy)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr)
	assert.Equal(t, "/opt/plugins", cfg.Plugins.Dir, "unset flags keep file values")
}

func TestLoad_IgnoresUnrelatedFlags(t *testing.T) {
	fs := newFlags(t)
	fs.String("table", "", "")
	require.NoError(t, fs.Set("table", "x.yaml"))

	_, err := Load("", fs)
	require.NoError(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	errutil.AssertErrorCode(t, err, CodeInvalid)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"log level", func(c *Config) { c.Log.Level = "chatty" }, "log.level"},
		{"policy", func(c *Config) { c.Validation.Policy = "lenient" }, "validation.policy"},
		{"max growth", func(c *Config) { c.Suite.MaxGrowth = 0 }, "suite.max_growth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			errutil.AssertErrorCode(t, err, CodeInvalid)
			errutil.AssertErrorContext(t, err, "key", tt.key)
		})
	}
}
