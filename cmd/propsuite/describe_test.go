// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/propsuite/internal/config"
	"github.com/holomush/propsuite/pkg/errutil"
	"github.com/holomush/propsuite/pkg/validate"
)

const labelOnly = `
function main_entry(action, self, in_args)
    props.set_string(self, "OfxPropLabel", 0, "Half")
    return props.OK
end
`

const fullDescribe = `
function main_entry(action, self, in_args)
    if action ~= "describe" then
        return props.ReplyDefault
    end
    props.set_string(self, "OfxPropLabel", 0, "Full")
    props.set_string_n(self, "OfxImageEffectPropSupportedContexts", {"OfxImageEffectContextFilter"})
    props.set_string_n(self, "OfxImageEffectPropSupportedPixelDepths", {"OfxBitDepthFloat"})
    return props.OK
end
`

const refusesHost = `
function main_entry(action, self, in_args)
    return props.ErrMissingHostFeature
end
`

func pluginsDir(t *testing.T, plugins map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, code := range plugins {
		pdir := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(pdir, 0o750))
		manifest := "name: " + name + "\nversion: 1.0.0\ntype: lua\nlua-plugin:\n  entry: main.lua\n"
		require.NoError(t, os.WriteFile(filepath.Join(pdir, "plugin.yaml"), []byte(manifest), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(pdir, "main.lua"), []byte(code), 0o600))
	}
	return dir
}

func TestDescribe_AllPlugins(t *testing.T) {
	dir := pluginsDir(t, map[string]string{"full": fullDescribe, "half": labelOnly})

	output, err := execute(t, "--log-level", "error", "--plugins-dir", dir, "describe")
	require.NoError(t, err, "advisory policy tolerates incomplete descriptors")
	assert.Contains(t, output, "plugin full")
	assert.Contains(t, output, "plugin half")
	assert.Contains(t, output, "WARN OfxImageEffectPropSupportedContexts: empty")
}

func TestDescribe_StrictPolicy(t *testing.T) {
	dir := pluginsDir(t, map[string]string{"full": fullDescribe, "half": labelOnly})

	output, err := execute(t, "--log-level", "error", "--policy", "strict", "--plugins-dir", dir, "describe", "full")
	require.NoError(t, err)
	assert.NotContains(t, output, "plugin half")

	output, err = execute(t, "--log-level", "error", "--policy", "strict", "--plugins-dir", dir, "describe")
	errutil.AssertErrorCode(t, err, CodeDescribeFailed)
	assert.Contains(t, output, "FAIL OfxImageEffectPropSupportedPixelDepths: empty")
}

func TestDescribe_ErrorStatus(t *testing.T) {
	dir := pluginsDir(t, map[string]string{"old": refusesHost})

	output, err := execute(t, "--log-level", "error", "--plugins-dir", dir, "describe")
	errutil.AssertErrorCode(t, err, CodeDescribeFailed)
	assert.Contains(t, output, "plugin old")
}

func TestDescribe_UnknownPlugin(t *testing.T) {
	dir := pluginsDir(t, map[string]string{"full": fullDescribe})

	_, err := execute(t, "--log-level", "error", "--plugins-dir", dir, "describe", "ghost")
	errutil.AssertErrorCode(t, err, CodeDescribeFailed)
}

func TestDescribe_NoPlugins(t *testing.T) {
	output, err := execute(t, "--log-level", "error", "--plugins-dir", t.TempDir(), "describe")
	require.NoError(t, err)
	assert.Contains(t, output, "no plugins loaded")
}

func TestDescribe_SnapshotNeedsDatabase(t *testing.T) {
	dir := pluginsDir(t, map[string]string{"full": fullDescribe})

	_, err := execute(t, "--log-level", "error", "--plugins-dir", dir, "describe", "--snapshot")
	errutil.AssertErrorCode(t, err, config.CodeInvalid)
}

func TestDescribe_ServesMetrics(t *testing.T) {
	dir := pluginsDir(t, map[string]string{"full": fullDescribe})

	_, err := execute(t, "--log-level", "error", "--policy", string(validate.PolicyStrict),
		"--metrics-addr", "127.0.0.1:0", "--plugins-dir", dir, "describe")
	require.NoError(t, err)
}
