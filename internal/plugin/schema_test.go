// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package plugin_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/propsuite/internal/plugin"
)

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		ok   bool
	}{
		{"lua manifest", "name: invert\nversion: 1.0.0\ntype: lua\nlua-plugin:\n  entry: main.lua\n", true},
		{"binary manifest", "name: gain\nversion: 1.0.0\ntype: binary\nbinary-plugin:\n  executable: gain\n", true},
		{"all optional fields", `
name: gain
version: 1.0.0
api_version: ^1.0
type: binary
description: Multiplies pixel values.
actions: [describe, createInstance]
writes: ["OfxPluginPropFilePath"]
binary-plugin:
  executable: gain
`, true},
		{"name at max length", "name: " + strings.Repeat("a", 64) + "\nversion: 1.0.0\ntype: lua\nlua-plugin:\n  entry: main.lua\n", true},
		{"name too long", "name: " + strings.Repeat("a", 65) + "\nversion: 1.0.0\ntype: lua\nlua-plugin:\n  entry: main.lua\n", false},
		{"bad name pattern", "name: Gain\nversion: 1.0.0\ntype: lua\nlua-plugin:\n  entry: main.lua\n", false},
		{"missing name", "version: 1.0.0\ntype: lua\nlua-plugin:\n  entry: main.lua\n", false},
		{"missing version", "name: gain\ntype: lua\nlua-plugin:\n  entry: main.lua\n", false},
		{"invalid type", "name: gain\nversion: 1.0.0\ntype: wasm\n", false},
		{"unknown field", "name: gain\nversion: 1.0.0\ntype: lua\nevents: [say]\nlua-plugin:\n  entry: main.lua\n", false},
		{"empty", "", false},
		{"invalid yaml", "name: [", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := plugin.ValidateSchema([]byte(tt.yaml))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestGenerateSchema(t *testing.T) {
	data, err := plugin.GenerateSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, plugin.SchemaID, doc["$id"])
	assert.Equal(t, "Property Suite Plugin Manifest", doc["title"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"name", "version", "api_version", "type", "writes", "lua-plugin", "binary-plugin"} {
		assert.Contains(t, props, key)
	}
}

func TestResetSchemaCache(t *testing.T) {
	valid := []byte("name: gain\nversion: 1.0.0\ntype: lua\nlua-plugin:\n  entry: main.lua\n")
	require.NoError(t, plugin.ValidateSchema(valid))
	plugin.ResetSchemaCache()
	require.NoError(t, plugin.ValidateSchema(valid))
}

func TestFormatSchemaError(t *testing.T) {
	assert.Empty(t, plugin.FormatSchemaError(nil))

	err := plugin.ValidateSchema([]byte("name: gain\n"))
	require.Error(t, err)
	assert.NotContains(t, plugin.FormatSchemaError(err), "schema validation failed: ")
}
