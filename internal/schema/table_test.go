// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package schema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/propsuite/pkg/errutil"
	"github.com/holomush/propsuite/pkg/prop"
)

const gainTable = `
name: gain-instance
sloppy: true
properties:
  - name: Gain
    kind: double
    dimension: 1
    default: 1.0
  - name: Channels
    kind: string
    default: "r g b"
  - name: Rect
    kind: int
    dimension: 4
    default: "0 0 640 480"
  - name: OfxPropType
    kind: string
    dimension: 1
    read_only: true
    default: OfxTypeImageEffectInstance
`

func TestLoadTable(t *testing.T) {
	table, err := LoadTable([]byte(gainTable))
	require.NoError(t, err)

	assert.Equal(t, "gain-instance", table.Name)
	assert.True(t, table.Sloppy)
	require.Len(t, table.Properties, 4)

	specs, err := table.Specs()
	require.NoError(t, err)
	assert.Equal(t, prop.Spec{Name: "Gain", Kind: prop.KindDouble, Dimension: 1, Default: "1.0"}, specs[0])
	assert.True(t, specs[3].ReadOnly)

	set, err := table.NewSet()
	require.NoError(t, err)
	assert.True(t, set.IsSloppy())

	channels, err := prop.GetN[string](set, "Channels", 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"r g b"}, channels, "string defaults are one literal")

	rect, err := prop.GetN[int32](set, "Rect", 4)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 0, 640, 480}, rect)
}

func TestLoadTable_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ""},
		{"not yaml", "name: [unclosed"},
		{"missing name", "properties:\n  - {name: A, kind: int}\n"},
		{"no properties", "name: t\nproperties: []\n"},
		{"bad kind", "name: t\nproperties:\n  - {name: A, kind: float}\n"},
		{"negative dimension", "name: t\nproperties:\n  - {name: A, kind: int, dimension: -1}\n"},
		{"unknown field", "name: t\nproperties:\n  - {name: A, kind: int, size: 3}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTable([]byte(tt.yaml))
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, CodeInvalidTable)
		})
	}
}

func TestTable_NewSetReportsDuplicates(t *testing.T) {
	table, err := LoadTable([]byte("name: t\nproperties:\n  - {name: A, kind: int}\n  - {name: A, kind: int}\n"))
	require.NoError(t, err)

	_, err = table.NewSet()
	errutil.AssertErrorCode(t, err, prop.CodeExists)
	errutil.AssertErrorContext(t, err, "table", "t")
}

func TestLoadTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(gainTable), 0o600))

	table, err := LoadTableFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gain-instance", table.Name)

	_, err = LoadTableFile(filepath.Join(t.TempDir(), "missing.yaml"))
	errutil.AssertErrorCode(t, err, CodeInvalidTable)
}

func TestGenerateTableSchema(t *testing.T) {
	data, err := GenerateTableSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, TableSchemaID, doc["$id"])
	assert.Equal(t, "Property Schema Table", doc["title"])
	assert.Contains(t, doc["properties"], "properties")
}
