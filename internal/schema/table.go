// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package schema loads property schema tables and expectation lists.
package schema

import (
	"os"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/holomush/propsuite/pkg/prop"
)

// Error codes.
const (
	CodeInvalidTable  = "SCHEMA_INVALID_TABLE"
	CodeInvalidExpect = "SCHEMA_INVALID_EXPECTATIONS"
)

// Table is the YAML form of a property schema table.
type Table struct {
	Name        string        `yaml:"name" json:"name" jsonschema:"pattern=^[A-Za-z][A-Za-z0-9_.-]*$,description=Table name used in logs"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Sloppy      bool          `yaml:"sloppy,omitempty" json:"sloppy,omitempty" jsonschema:"description=Create undeclared properties on typed access"`
	Properties  []PropertyRow `yaml:"properties" json:"properties" jsonschema:"minItems=1"`
}

// PropertyRow is one property declaration.
type PropertyRow struct {
	Name      string `yaml:"name" json:"name" jsonschema:"minLength=1"`
	Kind      string `yaml:"kind" json:"kind" jsonschema:"enum=int,enum=double,enum=string,enum=pointer"`
	Dimension int    `yaml:"dimension,omitempty" json:"dimension,omitempty" jsonschema:"minimum=0,description=Fixed number of values; 0 or absent means variable"`
	ReadOnly  bool   `yaml:"read_only,omitempty" json:"read_only,omitempty"`
	Default   string `yaml:"default,omitempty" json:"default,omitempty" jsonschema:"oneof_type=string;number"`
}

// LoadTable validates data against the table JSON Schema and decodes it.
func LoadTable(data []byte) (*Table, error) {
	if err := ValidateTable(data); err != nil {
		return nil, oops.Code(CodeInvalidTable).Wrap(err)
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, oops.Code(CodeInvalidTable).Wrapf(err, "decode table")
	}
	if _, err := t.Specs(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadTableFile reads and loads a table from path.
func LoadTableFile(path string) (*Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, oops.Code(CodeInvalidTable).With("path", path).Wrapf(err, "read table")
	}
	t, err := LoadTable(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return t, nil
}

// Specs converts the rows to property specs.
func (t *Table) Specs() ([]prop.Spec, error) {
	specs := make([]prop.Spec, 0, len(t.Properties))
	for _, row := range t.Properties {
		kind, err := prop.ParseKind(row.Kind)
		if err != nil {
			return nil, oops.Code(CodeInvalidTable).
				With("table", t.Name).
				With("property", row.Name).
				Wrap(err)
		}
		specs = append(specs, prop.Spec{
			Name:      row.Name,
			Kind:      kind,
			Dimension: row.Dimension,
			ReadOnly:  row.ReadOnly,
			Default:   row.Default,
		})
	}
	return specs, nil
}

// NewSet builds a property set from the table. The table's sloppy flag is
// applied before opts.
func (t *Table) NewSet(opts ...prop.Option) (*prop.Set, error) {
	specs, err := t.Specs()
	if err != nil {
		return nil, err
	}
	if t.Sloppy {
		opts = append([]prop.Option{prop.Sloppy()}, opts...)
	}
	s, err := prop.NewSet(specs, opts...)
	if err != nil {
		return nil, oops.With("table", t.Name).Wrap(err)
	}
	return s, nil
}
