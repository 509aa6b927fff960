// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package schema

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// TableSchemaID is the $id of the generated table schema.
const TableSchemaID = "https://holomush.dev/schemas/property-table.schema.json"

var (
	compileOnce sync.Once
	compiled    *jschema.Schema
	compileErr  error
)

// GenerateTableSchema returns the JSON Schema for table files.
func GenerateTableSchema() ([]byte, error) {
	r := jsonschema.Reflector{DoNotReference: true}
	s := r.Reflect(&Table{})
	s.ID = jsonschema.ID(TableSchemaID)
	s.Title = "Property Schema Table"
	s.Description = "Declares the properties of a property set"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, oops.Wrapf(err, "marshal table schema")
	}
	return data, nil
}

// ValidateTable checks YAML table data against the table schema.
func ValidateTable(data []byte) error {
	if len(data) == 0 {
		return oops.Errorf("table data is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.Wrapf(err, "invalid YAML")
	}

	sch, err := tableSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(ToJSONTypes(doc)); err != nil {
		return oops.Wrapf(err, "schema validation failed")
	}
	return nil
}

func tableSchema() (*jschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = CompileSchema(TableSchemaID, GenerateTableSchema)
	})
	return compiled, compileErr
}

// CompileSchema compiles a generated JSON Schema document.
func CompileSchema(id string, generate func() ([]byte, error)) (*jschema.Schema, error) {
	raw, err := generate()
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, oops.Wrapf(err, "parse schema JSON")
	}

	c := jschema.NewCompiler()
	if err := c.AddResource(id, doc); err != nil {
		return nil, oops.Wrapf(err, "add schema resource")
	}
	sch, err := c.Compile(id)
	if err != nil {
		return nil, oops.Wrapf(err, "compile schema")
	}
	return sch, nil
}

// ToJSONTypes converts a yaml.v3 document to the value types the validator
// accepts.
func ToJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = ToJSONTypes(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ToJSONTypes(item)
		}
		return out
	case string, int, int64, float64, bool, nil:
		return val
	default:
		if b, err := json.Marshal(val); err == nil {
			var out any
			if err := json.Unmarshal(b, &out); err == nil {
				return out
			}
		}
		return val
	}
}
