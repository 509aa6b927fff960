// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Command gen-schema writes the JSON Schema files for property tables and
// plugin manifests.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/holomush/propsuite/internal/plugin"
	"github.com/holomush/propsuite/internal/schema"
)

var outputs = []struct {
	file     string
	generate func() ([]byte, error)
}{
	{"property-table.schema.json", schema.GenerateTableSchema},
	{"propsuite-plugin.schema.json", plugin.GenerateSchema},
}

func main() {
	if err := os.MkdirAll("schemas", 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}

	for _, out := range outputs {
		data, err := out.generate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", out.file, err)
			os.Exit(1)
		}

		outPath := filepath.Join("schemas", out.file)
		if err := os.WriteFile(outPath, append(data, '\n'), 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated %s\n", outPath)
	}
}
