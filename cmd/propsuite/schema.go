// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/holomush/propsuite/internal/plugin"
	"github.com/holomush/propsuite/internal/schema"
)

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print JSON Schemas for propsuite files",
		Long: `Print the JSON Schema of property tables or plugin manifests, for use
with editors and CI linters.`,
	}

	cmd.AddCommand(schemaSubcommand("table", "Print the property table schema", schema.GenerateTableSchema))
	cmd.AddCommand(schemaSubcommand("manifest", "Print the plugin manifest schema", plugin.GenerateSchema))
	return cmd
}

func schemaSubcommand(use, short string, generate func() ([]byte, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := generate()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		},
	}
}
