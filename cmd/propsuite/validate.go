// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/propsuite/internal/schema"
	"github.com/holomush/propsuite/pkg/prop"
	"github.com/holomush/propsuite/pkg/validate"
)

type validateOptions struct {
	table   string
	expect  string
	catalog string
	sloppy  bool
}

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a property table against expectations",
		Long: `Build a property set from a schema table and check it against an
expectation file. Use --catalog to check one of the built-in catalogs
(host, plugin_descriptor) instead.

Under the strict policy any violation makes the command fail.`,
		Example: `  propsuite validate --table effect.yaml --expect effect.expect
  propsuite validate --catalog host --policy strict`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.table, "table", "", "schema table YAML file")
	cmd.Flags().StringVar(&opts.expect, "expect", "", "expectation file")
	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "built-in catalog to validate instead of --table/--expect")
	cmd.Flags().BoolVar(&opts.sloppy, "sloppy", false, "build a sloppy set")
	cmd.MarkFlagsMutuallyExclusive("catalog", "table")
	cmd.MarkFlagsMutuallyExclusive("catalog", "expect")
	cmd.MarkFlagsRequiredTogether("table", "expect")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *validateOptions) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	var (
		table        *schema.Table
		expectations []validate.Expectation
		subject      string
	)
	switch {
	case opts.catalog != "":
		c, err := schema.LoadCatalog(opts.catalog)
		if err != nil {
			return err
		}
		table, expectations, subject = c.Table, c.Expectations, "catalog "+opts.catalog
	case opts.table != "":
		if table, err = schema.LoadTableFile(opts.table); err != nil {
			return err
		}
		if expectations, err = schema.LoadExpectationsFile(opts.expect); err != nil {
			return err
		}
		subject = opts.table
	default:
		return oops.Code("VALIDATE_USAGE").Errorf("either --catalog or --table and --expect is required")
	}

	setOpts := []prop.Option{prop.WithMaxGrowth(cfg.Suite.MaxGrowth)}
	if opts.sloppy {
		setOpts = append(setOpts, prop.Sloppy())
	}
	set, err := table.NewSet(setOpts...)
	if err != nil {
		return err
	}

	engine := validate.NewEngine(validate.WithLogger(logger))
	report := engine.Run(commandContext(cmd), "validate", set, expectations, cfg.Validation.CheckDefaults)
	printReport(cmd.OutOrStdout(), subject, report, cfg.Validation.Policy)
	return report.Enforce(cfg.Validation.Policy)
}
