// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/propsuite/internal/config"
	"github.com/holomush/propsuite/internal/store"
	"github.com/holomush/propsuite/pkg/errutil"
)

// migrator is the part of store.Migrator the migrate commands use.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Force(version int) error
	Status() (store.Status, error)
	Close() error
}

// newMigrator is replaced in tests.
var newMigrator = func(databaseURL string) (migrator, error) {
	return store.NewMigrator(databaseURL)
}

// NewMigrateCmd creates the migrate command with its subcommands.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the snapshot database schema",
		Long: `Apply or roll back the migrations that create the property snapshot
tables. The database is taken from --database-url or database.url.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					return printStatus(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration, dropping all snapshots",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m migrator) error {
					if err := m.Down(); err != nil {
						return err
					}
					return printStatus(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m migrator) error {
					return printStatus(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "steps N",
			Short: "Apply N migrations, or roll back -N",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil || n == 0 {
					return oops.Code(store.CodeInvalidVersion).With("steps", args[0]).
						Errorf("steps must be a non-zero integer, got %q", args[0])
				}
				return withMigrator(cmd, func(m migrator) error {
					if err := m.Steps(n); err != nil {
						return err
					}
					return printStatus(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Mark VERSION as applied and clear the dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return oops.Code(store.CodeInvalidVersion).With("version", args[0]).
						Errorf("version must be an integer, got %q", args[0])
				}
				return withMigrator(cmd, func(m migrator) error {
					if err := m.Force(v); err != nil {
						return err
					}
					return printStatus(cmd, m)
				})
			},
		},
	)

	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(migrator) error) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code(config.CodeInvalid).
			Hint("pass --database-url or set database.url").
			Errorf("no database configured")
	}

	m, err := newMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			errutil.LogError(logger, "failed to close migrator", err)
		}
	}()
	return fn(m)
}

func printStatus(cmd *cobra.Command, m migrator) error {
	st, err := m.Status()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	headingColor.Fprintf(out, "schema version %d", st.Version)
	if st.Dirty {
		failColor.Fprint(out, " (dirty)")
	}
	fmt.Fprintln(out)
	for _, v := range st.Applied {
		okColor.Fprint(out, "  applied")
		fmt.Fprintf(out, " %s\n", store.MigrationName(v))
	}
	for _, v := range st.Pending {
		warnColor.Fprint(out, "  pending")
		fmt.Fprintf(out, " %s\n", store.MigrationName(v))
	}
	return nil
}
