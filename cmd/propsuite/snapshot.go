// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/propsuite/internal/config"
	"github.com/holomush/propsuite/internal/store"
)

// snapshotStore is the part of store.SnapshotStore the snapshot commands use.
type snapshotStore interface {
	List(ctx context.Context) ([]store.SnapshotInfo, error)
	Delete(ctx context.Context, key string) error
}

// openSnapshots is replaced in tests.
var openSnapshots = func(cmd *cobra.Command) (snapshotStore, func(), error) {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.URL == "" {
		return nil, nil, oops.Code(config.CodeInvalid).
			Hint("pass --database-url or set database.url").
			Errorf("no database configured")
	}
	pool, err := store.Connect(commandContext(cmd), cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	return store.NewSnapshotStore(pool, store.WithLogger(logger)), pool.Close, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// NewSnapshotCmd creates the snapshot command with its subcommands.
func NewSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect stored property snapshots",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List snapshots, most recent first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, closeFn, err := openSnapshots(cmd)
				if err != nil {
					return err
				}
				defer closeFn()

				infos, err := s.List(commandContext(cmd))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(infos) == 0 {
					fmt.Fprintln(out, "no snapshots")
					return nil
				}
				for _, info := range infos {
					headingColor.Fprint(out, info.Key)
					subtleColor.Fprintf(out, "  set %s  saved %s\n", info.SetID, info.SavedAt.UTC().Format(time.RFC3339))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete KEY...",
			Short: "Delete snapshots",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, closeFn, err := openSnapshots(cmd)
				if err != nil {
					return err
				}
				defer closeFn()

				for _, key := range args {
					if err := s.Delete(commandContext(cmd), key); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", key)
				}
				return nil
			},
		},
	)

	return cmd
}
