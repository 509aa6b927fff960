// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/holomush/propsuite/internal/config"
	"github.com/holomush/propsuite/internal/logging"
	"github.com/holomush/propsuite/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the propsuite CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propsuite",
		Short: "propsuite - property sets for plugin hosts",
		Long: `propsuite manages typed property sets shared between a host and its
plugins: it validates schema tables, runs plugins through the describe
action over the property suite, and stores snapshots in PostgreSQL.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	config.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewDescribeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSchemaCmd())
	cmd.AddCommand(NewSnapshotCmd())

	return cmd
}

// setup loads the configuration for cmd and installs the default logger.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, err := xdg.FindConfig(configFile)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.Setup("propsuite", version, logging.Options{
		Format: cfg.Log.Format,
		Level:  cfg.Log.Level,
	}, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}
