// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/propsuite/internal/config"
	"github.com/holomush/propsuite/internal/observability"
	"github.com/holomush/propsuite/internal/plugin"
	"github.com/holomush/propsuite/internal/plugin/goplugin"
	pluginlua "github.com/holomush/propsuite/internal/plugin/lua"
	"github.com/holomush/propsuite/internal/store"
	"github.com/holomush/propsuite/pkg/errutil"
	"github.com/holomush/propsuite/pkg/suite"
	"github.com/holomush/propsuite/pkg/validate"
)

// CodeDescribeFailed is returned when at least one plugin failed to describe.
const CodeDescribeFailed = "DESCRIBE_FAILED"

const shutdownTimeout = 5 * time.Second

type describeOptions struct {
	snapshot bool
}

// NewDescribeCmd creates the describe subcommand.
func NewDescribeCmd() *cobra.Command {
	opts := &describeOptions{}
	cmd := &cobra.Command{
		Use:   "describe [plugin...]",
		Short: "Run the describe action of plugins and validate their descriptors",
		Long: `Load the plugins found in the plugins directory, call the describe
action of each with a fresh plugin descriptor and the host descriptor, then
validate what the plugin reported. Without arguments every loaded plugin is
described.

With --snapshot and a database URL, each descriptor is saved as the
snapshot "describe/<plugin>".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.snapshot, "snapshot", false, "save descriptors to the snapshot store")
	return cmd
}

func runDescribe(cmd *cobra.Command, names []string, opts *describeOptions) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	var snapshots *store.SnapshotStore
	if opts.snapshot {
		if cfg.Database.URL == "" {
			return oops.Code(config.CodeInvalid).Errorf("--snapshot needs database.url")
		}
		pool, err := store.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		snapshots = store.NewSnapshotStore(pool, store.WithLogger(logger))
	}

	reg := suite.NewRegistry()
	managerOpts := []plugin.ManagerOption{
		plugin.WithLuaHost(pluginlua.NewHost(pluginlua.WithLogger(logger))),
		plugin.WithBinaryHost(goplugin.NewHost()),
		plugin.WithLogger(logger),
	}

	var ready atomic.Bool
	if cfg.Metrics.Addr != "" {
		server := observability.NewServer(cfg.Metrics.Addr, ready.Load, suite.RegisterMetrics, validate.RegisterMetrics)
		if _, err := server.Start(); err != nil {
			return err
		}
		defer stopServer(server, logger)
		managerOpts = append(managerOpts, plugin.WithRecorder(server.Metrics()))
	}

	mgr := plugin.NewManager(cfg.Plugins.Dir, reg, managerOpts...)
	defer func() {
		if err := mgr.Close(context.Background()); err != nil {
			errutil.LogError(logger, "failed to close plugins", err)
		}
	}()
	if err := mgr.LoadAll(ctx); err != nil {
		return err
	}
	ready.Store(true)

	describer, err := plugin.NewDescriber(mgr, reg, validate.NewEngine(validate.WithLogger(logger)), plugin.DescriberConfig{
		Policy:        cfg.Validation.Policy,
		CheckDefaults: cfg.Validation.CheckDefaults,
		MaxGrowth:     cfg.Suite.MaxGrowth,
	})
	if err != nil {
		return err
	}
	defer describer.Close()

	if len(names) == 0 {
		names = mgr.ListPlugins()
	}
	if len(names) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no plugins loaded from %s\n", cfg.Plugins.Dir)
		return nil
	}

	out := cmd.OutOrStdout()
	var failed []string
	for _, name := range names {
		desc, err := describer.Describe(ctx, name)
		if desc != nil {
			printReport(out, "plugin "+name, desc.Report, cfg.Validation.Policy)
		}
		if err != nil {
			errutil.LogError(logger, "describe failed", err, "plugin", name)
			if desc == nil {
				failColor.Fprintf(out, "plugin %s", name)
				fmt.Fprintf(out, ": %v\n", err)
			}
			failed = append(failed, name)
			continue
		}
		if snapshots != nil {
			if err := snapshots.Save(ctx, "describe/"+name, desc.Set); err != nil {
				return oops.With("plugin", name).Wrap(err)
			}
		}
	}

	if len(failed) > 0 {
		return oops.Code(CodeDescribeFailed).
			With("plugins", failed).
			Errorf("%d of %d plugins failed to describe", len(failed), len(names))
	}
	return nil
}

func stopServer(server *observability.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		errutil.LogError(logger, "failed to stop observability server", err)
	}
}
