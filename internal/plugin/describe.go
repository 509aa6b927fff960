// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package plugin

import (
	"context"

	"github.com/samber/oops"

	"github.com/holomush/propsuite/internal/schema"
	"github.com/holomush/propsuite/pkg/prop"
	"github.com/holomush/propsuite/pkg/suite"
	"github.com/holomush/propsuite/pkg/validate"
)

// ActionDescribe asks a plugin to fill in its descriptor.
const ActionDescribe = "describe"

// CodeDescribeFailed marks a describe call the plugin answered with an
// error status.
const CodeDescribeFailed = "PLUGIN_DESCRIBE_FAILED"

// Description is what a plugin reported about itself.
type Description struct {
	Plugin string
	Status suite.Status
	Set    *prop.Set
	Report validate.Report
}

// Describer runs the describe action and validates the descriptor the
// plugin filled in.
type Describer struct {
	manager       *Manager
	registry      *suite.Registry
	engine        *validate.Engine
	descriptor    *schema.Catalog
	policy        validate.Policy
	checkDefaults bool
	maxGrowth     int
	host          suite.Handle
}

// DescriberConfig configures a Describer.
type DescriberConfig struct {
	Policy        validate.Policy
	CheckDefaults bool
	MaxGrowth     int
}

// NewDescriber builds the host descriptor from the built-in catalog and
// registers it for the lifetime of the Describer.
func NewDescriber(m *Manager, reg *suite.Registry, engine *validate.Engine, cfg DescriberConfig) (*Describer, error) {
	hostCatalog, err := schema.LoadCatalog(schema.CatalogHost)
	if err != nil {
		return nil, err
	}
	descriptor, err := schema.LoadCatalog(schema.CatalogPluginDescriptor)
	if err != nil {
		return nil, err
	}

	hostSet, err := hostCatalog.Table.NewSet(growth(cfg.MaxGrowth)...)
	if err != nil {
		return nil, err
	}
	report := engine.Run(context.Background(), "host", hostSet, hostCatalog.Expectations, true)
	if err := report.Err(); err != nil {
		return nil, oops.Wrapf(err, "built-in host descriptor")
	}

	return &Describer{
		manager:       m,
		registry:      reg,
		engine:        engine,
		descriptor:    descriptor,
		policy:        cfg.Policy,
		checkDefaults: cfg.CheckDefaults,
		maxGrowth:     cfg.MaxGrowth,
		host:          reg.Register(hostSet),
	}, nil
}

func growth(n int) []prop.Option {
	if n <= 0 {
		return nil
	}
	return []prop.Option{prop.WithMaxGrowth(n)}
}

// HostHandle is the handle of the host descriptor passed as the in set.
func (d *Describer) HostHandle() suite.Handle { return d.host }

// Describe calls the plugin's describe action with a fresh sloppy
// descriptor as self and the host descriptor as in, then validates the
// descriptor at the describe checkpoint.
func (d *Describer) Describe(ctx context.Context, name string) (*Description, error) {
	opts := append([]prop.Option{prop.Sloppy()}, growth(d.maxGrowth)...)
	set, err := d.descriptor.Table.NewSet(opts...)
	if err != nil {
		return nil, err
	}
	self := d.registry.Register(set)
	defer d.registry.Release(self)

	st, err := d.manager.Call(ctx, name, ActionDescribe, self, d.host, 0)
	if err != nil {
		return nil, err
	}
	if st != suite.OK && st != suite.ReplyDefault {
		return nil, oops.Code(CodeDescribeFailed).
			With("plugin", name).
			With("status", st.String()).
			Errorf("plugin %q answered describe with %s", name, st)
	}

	report := d.engine.Run(ctx, ActionDescribe, set, d.descriptor.Expectations, d.checkDefaults)
	desc := &Description{Plugin: name, Status: st, Set: set, Report: report}
	if err := report.Enforce(d.policy); err != nil {
		return desc, oops.With("plugin", name).Wrap(err)
	}
	return desc, nil
}

// DescribeAll describes every loaded plugin in name order. It stops at the
// first error.
func (d *Describer) DescribeAll(ctx context.Context) ([]*Description, error) {
	var out []*Description
	for _, name := range d.manager.ListPlugins() {
		desc, err := d.Describe(ctx, name)
		if err != nil {
			return out, err
		}
		out = append(out, desc)
	}
	return out, nil
}

// Close releases the host descriptor handle.
func (d *Describer) Close() {
	d.registry.Release(d.host)
}
