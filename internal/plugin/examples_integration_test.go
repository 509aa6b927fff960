// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package plugin_test

import (
	"context"
	"path/filepath"
	"runtime"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/propsuite/internal/plugin"
	pluginlua "github.com/holomush/propsuite/internal/plugin/lua"
	"github.com/holomush/propsuite/pkg/prop"
	"github.com/holomush/propsuite/pkg/suite"
	"github.com/holomush/propsuite/pkg/validate"
)

// repoPluginsDir returns the plugins directory at the repository root.
func repoPluginsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "plugins")
}

var _ = Describe("Example plugins", func() {
	var (
		ctx       context.Context
		reg       *suite.Registry
		mgr       *plugin.Manager
		describer *plugin.Describer
	)

	BeforeEach(func() {
		ctx = context.Background()
		reg = suite.NewRegistry()
		// Only the Lua host is wired: the binary example needs a build step.
		mgr = plugin.NewManager(repoPluginsDir(), reg, plugin.WithLuaHost(pluginlua.NewHost()))
		Expect(mgr.LoadAll(ctx)).To(Succeed())

		var err error
		describer, err = plugin.NewDescriber(mgr, reg, validate.NewEngine(), plugin.DescriberConfig{
			Policy:        validate.PolicyStrict,
			CheckDefaults: true,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		describer.Close()
		Expect(mgr.Close(ctx)).To(Succeed())
	})

	It("discovers both examples", func() {
		found, err := mgr.Discover(ctx)
		Expect(err).NotTo(HaveOccurred())

		names := make([]string, 0, len(found))
		for _, dp := range found {
			names = append(names, dp.Manifest.Name)
		}
		Expect(names).To(Equal([]string{"gain", "tint"}))
	})

	It("loads only plugins with a configured host", func() {
		Expect(mgr.ListPlugins()).To(Equal([]string{"tint"}))
	})

	Describe("the tint plugin", func() {
		It("describes itself within the plugin descriptor expectations", func() {
			desc, err := describer.Describe(ctx, "tint")
			Expect(err).NotTo(HaveOccurred())
			Expect(desc.Status).To(Equal(suite.OK))
			Expect(desc.Report.Violations).To(BeEmpty())

			label, err := prop.Get[string](desc.Set, "OfxPropLabel", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(label).To(Equal("Tint"))
		})

		It("writes the read-only property its manifest grants", func() {
			desc, err := describer.Describe(ctx, "tint")
			Expect(err).NotTo(HaveOccurred())

			path, err := prop.Get[string](desc.Set, "OfxPluginPropFilePath", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal("plugins/tint/main.lua"))
		})

		It("answers unlisted actions with the default reply", func() {
			st, err := mgr.Call(ctx, "tint", "render", describer.HostHandle(), 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(st).To(Equal(suite.ReplyDefault))
		})
	})
})
