// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package plugin

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/propsuite/internal/plugin/capability"
	"github.com/holomush/propsuite/pkg/suite"
)

// Error codes returned by the Manager.
const (
	CodeNotLoaded = "PLUGIN_NOT_LOADED"
	CodeNoHost    = "PLUGIN_NO_HOST"
	CodeLoad      = "PLUGIN_LOAD_FAILED"
)

// Recorder receives per-call plugin metrics.
type Recorder interface {
	RecordAction(plugin, action, status string, d time.Duration)
	SetPluginsLoaded(n int)
}

// Manager discovers plugins, loads them into their runtime host and routes
// main entry calls.
type Manager struct {
	pluginsDir string
	registry   *suite.Registry
	hosts      map[Type]Host
	grants     *capability.Enforcer
	recorder   Recorder
	logger     *slog.Logger
	loaded     map[string]*loadedPlugin
	mu         sync.RWMutex
}

type loadedPlugin struct {
	discovered *DiscoveredPlugin
	suite      *suite.Suite
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithHost sets the host used for plugins of type t.
func WithHost(t Type, h Host) ManagerOption {
	return func(m *Manager) {
		m.hosts[t] = h
	}
}

// WithLuaHost sets the Lua host for the manager.
func WithLuaHost(h Host) ManagerOption {
	return WithHost(TypeLua, h)
}

// WithBinaryHost sets the binary plugin host for the manager.
func WithBinaryHost(h Host) ManagerOption {
	return WithHost(TypeBinary, h)
}

// WithEnforcer shares a grant enforcer with the manager.
func WithEnforcer(e *capability.Enforcer) ManagerOption {
	return func(m *Manager) {
		if e != nil {
			m.grants = e
		}
	}
}

// WithRecorder records per-call metrics.
func WithRecorder(r Recorder) ManagerOption {
	return func(m *Manager) {
		m.recorder = r
	}
}

// WithLogger sets the manager's logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a plugin manager. Handles passed to Call are resolved
// through reg.
func NewManager(pluginsDir string, reg *suite.Registry, opts ...ManagerOption) *Manager {
	m := &Manager{
		pluginsDir: pluginsDir,
		registry:   reg,
		hosts:      make(map[Type]Host),
		grants:     capability.NewEnforcer(),
		logger:     slog.Default(),
		loaded:     make(map[string]*loadedPlugin),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DiscoveredPlugin contains a manifest and its directory.
type DiscoveredPlugin struct {
	Manifest *Manifest
	Dir      string
}

// Discover finds all valid plugins in the plugins directory. Invalid
// plugins are logged and skipped.
func (m *Manager) Discover(_ context.Context) ([]*DiscoveredPlugin, error) {
	entries, err := os.ReadDir(m.pluginsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, oops.With("dir", m.pluginsDir).Wrapf(err, "read plugins directory")
	}

	var plugins []*DiscoveredPlugin
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginDir := filepath.Join(m.pluginsDir, entry.Name())
		manifestPath := filepath.Join(pluginDir, "plugin.yaml")

		data, err := os.ReadFile(manifestPath) //nolint:gosec // manifestPath is constructed from ReadDir entries
		if err != nil {
			m.logger.Warn("skipping plugin without manifest",
				"dir", entry.Name(),
				"error", err)
			continue
		}

		if err := ValidateSchema(data); err != nil {
			m.logger.Warn("skipping plugin with invalid manifest",
				"dir", entry.Name(),
				"error", FormatSchemaError(err))
			continue
		}
		manifest, err := ParseManifest(data)
		if err != nil {
			m.logger.Warn("skipping plugin with invalid manifest",
				"dir", entry.Name(),
				"error", err)
			continue
		}

		plugins = append(plugins, &DiscoveredPlugin{
			Manifest: manifest,
			Dir:      pluginDir,
		})
	}

	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Manifest.Name < plugins[j].Manifest.Name
	})
	return plugins, nil
}

// LoadAll discovers and loads all plugins. Individual failures are logged
// and skipped so that one broken plugin does not block the rest; use Load
// for strict loading.
func (m *Manager) LoadAll(ctx context.Context) error {
	discovered, err := m.Discover(ctx)
	if err != nil {
		return err
	}

	for _, dp := range discovered {
		if err := m.Load(ctx, dp); err != nil {
			m.logger.Error("failed to load plugin",
				"plugin", dp.Manifest.Name,
				"error", err)
		}
	}
	return nil
}

// Load loads one discovered plugin into the host for its type and
// registers its write grants.
func (m *Manager) Load(ctx context.Context, dp *DiscoveredPlugin) error {
	name := dp.Manifest.Name
	host, ok := m.hosts[dp.Manifest.Type]
	if !ok {
		return oops.Code(CodeNoHost).
			With("plugin", name).
			With("type", dp.Manifest.Type).
			Errorf("no host configured for %s plugins", dp.Manifest.Type)
	}

	if err := m.grants.SetGrants(name, dp.Manifest.Writes); err != nil {
		return err
	}
	if err := host.Load(ctx, dp.Manifest, dp.Dir); err != nil {
		m.grants.RemoveGrants(name)
		return oops.Code(CodeLoad).With("plugin", name).Wrap(err)
	}

	s := suite.New(m.registry,
		suite.WithLogger(m.logger.With("plugin", name)),
		suite.WithWriteGuard(m.grants.Guard(name)),
	)

	m.mu.Lock()
	m.loaded[name] = &loadedPlugin{discovered: dp, suite: s}
	n := len(m.loaded)
	m.mu.Unlock()

	if m.recorder != nil {
		m.recorder.SetPluginsLoaded(n)
	}
	m.logger.Info("loaded plugin",
		"plugin", name,
		"type", dp.Manifest.Type,
		"version", dp.Manifest.Version)
	return nil
}

// Unload removes a plugin from its host and drops its grants.
func (m *Manager) Unload(ctx context.Context, name string) error {
	m.mu.Lock()
	lp, ok := m.loaded[name]
	delete(m.loaded, name)
	n := len(m.loaded)
	m.mu.Unlock()

	if !ok {
		return oops.Code(CodeNotLoaded).With("plugin", name).Errorf("plugin %q is not loaded", name)
	}
	m.grants.RemoveGrants(name)
	if m.recorder != nil {
		m.recorder.SetPluginsLoaded(n)
	}
	return m.hosts[lp.discovered.Manifest.Type].Unload(ctx, name)
}

// Manifest returns the manifest of a loaded plugin.
func (m *Manager) Manifest(name string) (*Manifest, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lp, ok := m.loaded[name]
	if !ok {
		return nil, false
	}
	return lp.discovered.Manifest, true
}

// Call runs a plugin's main entry for action with the given handles.
// Actions the manifest does not list are answered with ReplyDefault
// without reaching the plugin.
func (m *Manager) Call(ctx context.Context, name, action string, self, in, out suite.Handle) (suite.Status, error) {
	m.mu.RLock()
	lp, ok := m.loaded[name]
	m.mu.RUnlock()
	if !ok {
		return suite.Failed, oops.Code(CodeNotLoaded).With("plugin", name).Errorf("plugin %q is not loaded", name)
	}

	manifest := lp.discovered.Manifest
	if !manifest.Handles(action) {
		return suite.ReplyDefault, nil
	}

	start := time.Now()
	st, err := m.hosts[manifest.Type].Call(ctx, name, Invocation{
		Action: action,
		Suite:  lp.suite,
		Self:   self,
		In:     in,
		Out:    out,
	})
	if err != nil {
		st = suite.ErrFatal
	}
	if m.recorder != nil {
		m.recorder.RecordAction(name, action, st.String(), time.Since(start))
	}
	m.logger.Debug("plugin action",
		"plugin", name,
		"action", action,
		"status", st.String(),
		"duration", time.Since(start))
	if err != nil {
		return st, oops.With("plugin", name).With("action", action).Wrap(err)
	}
	return st, nil
}

// ListPlugins returns names of all loaded plugins in sorted order.
func (m *Manager) ListPlugins() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.loaded))
	for name := range m.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close shuts down every host. The loaded set is cleared even if a host
// fails to close.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name := range m.loaded {
		m.grants.RemoveGrants(name)
	}
	m.loaded = make(map[string]*loadedPlugin)
	if m.recorder != nil {
		m.recorder.SetPluginsLoaded(0)
	}

	types := make([]string, 0, len(m.hosts))
	for t := range m.hosts {
		types = append(types, string(t))
	}
	sort.Strings(types)

	var first error
	for _, t := range types {
		if err := m.hosts[Type(t)].Close(ctx); err != nil && first == nil {
			first = oops.With("type", t).Wrapf(err, "close %s host", t)
		}
	}
	return first
}
