// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	plugins "github.com/holomush/propsuite/internal/plugin"
	"github.com/holomush/propsuite/pkg/suite"
)

// EntryPoint is the global function the host calls:
//
//	function main_entry(action, self, in_args, out_args) return props.OK end
const EntryPoint = "main_entry"

// CodeBadReturn marks a main entry that returned something other than a
// status number.
const CodeBadReturn = "LUA_BAD_RETURN"

var _ plugins.Host = (*Host)(nil)

type luaPlugin struct {
	manifest *plugins.Manifest
	code     string
}

// Host manages Lua plugins. Each call runs in a fresh sandboxed state.
type Host struct {
	factory *StateFactory
	logger  *slog.Logger
	plugins map[string]*luaPlugin
	mu      sync.RWMutex
	closed  bool
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithLogger sets the logger behind props.log.
func WithLogger(l *slog.Logger) HostOption {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHost creates a new Lua plugin host.
func NewHost(opts ...HostOption) *Host {
	h := &Host{
		factory: NewStateFactory(),
		logger:  slog.Default(),
		plugins: make(map[string]*luaPlugin),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Load reads the entry file and checks that it compiles and defines
// main_entry.
func (h *Host) Load(ctx context.Context, manifest *plugins.Manifest, dir string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	errb := oops.In("lua").With("plugin", manifest.Name).With("operation", "load")
	if h.closed {
		return errb.New("host is closed")
	}
	if manifest.LuaPlugin == nil {
		return errb.New("not a lua plugin")
	}

	entryPath := filepath.Join(dir, manifest.LuaPlugin.Entry)
	code, err := os.ReadFile(filepath.Clean(entryPath))
	if err != nil {
		return errb.With("path", entryPath).Hint("failed to read entry file").Wrap(err)
	}

	L, err := h.factory.NewState(ctx)
	if err != nil {
		return errb.Hint("failed to create validation state").Wrap(err)
	}
	defer L.Close()

	if err := L.DoString(string(code)); err != nil {
		return errb.With("entry", manifest.LuaPlugin.Entry).Hint("syntax error").Wrap(err)
	}
	if L.GetGlobal(EntryPoint).Type() != lua.LTFunction {
		return errb.With("entry", manifest.LuaPlugin.Entry).Errorf("%s is not defined", EntryPoint)
	}

	h.plugins[manifest.Name] = &luaPlugin{manifest: manifest, code: string(code)}
	return nil
}

// Unload removes a plugin.
func (h *Host) Unload(_ context.Context, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.plugins[name]; !ok {
		return oops.In("lua").With("plugin", name).With("operation", "unload").New("plugin not loaded")
	}
	delete(h.plugins, name)
	return nil
}

// Call runs main_entry(action, self, in, out) in a fresh state with the
// props module bound to inv.Suite. A nil return means the plugin did not
// handle the action and is reported as ReplyDefault.
func (h *Host) Call(ctx context.Context, name string, inv plugins.Invocation) (suite.Status, error) {
	errb := oops.In("lua").With("plugin", name).With("action", inv.Action)

	h.mu.RLock()
	p, ok := h.plugins[name]
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return suite.Failed, errb.New("host is closed")
	}
	if !ok {
		return suite.Failed, errb.New("plugin not loaded")
	}

	L, err := h.factory.NewState(ctx)
	if err != nil {
		return suite.Failed, errb.Hint("failed to create state").Wrap(err)
	}
	defer L.Close()

	registerProps(L, inv.Suite, h.logger.With("plugin", name))

	if err := L.DoString(p.code); err != nil {
		return suite.Failed, errb.Hint("failed to load code").Wrap(err)
	}

	if err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal(EntryPoint),
		NRet:    1,
		Protect: true,
	}, lua.LString(inv.Action), lua.LNumber(inv.Self), lua.LNumber(inv.In), lua.LNumber(inv.Out)); err != nil {
		return suite.ErrFatal, errb.With("operation", EntryPoint).Wrap(err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	switch v := ret.(type) {
	case *lua.LNilType:
		return suite.ReplyDefault, nil
	case lua.LNumber:
		return suite.Status(v), nil
	default:
		return suite.Failed, errb.Code(CodeBadReturn).Errorf("%s returned %s, want a status", EntryPoint, ret.Type())
	}
}

// Plugins returns names of loaded plugins in sorted order.
func (h *Host) Plugins() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.plugins))
	for name := range h.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close shuts down the host.
func (h *Host) Close(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.plugins = nil
	return nil
}
