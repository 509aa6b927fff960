// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package goplugin provides a Host implementation for binary plugins
// using HashiCorp's go-plugin system over net/rpc.
package goplugin

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"time"

	hashiplug "github.com/hashicorp/go-plugin"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/holomush/propsuite/internal/plugin"
	"github.com/holomush/propsuite/pkg/pluginsdk"
	"github.com/holomush/propsuite/pkg/suite"
)

// DefaultCallTimeout bounds a single main entry call.
const DefaultCallTimeout = 5 * time.Second

// Sentinel errors for programmatic error checking.
var (
	// ErrHostClosed is returned when operations are attempted on a closed host.
	ErrHostClosed = errors.New("host is closed")
	// ErrPluginNotLoaded is returned when operating on a plugin that isn't loaded.
	ErrPluginNotLoaded = errors.New("plugin not loaded")
	// ErrPluginAlreadyLoaded is returned when loading a plugin that's already loaded.
	ErrPluginAlreadyLoaded = errors.New("plugin already loaded")
)

var _ plugin.Host = (*Host)(nil)

// PluginClient wraps go-plugin client for testability.
type PluginClient interface {
	// Client returns the RPC client protocol.
	Client() (hashiplug.ClientProtocol, error)
	// Kill terminates the plugin process.
	Kill()
}

// ClientFactory creates plugin clients.
type ClientFactory interface {
	// NewClient creates a client for the given executable path.
	NewClient(execPath string) PluginClient
}

// DefaultClientFactory creates real go-plugin clients.
type DefaultClientFactory struct{}

// NewClient creates a real go-plugin client.
func (f *DefaultClientFactory) NewClient(execPath string) PluginClient {
	return hashiplug.NewClient(clientConfig(execPath))
}

func command(execPath string) *exec.Cmd {
	return exec.Command(execPath) // #nosec G204 -- execPath resolved from plugin manifest; manifests validated during discovery
}

// Host manages binary plugins via HashiCorp go-plugin.
type Host struct {
	clientFactory ClientFactory
	backoff       func() retry.Backoff
	callTimeout   time.Duration
	plugins       map[string]*loadedPlugin
	mu            sync.RWMutex
	closed        bool
}

type loadedPlugin struct {
	manifest *plugin.Manifest
	client   PluginClient
	entry    pluginsdk.Entry
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithClientFactory replaces the go-plugin client factory (for testing).
func WithClientFactory(f ClientFactory) HostOption {
	return func(h *Host) {
		if f != nil {
			h.clientFactory = f
		}
	}
}

// WithConnectBackoff sets the backoff used while waiting for a freshly
// started plugin to answer pings.
func WithConnectBackoff(b func() retry.Backoff) HostOption {
	return func(h *Host) {
		if b != nil {
			h.backoff = b
		}
	}
}

// WithCallTimeout bounds each main entry call.
func WithCallTimeout(d time.Duration) HostOption {
	return func(h *Host) {
		if d > 0 {
			h.callTimeout = d
		}
	}
}

func defaultBackoff() retry.Backoff {
	return retry.WithMaxRetries(5, retry.NewExponential(20*time.Millisecond))
}

// NewHost creates a new binary plugin host.
func NewHost(opts ...HostOption) *Host {
	h := &Host{
		clientFactory: &DefaultClientFactory{},
		backoff:       defaultBackoff,
		callTimeout:   DefaultCallTimeout,
		plugins:       make(map[string]*loadedPlugin),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Load starts the plugin process, waits for it to answer pings and
// dispenses its main entry.
func (h *Host) Load(ctx context.Context, manifest *plugin.Manifest, dir string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	errb := oops.In("goplugin").With("plugin", manifest.Name)
	if h.closed {
		return errb.Wrap(ErrHostClosed)
	}
	if _, ok := h.plugins[manifest.Name]; ok {
		return errb.Wrap(ErrPluginAlreadyLoaded)
	}
	if manifest.BinaryPlugin == nil {
		return errb.Errorf("plugin %s is not a binary plugin", manifest.Name)
	}

	execPath := filepath.Join(dir, manifest.BinaryPlugin.Executable)
	if _, err := os.Stat(execPath); err != nil {
		return errb.With("path", execPath).Wrapf(err, "plugin executable")
	}

	client := h.clientFactory.NewClient(execPath)
	entry, err := h.connect(ctx, client)
	if err != nil {
		client.Kill()
		return errb.Wrap(err)
	}

	h.plugins[manifest.Name] = &loadedPlugin{
		manifest: manifest,
		client:   client,
		entry:    entry,
	}
	return nil
}

func (h *Host) connect(ctx context.Context, client PluginClient) (pluginsdk.Entry, error) {
	rpcClient, err := client.Client()
	if err != nil {
		return nil, oops.Wrapf(err, "connect")
	}

	if err := retry.Do(ctx, h.backoff(), func(_ context.Context) error {
		if err := rpcClient.Ping(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		return nil, oops.Wrapf(err, "ping")
	}

	raw, err := rpcClient.Dispense(pluginsdk.PluginName)
	if err != nil {
		return nil, oops.Wrapf(err, "dispense")
	}
	entry, ok := raw.(pluginsdk.Entry)
	if !ok {
		return nil, oops.Errorf("dispensed %T does not implement pluginsdk.Entry", raw)
	}
	return entry, nil
}

// Unload kills the plugin process.
func (h *Host) Unload(_ context.Context, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	errb := oops.In("goplugin").With("plugin", name)
	if h.closed {
		return errb.Wrap(ErrHostClosed)
	}
	p, ok := h.plugins[name]
	if !ok {
		return errb.Wrap(ErrPluginNotLoaded)
	}
	p.client.Kill()
	delete(h.plugins, name)
	return nil
}

// Call runs the plugin's main entry with inv.Suite served back to it.
//
// The lock is released before the RPC so calls to different plugins do
// not serialize. A concurrent Unload kills the process and the call fails.
func (h *Host) Call(ctx context.Context, name string, inv plugin.Invocation) (suite.Status, error) {
	errb := oops.In("goplugin").With("plugin", name).With("action", inv.Action)

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return suite.Failed, errb.Wrap(ErrHostClosed)
	}
	p, ok := h.plugins[name]
	h.mu.RUnlock()
	if !ok {
		return suite.Failed, errb.Wrap(ErrPluginNotLoaded)
	}

	callCtx, cancel := context.WithTimeout(ctx, h.callTimeout)
	defer cancel()

	st, err := p.entry.MainEntry(callCtx, inv.Suite, inv.Action, inv.Self, inv.In, inv.Out)
	if err != nil {
		return st, errb.Wrap(err)
	}
	return st, nil
}

// Plugins returns names of loaded plugins in sorted order.
func (h *Host) Plugins() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return nil
	}
	names := make([]string, 0, len(h.plugins))
	for name := range h.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close kills every plugin process.
func (h *Host) Close(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, p := range h.plugins {
		p.client.Kill()
	}
	h.closed = true
	clear(h.plugins)
	return nil
}
