// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package pluginsdk provides the SDK for building binary property suite
// plugins.
//
// Binary plugins talk to the host over HashiCorp go-plugin's net/rpc
// transport. For every main entry call the host serves its Suite back to
// the plugin over the connection broker, so the handler receives an
// ordinary *suite.Suite and reaches the host's property sets through it.
//
// Example usage:
//
//	type gain struct{}
//
//	func (gain) MainEntry(_ context.Context, action string, s *suite.Suite, self, _, _ suite.Handle) suite.Status {
//		if action != "describe" {
//			return suite.ReplyDefault
//		}
//		return s.SetString(self, "OfxPropLabel", 0, "Gain")
//	}
//
//	func main() {
//		pluginsdk.Serve(&pluginsdk.ServeConfig{Handler: gain{}})
//	}
package pluginsdk

import (
	"context"

	hashiplug "github.com/hashicorp/go-plugin"

	"github.com/holomush/propsuite/pkg/suite"
)

// PluginName is the name the entry plugin is dispensed under.
const PluginName = "entry"

// Handler is the interface that binary plugins must implement. Its result
// is the plugin's answer to the action; ReplyDefault means "not handled".
type Handler interface {
	MainEntry(ctx context.Context, action string, s *suite.Suite, self, in, out suite.Handle) suite.Status
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, action string, s *suite.Suite, self, in, out suite.Handle) suite.Status

// MainEntry calls f.
func (f HandlerFunc) MainEntry(ctx context.Context, action string, s *suite.Suite, self, in, out suite.Handle) suite.Status {
	return f(ctx, action, s, self, in, out)
}

// HandshakeConfig is the go-plugin handshake configuration.
// Both host and plugins must use the same values.
var HandshakeConfig = hashiplug.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "PROPSUITE_PLUGIN",
	MagicCookieValue: "propsuite-v1",
}

// PluginSet returns the plugin map for h. Hosts pass PluginSet(nil).
func PluginSet(h Handler) map[string]hashiplug.Plugin {
	return map[string]hashiplug.Plugin{
		PluginName: &EntryPlugin{Impl: h},
	}
}

// ServeConfig configures the plugin server.
type ServeConfig struct {
	// Handler is the main entry implementation.
	// Required; Serve will panic if nil.
	Handler Handler
}

// Serve starts the plugin server. This should be called from main().
// It blocks and never returns under normal operation.
func Serve(config *ServeConfig) {
	if config == nil {
		panic("pluginsdk: config cannot be nil")
	}
	if config.Handler == nil {
		panic("pluginsdk: config.Handler cannot be nil")
	}
	hashiplug.Serve(&hashiplug.ServeConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins:         PluginSet(config.Handler),
	})
}
