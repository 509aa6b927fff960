// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package goplugin

import (
	hashiplug "github.com/hashicorp/go-plugin"

	"github.com/holomush/propsuite/pkg/pluginsdk"
)

// HandshakeConfig is imported from pluginsdk so host and plugins cannot
// drift apart.
var HandshakeConfig = pluginsdk.HandshakeConfig

// PluginMap is the host-side plugin map; the host never serves a handler.
var PluginMap = pluginsdk.PluginSet(nil)

// clientConfig builds the go-plugin client configuration for execPath.
func clientConfig(execPath string) *hashiplug.ClientConfig {
	return &hashiplug.ClientConfig{
		HandshakeConfig:  HandshakeConfig,
		Plugins:          PluginMap,
		Cmd:              command(execPath),
		AllowedProtocols: []hashiplug.Protocol{hashiplug.ProtocolNetRPC},
	}
}
