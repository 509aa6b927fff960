// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package plugin discovers plugins and drives their main entry with
// property set handles.
package plugin

import (
	"context"

	"github.com/holomush/propsuite/pkg/suite"
)

// Invocation is one main entry call. Suite is the table the plugin uses to
// reach the handles; it carries that plugin's write grants.
type Invocation struct {
	Action string
	Suite  *suite.Suite
	Self   suite.Handle
	In     suite.Handle
	Out    suite.Handle
}

// Host manages a specific plugin runtime type.
type Host interface {
	// Load initializes a plugin from its manifest.
	Load(ctx context.Context, manifest *Manifest, dir string) error

	// Unload tears down a plugin.
	Unload(ctx context.Context, name string) error

	// Call runs the plugin's main entry. The error reports host or
	// transport failures; the plugin's answer is the Status.
	Call(ctx context.Context, name string, inv Invocation) (suite.Status, error)

	// Plugins returns names of all loaded plugins.
	Plugins() []string

	// Close shuts down the host and all plugins.
	Close(ctx context.Context) error
}
