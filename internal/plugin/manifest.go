// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package plugin

import (
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/holomush/propsuite/pkg/suite"
)

// CodeInvalidManifest marks a manifest that fails validation.
const CodeInvalidManifest = "MANIFEST_INVALID"

// Type identifies the plugin runtime.
type Type string

// Plugin types supported by the host.
const (
	TypeLua    Type = "lua"
	TypeBinary Type = "binary"
)

// Manifest represents a plugin.yaml file.
type Manifest struct {
	Name        string `yaml:"name" json:"name" jsonschema:"pattern=^[a-z]([a-z0-9-]*[a-z0-9])?$,maxLength=64"`
	Version     string `yaml:"version" json:"version" jsonschema:"description=Semantic version of the plugin"`
	APIVersion  string `yaml:"api_version,omitempty" json:"api_version,omitempty" jsonschema:"description=Semver constraint on the property suite version"`
	Type        Type   `yaml:"type" json:"type" jsonschema:"enum=lua,enum=binary"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Actions the plugin answers. Empty means every action is delivered.
	Actions []string `yaml:"actions,omitempty" json:"actions,omitempty"`
	// Writes lists glob patterns of read-only properties the plugin may write.
	Writes       []string      `yaml:"writes,omitempty" json:"writes,omitempty"`
	LuaPlugin    *LuaConfig    `yaml:"lua-plugin,omitempty" json:"lua-plugin,omitempty"`
	BinaryPlugin *BinaryConfig `yaml:"binary-plugin,omitempty" json:"binary-plugin,omitempty"`
}

// LuaConfig holds Lua-specific configuration.
type LuaConfig struct {
	Entry string `yaml:"entry" json:"entry"`
}

// BinaryConfig holds binary plugin configuration.
type BinaryConfig struct {
	Executable string `yaml:"executable" json:"executable"`
}

const maxNameLength = 64

// namePattern: lowercase letter first, then lowercase letters, digits or
// hyphens, not ending with a hyphen.
var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// ParseManifest parses and validates a plugin.yaml file.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, oops.Code(CodeInvalidManifest).Errorf("manifest data is empty")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, oops.Code(CodeInvalidManifest).Wrapf(err, "invalid YAML")
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks manifest constraints, including that the plugin accepts
// the running suite version.
func (m *Manifest) Validate() error {
	errb := oops.Code(CodeInvalidManifest).With("plugin", m.Name)

	if m.Name == "" || !namePattern.MatchString(m.Name) {
		return errb.Errorf("name %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", m.Name)
	}
	if len(m.Name) > maxNameLength {
		return errb.Errorf("name must be %d characters or less, got %d", maxNameLength, len(m.Name))
	}

	if m.Version == "" {
		return errb.Errorf("version is required")
	}
	if _, err := semver.NewVersion(m.Version); err != nil {
		return errb.Wrapf(err, "version %q is not a semantic version", m.Version)
	}
	if err := m.checkAPIVersion(suite.Version); err != nil {
		return err
	}

	for _, pattern := range m.Writes {
		if _, err := glob.Compile(pattern); err != nil || pattern == "" {
			return errb.With("pattern", pattern).Errorf("invalid writes pattern %q", pattern)
		}
	}

	switch m.Type {
	case TypeLua:
		if m.LuaPlugin == nil {
			return errb.Errorf("lua-plugin is required when type is lua")
		}
		if m.LuaPlugin.Entry == "" {
			return errb.Errorf("lua-plugin.entry is required")
		}
	case TypeBinary:
		if m.BinaryPlugin == nil {
			return errb.Errorf("binary-plugin is required when type is binary")
		}
		if m.BinaryPlugin.Executable == "" {
			return errb.Errorf("binary-plugin.executable is required")
		}
	default:
		return errb.Errorf("type must be 'lua' or 'binary', got %q", m.Type)
	}

	return nil
}

func (m *Manifest) checkAPIVersion(running string) error {
	if m.APIVersion == "" {
		return nil
	}
	errb := oops.Code(CodeInvalidManifest).
		With("plugin", m.Name).
		With("api_version", m.APIVersion).
		With("suite_version", running)

	c, err := semver.NewConstraint(m.APIVersion)
	if err != nil {
		return errb.Wrapf(err, "api_version %q is not a version constraint", m.APIVersion)
	}
	v, err := semver.NewVersion(running)
	if err != nil {
		return errb.Wrapf(err, "suite version %q", running)
	}
	if !c.Check(v) {
		return errb.Errorf("plugin requires suite %s, host provides %s", m.APIVersion, running)
	}
	return nil
}

// Handles reports whether the plugin answers action.
func (m *Manifest) Handles(action string) bool {
	if len(m.Actions) == 0 {
		return true
	}
	for _, a := range m.Actions {
		if a == action {
			return true
		}
	}
	return false
}
