// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package capability decides which read-only properties a plugin may write.
//
// Grants are gobwas/glob patterns over property names. Property names have
// no segment separator, so '*' matches any run of characters:
//   - "OfxPropLabel" matches only that property
//   - "OfxImageEffectProp*" matches every property with that prefix
//   - "*" matches every property
package capability

import (
	"sort"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/holomush/propsuite/pkg/suite"
)

// CodeInvalidGrant marks a grant that cannot be compiled.
const CodeInvalidGrant = "GRANT_INVALID"

type compiledGrant struct {
	pattern string
	glob    glob.Glob
}

// Enforcer holds write grants per plugin.
//
// Enforcer is safe for concurrent use. The zero value is ready to use.
type Enforcer struct {
	mu     sync.RWMutex
	grants map[string][]compiledGrant
}

// NewEnforcer creates an empty enforcer.
func NewEnforcer() *Enforcer {
	return &Enforcer{grants: make(map[string][]compiledGrant)}
}

// SetGrants replaces the grants of a plugin. If any pattern is invalid no
// change is made.
func (e *Enforcer) SetGrants(plugin string, patterns []string) error {
	if plugin == "" {
		return oops.Code(CodeInvalidGrant).Errorf("plugin name cannot be empty")
	}

	compiled := make([]compiledGrant, len(patterns))
	for i, pattern := range patterns {
		if pattern == "" {
			return oops.Code(CodeInvalidGrant).
				With("plugin", plugin).
				With("index", i).
				Errorf("empty grant pattern")
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			return oops.Code(CodeInvalidGrant).
				With("plugin", plugin).
				With("pattern", pattern).
				Wrapf(err, "compile grant %d", i)
		}
		compiled[i] = compiledGrant{pattern: pattern, glob: g}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.grants == nil {
		e.grants = make(map[string][]compiledGrant)
	}
	e.grants[plugin] = compiled
	return nil
}

// IsRegistered reports whether SetGrants was called for plugin.
func (e *Enforcer) IsRegistered(plugin string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.grants[plugin]
	return ok
}

// RemoveGrants forgets a plugin. Unknown plugins are ignored.
func (e *Enforcer) RemoveGrants(plugin string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.grants, plugin)
}

// GetGrants returns a copy of the patterns granted to plugin, or nil.
func (e *Enforcer) GetGrants(plugin string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	grants, ok := e.grants[plugin]
	if !ok {
		return nil
	}
	patterns := make([]string, len(grants))
	for i, g := range grants {
		patterns[i] = g.pattern
	}
	return patterns
}

// ListPlugins returns the registered plugin names in sorted order.
func (e *Enforcer) ListPlugins() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.grants))
	for name := range e.grants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check reports whether plugin may write the read-only property. Unknown
// plugins and empty names are denied.
func (e *Enforcer) Check(plugin, property string) bool {
	if property == "" {
		return false
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, g := range e.grants[plugin] {
		if g.glob.Match(property) {
			return true
		}
	}
	return false
}

// Guard returns a suite write guard bound to plugin. Grants changed after
// the call are observed by the guard.
func (e *Enforcer) Guard(plugin string) suite.WriteGuard {
	return func(name string) bool {
		return e.Check(plugin, name)
	}
}
