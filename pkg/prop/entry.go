// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package prop

import "github.com/samber/oops"

// DefaultMaxGrowth is the largest number of values a variable-dimension entry
// may hold unless the Set is built WithMaxGrowth.
const DefaultMaxGrowth = 1 << 20

// Entry is a single named property inside a Set.
type Entry struct {
	name      string
	kind      Kind
	dimension int
	readOnly  bool
	maxGrowth int

	values   []Value
	defaults []Value

	getHook  GetHook
	setHooks []SetHook
}

func newEntry(spec Spec, maxGrowth int) (*Entry, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	defaults, err := ParseDefault(spec.Kind, spec.Dimension, spec.Default)
	if err != nil {
		return nil, oops.With("property", spec.Name).Wrap(err)
	}
	return &Entry{
		name:      spec.Name,
		kind:      spec.Kind,
		dimension: spec.Dimension,
		readOnly:  spec.ReadOnly,
		maxGrowth: maxGrowth,
		values:    cloneValues(defaults),
		defaults:  defaults,
	}, nil
}

// Name returns the property name.
func (e *Entry) Name() string { return e.name }

// Kind returns the kind of every value the entry stores.
func (e *Entry) Kind() Kind { return e.kind }

// FixedDimension returns the declared dimension, 0 for variable entries.
func (e *Entry) FixedDimension() int { return e.dimension }

// ReadOnly reports whether plugins should be refused writes to the entry.
func (e *Entry) ReadOnly() bool { return e.readOnly }

// Defaults returns a copy of the values Reset restores.
func (e *Entry) Defaults() []Value { return cloneValues(e.defaults) }

// Hooked reports whether a GetHook is installed.
func (e *Entry) Hooked() bool { return e.getHook != nil }

// SetGetHook installs h as the entry's value source. A nil h restores local
// storage.
func (e *Entry) SetGetHook(h GetHook) { e.getHook = h }

// AddSetHook appends h to the hooks notified on every write.
func (e *Entry) AddSetHook(h SetHook) {
	if h != nil {
		e.setHooks = append(e.setHooks, h)
	}
}

// Get returns the value at index.
//
// Fixed-dimension entries reject indexes outside [0, dimension). Variable
// entries read the kind's zero value past their stored length.
func (e *Entry) Get(index int) (Value, error) {
	if index < 0 {
		return Value{}, badIndex(e.name, index, e.dimension)
	}
	if e.getHook != nil {
		v, err := e.getHook.GetValue(e.name, index)
		if err != nil {
			return Value{}, hookError(e.name, err)
		}
		if v.kind != e.kind {
			return Value{}, kindMismatch(e.name, e.kind, v.kind)
		}
		return v, nil
	}
	if e.dimension > 0 && index >= e.dimension {
		return Value{}, badIndex(e.name, index, e.dimension)
	}
	if index >= len(e.values) {
		return e.kind.Zero(), nil
	}
	return e.values[index], nil
}

// GetN returns up to count leading values. Fewer are returned when the entry
// holds fewer.
func (e *Entry) GetN(count int) ([]Value, error) {
	if count < 0 {
		return nil, badIndex(e.name, count, e.dimension)
	}
	if e.getHook != nil {
		vs, err := e.getHook.GetValues(e.name, count)
		if err != nil {
			return nil, hookError(e.name, err)
		}
		if len(vs) > count {
			vs = vs[:count]
		}
		for _, v := range vs {
			if v.kind != e.kind {
				return nil, kindMismatch(e.name, e.kind, v.kind)
			}
		}
		return cloneValues(vs), nil
	}
	n := min(count, len(e.values))
	return cloneValues(e.values[:n]), nil
}

// Set stores v at index and notifies the set hooks. Variable entries grow to
// fit, filling gaps with zero values.
func (e *Entry) Set(v Value, index int) error {
	if v.kind != e.kind {
		return kindMismatch(e.name, e.kind, v.kind)
	}
	if index < 0 {
		return badIndex(e.name, index, e.dimension)
	}
	if e.getHook == nil {
		switch {
		case e.dimension > 0 && index >= e.dimension:
			return badIndex(e.name, index, e.dimension)
		case e.dimension == 0:
			if err := e.grow(index + 1); err != nil {
				return err
			}
		}
		e.values[index] = v
	}
	for _, h := range e.setHooks {
		h.Notify(e.name, v, index)
	}
	return nil
}

// SetN writes values starting at index 0. A variable entry takes exactly the
// given values; a fixed entry has its prefix overwritten and may not receive
// more values than its dimension.
func (e *Entry) SetN(values []Value) error {
	for _, v := range values {
		if v.kind != e.kind {
			return kindMismatch(e.name, e.kind, v.kind)
		}
	}
	if e.dimension > 0 && len(values) > e.dimension {
		return badIndex(e.name, len(values), e.dimension)
	}
	if e.getHook == nil {
		if e.dimension > 0 {
			copy(e.values, values)
		} else {
			if len(values) > e.maxGrowth {
				return tooLarge(e.name, len(values), e.maxGrowth)
			}
			e.values = cloneValues(values)
			if e.values == nil {
				e.values = []Value{}
			}
		}
	}
	written := cloneValues(values)
	for _, h := range e.setHooks {
		h.NotifyN(e.name, written)
	}
	return nil
}

// Dimension returns the fixed dimension, the hook's answer, or the stored
// length, in that order of precedence.
func (e *Entry) Dimension() (int, error) {
	if e.dimension > 0 {
		return e.dimension, nil
	}
	if e.getHook != nil {
		n, err := e.getHook.Dimension(e.name)
		if err != nil {
			return 0, hookError(e.name, err)
		}
		return n, nil
	}
	return len(e.values), nil
}

// Reset restores the defaults and notifies the set hooks once per index.
// With a GetHook installed the reset is delegated to the hook.
func (e *Entry) Reset() error {
	if e.getHook != nil {
		if err := e.getHook.Reset(e.name); err != nil {
			return hookError(e.name, err)
		}
		return nil
	}
	e.values = cloneValues(e.defaults)
	for i, v := range e.defaults {
		for _, h := range e.setHooks {
			h.Notify(e.name, v, i)
		}
	}
	return nil
}

func (e *Entry) grow(n int) error {
	if n <= len(e.values) {
		return nil
	}
	if n > e.maxGrowth {
		return tooLarge(e.name, n, e.maxGrowth)
	}
	for len(e.values) < n {
		e.values = append(e.values, e.kind.Zero())
	}
	return nil
}

// clone copies the entry without hooks. Hooked entries are read through their
// hook so the copy holds what the original exposes.
func (e *Entry) clone() (*Entry, error) {
	c := &Entry{
		name:      e.name,
		kind:      e.kind,
		dimension: e.dimension,
		readOnly:  e.readOnly,
		maxGrowth: e.maxGrowth,
		defaults:  cloneValues(e.defaults),
	}
	if e.getHook == nil {
		c.values = cloneValues(e.values)
		return c, nil
	}

	n, err := e.Dimension()
	if err != nil {
		return nil, err
	}
	values, err := e.GetN(n)
	if err != nil {
		return nil, err
	}
	for len(values) < e.dimension {
		values = append(values, e.kind.Zero())
	}
	c.values = values
	return c, nil
}
