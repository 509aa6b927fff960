// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package prop

import (
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Set is a collection of uniquely named entries.
type Set struct {
	id        ulid.ULID
	sloppy    bool
	maxGrowth int
	entries   map[string]*Entry
	order     []string
}

// Option configures a Set at construction.
type Option func(*Set)

// Sloppy makes typed lookups of undeclared names create variable-dimension
// entries of the requested kind instead of failing.
func Sloppy() Option {
	return func(s *Set) { s.sloppy = true }
}

// WithMaxGrowth bounds the size of variable-dimension entries.
func WithMaxGrowth(n int) Option {
	return func(s *Set) {
		if n > 0 {
			s.maxGrowth = n
		}
	}
}

// WithID overrides the generated set ID.
func WithID(id ulid.ULID) Option {
	return func(s *Set) { s.id = id }
}

// NewSet builds a Set from a schema table. Duplicate names and malformed
// defaults fail the whole construction.
func NewSet(specs []Spec, opts ...Option) (*Set, error) {
	s := &Set{
		id:        ulid.Make(),
		maxGrowth: DefaultMaxGrowth,
		entries:   make(map[string]*Entry, len(specs)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Add(specs...); err != nil {
		return nil, err
	}
	return s, nil
}

// MustNewSet is like NewSet but panics on error. Use it for static tables.
func MustNewSet(specs []Spec, opts ...Option) *Set {
	s, err := NewSet(specs, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Add declares more entries. Either every spec is added or none is.
func (s *Set) Add(specs ...Spec) error {
	built := make([]*Entry, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if _, dup := seen[spec.Name]; dup {
			return duplicateProperty(spec.Name)
		}
		if _, exists := s.entries[spec.Name]; exists {
			return duplicateProperty(spec.Name)
		}
		seen[spec.Name] = struct{}{}

		e, err := newEntry(spec, s.maxGrowth)
		if err != nil {
			return oops.With("set", s.id.String()).Wrap(err)
		}
		built = append(built, e)
	}
	for _, e := range built {
		s.insert(e)
	}
	return nil
}

func (s *Set) insert(e *Entry) {
	s.entries[e.name] = e
	s.order = append(s.order, e.name)
}

// ID returns the set's ULID.
func (s *Set) ID() ulid.ULID { return s.id }

// IsSloppy reports whether undeclared names are created on demand.
func (s *Set) IsSloppy() bool { return s.sloppy }

// Len returns the number of entries.
func (s *Set) Len() int { return len(s.entries) }

// Names returns the entry names in declaration order.
func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

// Has reports whether name is declared.
func (s *Set) Has(name string) bool {
	_, ok := s.entries[name]
	return ok
}

// Entry returns the named entry. It never creates entries, even on a sloppy
// Set.
func (s *Set) Entry(name string) (*Entry, error) {
	e, ok := s.entries[name]
	if !ok {
		return nil, unknownProperty(name)
	}
	return e, nil
}

// Lookup returns the named entry for typed access with the given kind. On a
// sloppy Set an undeclared name is created as a variable-dimension entry.
func (s *Set) Lookup(name string, kind Kind) (*Entry, error) {
	e, ok := s.entries[name]
	if !ok {
		if !s.sloppy {
			return nil, unknownProperty(name)
		}
		var err error
		e, err = newEntry(Spec{Name: name, Kind: kind}, s.maxGrowth)
		if err != nil {
			return nil, err
		}
		s.insert(e)
		return e, nil
	}
	if e.kind != kind {
		return nil, kindMismatch(name, e.kind, kind)
	}
	return e, nil
}

// Dimension returns the dimension of a declared entry.
func (s *Set) Dimension(name string) (int, error) {
	e, err := s.Entry(name)
	if err != nil {
		return 0, err
	}
	return e.Dimension()
}

// ResetProperty restores a declared entry to its defaults.
func (s *Set) ResetProperty(name string) error {
	e, err := s.Entry(name)
	if err != nil {
		return err
	}
	return e.Reset()
}

// SetGetHook installs h on a declared entry.
func (s *Set) SetGetHook(name string, h GetHook) error {
	e, err := s.Entry(name)
	if err != nil {
		return err
	}
	e.SetGetHook(h)
	return nil
}

// AddSetHook adds h to a declared entry.
func (s *Set) AddSetHook(name string, h SetHook) error {
	e, err := s.Entry(name)
	if err != nil {
		return err
	}
	e.AddSetHook(h)
	return nil
}

// Clone returns an independent deep copy with a fresh ID. Hooks are not
// copied. If any entry cannot be copied no Set is returned.
func (s *Set) Clone() (*Set, error) {
	c := &Set{
		id:        ulid.Make(),
		sloppy:    s.sloppy,
		maxGrowth: s.maxGrowth,
		entries:   make(map[string]*Entry, len(s.entries)),
		order:     make([]string, 0, len(s.order)),
	}
	for _, name := range s.Names() {
		e, err := s.entries[name].clone()
		if err != nil {
			return nil, oops.With("set", s.id.String()).Wrap(err)
		}
		c.insert(e)
	}
	return c, nil
}
