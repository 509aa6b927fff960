// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package prop

import (
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// Spec is one row of a schema table.
type Spec struct {
	Name string
	Kind Kind
	// Dimension is the fixed number of values; 0 means variable.
	Dimension int
	ReadOnly  bool
	// Default is the textual default, parsed by ParseDefault.
	Default string
}

// Validate checks the row in isolation.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return oops.Code(CodeValue).Errorf("property name is required")
	}
	if !s.Kind.Valid() {
		return oops.Code(CodeValue).
			With("property", s.Name).
			Errorf("property %q has invalid kind %d", s.Name, s.Kind)
	}
	if s.Dimension < 0 {
		return oops.Code(CodeValue).
			With("property", s.Name).
			With("dimension", s.Dimension).
			Errorf("property %q has negative dimension", s.Name)
	}
	return nil
}

// ParseDefault turns a textual default into the initial values of an entry.
//
// Numeric defaults are whitespace separated literals. A single literal is
// replicated across a fixed dimension; otherwise the literal count must match
// the dimension. String defaults are taken verbatim as one literal. Pointer
// defaults accept "", "0", "null" or an unsigned integer literal.
//
// Fixed-dimension entries always get exactly dimension values. Variable
// entries get the listed literals, or nothing for an empty default.
func ParseDefault(kind Kind, dimension int, text string) ([]Value, error) {
	var literals []string
	switch kind {
	case KindString:
		if text != "" || dimension > 0 {
			literals = []string{text}
		}
	case KindInt, KindDouble, KindPointer:
		literals = strings.Fields(text)
	default:
		return nil, oops.Code(CodeValue).Errorf("invalid kind %d", kind)
	}

	parsed := make([]Value, 0, len(literals))
	for _, lit := range literals {
		v, err := parseLiteral(kind, lit)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, v)
	}

	if dimension == 0 {
		if len(parsed) == 0 {
			return nil, nil
		}
		return parsed, nil
	}

	out := make([]Value, dimension)
	switch len(parsed) {
	case 0:
		for i := range out {
			out[i] = kind.Zero()
		}
	case 1:
		for i := range out {
			out[i] = parsed[0]
		}
	case dimension:
		copy(out, parsed)
	default:
		return nil, oops.Code(CodeValue).
			With("default", text).
			With("dimension", dimension).
			Errorf("default has %d values, want 1 or %d", len(parsed), dimension)
	}
	return out, nil
}

func parseLiteral(kind Kind, lit string) (Value, error) {
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(lit, 10, 32)
		if err != nil {
			return Value{}, oops.Code(CodeValue).With("literal", lit).Wrapf(err, "parse int default")
		}
		return Int(int32(n)), nil
	case KindDouble:
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return Value{}, oops.Code(CodeValue).With("literal", lit).Wrapf(err, "parse double default")
		}
		return Double(f), nil
	case KindPointer:
		if lit == "null" {
			return Pointer(0), nil
		}
		p, err := strconv.ParseUint(lit, 0, 64)
		if err != nil {
			return Value{}, oops.Code(CodeValue).With("literal", lit).Wrapf(err, "parse pointer default")
		}
		return Pointer(uintptr(p)), nil
	default:
		return String(lit), nil
	}
}
