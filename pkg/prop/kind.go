// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package prop

import (
	"strings"

	"github.com/samber/oops"
)

// Kind identifies the value type an entry stores.
type Kind uint8

// Kinds in the order they are numbered on the wire.
const (
	KindInt Kind = iota
	KindDouble
	KindString
	KindPointer
)

var kindNames = [...]string{
	KindInt:     "int",
	KindDouble:  "double",
	KindString:  "string",
	KindPointer: "pointer",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if !k.Valid() {
		return "invalid"
	}
	return kindNames[k]
}

// Valid reports whether k is one of the four defined kinds.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// Zero returns the zero value of the kind.
func (k Kind) Zero() Value {
	return Value{kind: k}
}

// ParseKind parses a kind name as produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, oops.Code(CodeValue).With("kind", s).Errorf("unknown property kind %q", s)
}

// KindNames lists the kind names in wire order.
func KindNames() []string {
	return append([]string(nil), kindNames[:]...)
}
