// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package prop

import (
	"fmt"
	"strconv"
)

// Value is a single property value tagged with its Kind.
//
// Pointer values are opaque addresses owned by whoever stored them. They are
// compared and copied but never dereferenced.
type Value struct {
	kind Kind
	i    int32
	d    float64
	s    string
	p    uintptr
}

// Int returns an int value.
func Int(v int32) Value { return Value{kind: KindInt, i: v} }

// Double returns a double value.
func Double(v float64) Value { return Value{kind: KindDouble, d: v} }

// String returns a string value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Pointer returns an opaque pointer value.
func Pointer(v uintptr) Value { return Value{kind: KindPointer, p: v} }

// Kind returns the kind tag.
func (v Value) Kind() Kind { return v.kind }

// AsInt returns the int payload; zero for other kinds.
func (v Value) AsInt() int32 { return v.i }

// AsDouble returns the double payload; zero for other kinds.
func (v Value) AsDouble() float64 { return v.d }

// AsString returns the string payload; empty for other kinds.
func (v Value) AsString() string { return v.s }

// AsPointer returns the pointer payload; zero for other kinds.
func (v Value) AsPointer() uintptr { return v.p }

// Equal reports whether both values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	return v == o
}

// String renders the payload in the literal form accepted by ParseDefault.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(int64(v.i), 10)
	case KindDouble:
		return strconv.FormatFloat(v.d, 'g', -1, 64)
	case KindString:
		return v.s
	case KindPointer:
		return fmt.Sprintf("0x%x", v.p)
	default:
		return "<invalid>"
	}
}

// Interface returns the payload as a plain Go value.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindDouble:
		return v.d
	case KindString:
		return v.s
	case KindPointer:
		return v.p
	default:
		return nil
	}
}

func cloneValues(vs []Value) []Value {
	if vs == nil {
		return nil
	}
	out := make([]Value, len(vs))
	copy(out, vs)
	return out
}
