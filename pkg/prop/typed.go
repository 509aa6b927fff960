// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package prop

// Scalar is the set of Go types that map onto a Kind.
type Scalar interface {
	int32 | float64 | string | uintptr
}

// KindOf returns the Kind that stores T.
func KindOf[T Scalar]() Kind {
	var zero T
	switch any(zero).(type) {
	case int32:
		return KindInt
	case float64:
		return KindDouble
	case string:
		return KindString
	default:
		return KindPointer
	}
}

// ValueOf wraps v in a Value of the matching kind.
func ValueOf[T Scalar](v T) Value {
	switch x := any(v).(type) {
	case int32:
		return Int(x)
	case float64:
		return Double(x)
	case string:
		return String(x)
	case uintptr:
		return Pointer(x)
	}
	return Value{}
}

// Payload unwraps v. The caller guarantees v holds a T.
func Payload[T Scalar](v Value) T {
	x, _ := v.Interface().(T)
	return x
}

// Get reads one typed value through the Set's typed lookup path.
func Get[T Scalar](s *Set, name string, index int) (T, error) {
	var zero T
	e, err := s.Lookup(name, KindOf[T]())
	if err != nil {
		return zero, err
	}
	v, err := e.Get(index)
	if err != nil {
		return zero, err
	}
	return Payload[T](v), nil
}

// Put writes one typed value through the Set's typed lookup path.
func Put[T Scalar](s *Set, name string, index int, v T) error {
	e, err := s.Lookup(name, KindOf[T]())
	if err != nil {
		return err
	}
	return e.Set(ValueOf(v), index)
}

// GetN reads up to count typed values.
func GetN[T Scalar](s *Set, name string, count int) ([]T, error) {
	e, err := s.Lookup(name, KindOf[T]())
	if err != nil {
		return nil, err
	}
	vs, err := e.GetN(count)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(vs))
	for i, v := range vs {
		out[i] = Payload[T](v)
	}
	return out, nil
}

// PutN writes typed values starting at index 0.
func PutN[T Scalar](s *Set, name string, values []T) error {
	e, err := s.Lookup(name, KindOf[T]())
	if err != nil {
		return err
	}
	vs := make([]Value, len(values))
	for i, v := range values {
		vs[i] = ValueOf(v)
	}
	return e.SetN(vs)
}
