// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package suite exposes property sets to plugins through a fixed table of
// status-returning functions addressed by opaque handles.
package suite

import (
	"fmt"
	"log/slog"

	"github.com/samber/oops"

	"github.com/holomush/propsuite/pkg/prop"
)

// Name and Version identify the property suite to plugins.
const (
	Name    = "PropertySuite"
	Version = "1.0.0"
)

// Suite is the plugin-facing function table. Field order is part of the ABI:
// plugins that index the table positionally depend on it.
//
// Vector getters fill at most len(out) values and leave the rest of out
// untouched; fewer values are written when the property holds fewer.
type Suite struct {
	SetPointer func(h Handle, name string, index int, v uintptr) Status
	SetString  func(h Handle, name string, index int, v string) Status
	SetDouble  func(h Handle, name string, index int, v float64) Status
	SetInt     func(h Handle, name string, index int, v int32) Status

	SetPointerN func(h Handle, name string, values []uintptr) Status
	SetStringN  func(h Handle, name string, values []string) Status
	SetDoubleN  func(h Handle, name string, values []float64) Status
	SetIntN     func(h Handle, name string, values []int32) Status

	GetPointer func(h Handle, name string, index int) (uintptr, Status)
	GetString  func(h Handle, name string, index int) (string, Status)
	GetDouble  func(h Handle, name string, index int) (float64, Status)
	GetInt     func(h Handle, name string, index int) (int32, Status)

	GetPointerN func(h Handle, name string, out []uintptr) Status
	GetStringN  func(h Handle, name string, out []string) Status
	GetDoubleN  func(h Handle, name string, out []float64) Status
	GetIntN     func(h Handle, name string, out []int32) Status

	Reset        func(h Handle, name string) Status
	GetDimension func(h Handle, name string) (int, Status)
}

// Ops lists the operation names in table order.
func Ops() []string {
	return []string{
		"setPointer", "setString", "setDouble", "setInt",
		"setPointerN", "setStringN", "setDoubleN", "setIntN",
		"getPointer", "getString", "getDouble", "getInt",
		"getPointerN", "getStringN", "getDoubleN", "getIntN",
		"reset", "getDimension",
	}
}

// WriteGuard decides whether a write to a read-only property is allowed.
type WriteGuard func(name string) bool

// Option configures a Suite.
type Option func(*bridge)

// WithLogger sets the logger used for failed and panicking calls.
func WithLogger(l *slog.Logger) Option {
	return func(b *bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithWriteGuard refuses writes and resets of read-only properties unless
// guard allows them. Refused calls return ErrUnsupported.
func WithWriteGuard(guard WriteGuard) Option {
	return func(b *bridge) { b.guard = guard }
}

type bridge struct {
	registry *Registry
	logger   *slog.Logger
	guard    WriteGuard
}

// New returns a Suite that resolves handles through reg.
func New(reg *Registry, opts ...Option) *Suite {
	b := &bridge{registry: reg, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}

	return &Suite{
		SetPointer: func(h Handle, name string, index int, v uintptr) Status {
			return put(b, "setPointer", h, name, index, v)
		},
		SetString: func(h Handle, name string, index int, v string) Status {
			return put(b, "setString", h, name, index, v)
		},
		SetDouble: func(h Handle, name string, index int, v float64) Status {
			return put(b, "setDouble", h, name, index, v)
		},
		SetInt: func(h Handle, name string, index int, v int32) Status {
			return put(b, "setInt", h, name, index, v)
		},

		SetPointerN: func(h Handle, name string, values []uintptr) Status {
			return putN(b, "setPointerN", h, name, values)
		},
		SetStringN: func(h Handle, name string, values []string) Status {
			return putN(b, "setStringN", h, name, values)
		},
		SetDoubleN: func(h Handle, name string, values []float64) Status {
			return putN(b, "setDoubleN", h, name, values)
		},
		SetIntN: func(h Handle, name string, values []int32) Status {
			return putN(b, "setIntN", h, name, values)
		},

		GetPointer: func(h Handle, name string, index int) (uintptr, Status) {
			return get[uintptr](b, "getPointer", h, name, index)
		},
		GetString: func(h Handle, name string, index int) (string, Status) {
			return get[string](b, "getString", h, name, index)
		},
		GetDouble: func(h Handle, name string, index int) (float64, Status) {
			return get[float64](b, "getDouble", h, name, index)
		},
		GetInt: func(h Handle, name string, index int) (int32, Status) {
			return get[int32](b, "getInt", h, name, index)
		},

		GetPointerN: func(h Handle, name string, out []uintptr) Status {
			return getN(b, "getPointerN", h, name, out)
		},
		GetStringN: func(h Handle, name string, out []string) Status {
			return getN(b, "getStringN", h, name, out)
		},
		GetDoubleN: func(h Handle, name string, out []float64) Status {
			return getN(b, "getDoubleN", h, name, out)
		},
		GetIntN: func(h Handle, name string, out []int32) Status {
			return getN(b, "getIntN", h, name, out)
		},

		Reset: func(h Handle, name string) Status {
			return b.call("reset", h, name, func(s *prop.Set) error {
				if err := b.writable(s, name); err != nil {
					return err
				}
				return s.ResetProperty(name)
			})
		},
		GetDimension: func(h Handle, name string) (int, Status) {
			var n int
			st := b.call("getDimension", h, name, func(s *prop.Set) error {
				var err error
				n, err = s.Dimension(name)
				return err
			})
			return n, st
		},
	}
}

// call resolves h and runs fn, converting errors and panics to a Status.
func (b *bridge) call(op string, h Handle, name string, fn func(*prop.Set) error) (st Status) {
	defer func() {
		if r := recover(); r != nil {
			st = ErrFatal
			Panics.WithLabelValues(op).Inc()
			b.logger.Error("property suite call panicked",
				"op", op,
				"handle", uint64(h),
				"property", name,
				"panic", fmt.Sprint(r),
			)
		}
		Calls.WithLabelValues(op, st.String()).Inc()
	}()

	set, err := b.registry.Resolve(h)
	if err == nil {
		err = fn(set)
	}
	st = StatusOf(err)
	if err != nil {
		b.logger.Debug("property suite call failed",
			"op", op,
			"handle", uint64(h),
			"property", name,
			"status", st.String(),
			"error", err,
		)
	}
	return st
}

func (b *bridge) writable(s *prop.Set, name string) error {
	if b.guard == nil {
		return nil
	}
	e, err := s.Entry(name)
	if err != nil {
		// Undeclared names are left to the typed lookup.
		return nil //nolint:nilerr // lookup reports the real status
	}
	if e.ReadOnly() && !b.guard(name) {
		return oops.Code(ErrUnsupported.Code()).
			With("property", name).
			Errorf("property %q is read-only", name)
	}
	return nil
}

func get[T prop.Scalar](b *bridge, op string, h Handle, name string, index int) (T, Status) {
	var out T
	st := b.call(op, h, name, func(s *prop.Set) error {
		v, err := prop.Get[T](s, name, index)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, st
}

func getN[T prop.Scalar](b *bridge, op string, h Handle, name string, out []T) Status {
	return b.call(op, h, name, func(s *prop.Set) error {
		vs, err := prop.GetN[T](s, name, len(out))
		if err != nil {
			return err
		}
		copy(out, vs)
		return nil
	})
}

func put[T prop.Scalar](b *bridge, op string, h Handle, name string, index int, v T) Status {
	return b.call(op, h, name, func(s *prop.Set) error {
		if err := b.writable(s, name); err != nil {
			return err
		}
		return prop.Put(s, name, index, v)
	})
}

func putN[T prop.Scalar](b *bridge, op string, h Handle, name string, values []T) Status {
	return b.call(op, h, name, func(s *prop.Set) error {
		if err := b.writable(s, name); err != nil {
			return err
		}
		return prop.PutN(s, name, values)
	})
}
