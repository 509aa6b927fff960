// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pluginsdk

import (
	"net/rpc"

	"github.com/holomush/propsuite/pkg/prop"
	"github.com/holomush/propsuite/pkg/suite"
)

// Values is the wire form of a run of same-kind values. Only the slice
// matching Kind is populated.
type Values struct {
	Kind     prop.Kind
	Ints     []int32
	Doubles  []float64
	Strings  []string
	Pointers []uint64
}

// SetArgs carries a scalar or vector set.
type SetArgs struct {
	Handle suite.Handle
	Name   string
	Index  int
	Vector bool
	Values Values
}

// GetArgs carries a scalar or vector get.
type GetArgs struct {
	Handle suite.Handle
	Name   string
	Index  int
	Count  int
	Vector bool
	Kind   prop.Kind
}

// GetReply is the answer to GetArgs.
type GetReply struct {
	Status suite.Status
	Values Values
}

// NameArgs addresses one property.
type NameArgs struct {
	Handle suite.Handle
	Name   string
}

// DimensionReply is the answer to GetDimension.
type DimensionReply struct {
	N      int
	Status suite.Status
}

func pack[T prop.Scalar](vs []T) Values {
	switch x := any(vs).(type) {
	case []int32:
		return Values{Kind: prop.KindInt, Ints: x}
	case []float64:
		return Values{Kind: prop.KindDouble, Doubles: x}
	case []string:
		return Values{Kind: prop.KindString, Strings: x}
	case []uintptr:
		p := make([]uint64, len(x))
		for i, v := range x {
			p[i] = uint64(v)
		}
		return Values{Kind: prop.KindPointer, Pointers: p}
	}
	return Values{}
}

func unpack[T prop.Scalar](v Values) []T {
	var out any
	switch prop.KindOf[T]() {
	case prop.KindInt:
		out = v.Ints
	case prop.KindDouble:
		out = v.Doubles
	case prop.KindString:
		out = v.Strings
	case prop.KindPointer:
		p := make([]uintptr, len(v.Pointers))
		for i, x := range v.Pointers {
			p[i] = uintptr(x)
		}
		out = p
	}
	vs, _ := out.([]T)
	return vs
}

// SuiteRPCServer serves a host Suite to a plugin over net/rpc.
type SuiteRPCServer struct {
	Suite *suite.Suite
}

// Set dispatches to the typed setter for args.Values.Kind.
func (s *SuiteRPCServer) Set(args SetArgs, reply *suite.Status) error {
	switch args.Values.Kind {
	case prop.KindInt:
		*reply = serveSet(s.Suite.SetInt, s.Suite.SetIntN, args)
	case prop.KindDouble:
		*reply = serveSet(s.Suite.SetDouble, s.Suite.SetDoubleN, args)
	case prop.KindString:
		*reply = serveSet(s.Suite.SetString, s.Suite.SetStringN, args)
	case prop.KindPointer:
		*reply = serveSet(s.Suite.SetPointer, s.Suite.SetPointerN, args)
	default:
		*reply = suite.ErrValue
	}
	return nil
}

// Get dispatches to the typed getter for args.Kind.
func (s *SuiteRPCServer) Get(args GetArgs, reply *GetReply) error {
	switch args.Kind {
	case prop.KindInt:
		*reply = serveGet(s.Suite.GetInt, s.Suite.GetIntN, s.Suite.GetDimension, args)
	case prop.KindDouble:
		*reply = serveGet(s.Suite.GetDouble, s.Suite.GetDoubleN, s.Suite.GetDimension, args)
	case prop.KindString:
		*reply = serveGet(s.Suite.GetString, s.Suite.GetStringN, s.Suite.GetDimension, args)
	case prop.KindPointer:
		*reply = serveGet(s.Suite.GetPointer, s.Suite.GetPointerN, s.Suite.GetDimension, args)
	default:
		*reply = GetReply{Status: suite.ErrValue}
	}
	return nil
}

// Reset resets one property.
func (s *SuiteRPCServer) Reset(args NameArgs, reply *suite.Status) error {
	*reply = s.Suite.Reset(args.Handle, args.Name)
	return nil
}

// GetDimension reports one property's dimension.
func (s *SuiteRPCServer) GetDimension(args NameArgs, reply *DimensionReply) error {
	reply.N, reply.Status = s.Suite.GetDimension(args.Handle, args.Name)
	return nil
}

func serveSet[T prop.Scalar](one func(suite.Handle, string, int, T) suite.Status, many func(suite.Handle, string, []T) suite.Status, args SetArgs) suite.Status {
	vs := unpack[T](args.Values)
	if args.Vector {
		return many(args.Handle, args.Name, vs)
	}
	if len(vs) != 1 {
		return suite.ErrValue
	}
	return one(args.Handle, args.Name, args.Index, vs[0])
}

// serveGet bounds vector reads by the property's dimension so the reply
// carries only the values actually filled.
func serveGet[T prop.Scalar](
	one func(suite.Handle, string, int) (T, suite.Status),
	many func(suite.Handle, string, []T) suite.Status,
	dim func(suite.Handle, string) (int, suite.Status),
	args GetArgs,
) GetReply {
	if !args.Vector {
		v, st := one(args.Handle, args.Name, args.Index)
		return GetReply{Status: st, Values: pack([]T{v})}
	}
	if args.Count < 0 {
		return GetReply{Status: suite.ErrBadIndex}
	}
	n, st := dim(args.Handle, args.Name)
	if st != suite.OK {
		n = 0
	}
	out := make([]T, min(args.Count, n))
	st = many(args.Handle, args.Name, out)
	return GetReply{Status: st, Values: pack(out)}
}

// NewRemoteSuite returns a Suite whose calls travel over c to a
// SuiteRPCServer. Transport failures report ErrFatal.
func NewRemoteSuite(c *rpc.Client) *suite.Suite {
	return &suite.Suite{
		SetPointer: func(h suite.Handle, name string, index int, v uintptr) suite.Status {
			return remoteSet(c, h, name, index, false, []uintptr{v})
		},
		SetString: func(h suite.Handle, name string, index int, v string) suite.Status {
			return remoteSet(c, h, name, index, false, []string{v})
		},
		SetDouble: func(h suite.Handle, name string, index int, v float64) suite.Status {
			return remoteSet(c, h, name, index, false, []float64{v})
		},
		SetInt: func(h suite.Handle, name string, index int, v int32) suite.Status {
			return remoteSet(c, h, name, index, false, []int32{v})
		},

		SetPointerN: func(h suite.Handle, name string, values []uintptr) suite.Status {
			return remoteSet(c, h, name, 0, true, values)
		},
		SetStringN: func(h suite.Handle, name string, values []string) suite.Status {
			return remoteSet(c, h, name, 0, true, values)
		},
		SetDoubleN: func(h suite.Handle, name string, values []float64) suite.Status {
			return remoteSet(c, h, name, 0, true, values)
		},
		SetIntN: func(h suite.Handle, name string, values []int32) suite.Status {
			return remoteSet(c, h, name, 0, true, values)
		},

		GetPointer: func(h suite.Handle, name string, index int) (uintptr, suite.Status) {
			return remoteGet[uintptr](c, h, name, index)
		},
		GetString: func(h suite.Handle, name string, index int) (string, suite.Status) {
			return remoteGet[string](c, h, name, index)
		},
		GetDouble: func(h suite.Handle, name string, index int) (float64, suite.Status) {
			return remoteGet[float64](c, h, name, index)
		},
		GetInt: func(h suite.Handle, name string, index int) (int32, suite.Status) {
			return remoteGet[int32](c, h, name, index)
		},

		GetPointerN: func(h suite.Handle, name string, out []uintptr) suite.Status {
			return remoteGetN(c, h, name, out)
		},
		GetStringN: func(h suite.Handle, name string, out []string) suite.Status {
			return remoteGetN(c, h, name, out)
		},
		GetDoubleN: func(h suite.Handle, name string, out []float64) suite.Status {
			return remoteGetN(c, h, name, out)
		},
		GetIntN: func(h suite.Handle, name string, out []int32) suite.Status {
			return remoteGetN(c, h, name, out)
		},

		Reset: func(h suite.Handle, name string) suite.Status {
			var st suite.Status
			if err := c.Call("Plugin.Reset", NameArgs{Handle: h, Name: name}, &st); err != nil {
				return suite.ErrFatal
			}
			return st
		},
		GetDimension: func(h suite.Handle, name string) (int, suite.Status) {
			var reply DimensionReply
			if err := c.Call("Plugin.GetDimension", NameArgs{Handle: h, Name: name}, &reply); err != nil {
				return 0, suite.ErrFatal
			}
			return reply.N, reply.Status
		},
	}
}

func remoteSet[T prop.Scalar](c *rpc.Client, h suite.Handle, name string, index int, vector bool, vs []T) suite.Status {
	var st suite.Status
	args := SetArgs{Handle: h, Name: name, Index: index, Vector: vector, Values: pack(vs)}
	if err := c.Call("Plugin.Set", args, &st); err != nil {
		return suite.ErrFatal
	}
	return st
}

func remoteGet[T prop.Scalar](c *rpc.Client, h suite.Handle, name string, index int) (T, suite.Status) {
	var zero T
	var reply GetReply
	args := GetArgs{Handle: h, Name: name, Index: index, Kind: prop.KindOf[T]()}
	if err := c.Call("Plugin.Get", args, &reply); err != nil {
		return zero, suite.ErrFatal
	}
	if vs := unpack[T](reply.Values); len(vs) > 0 {
		return vs[0], reply.Status
	}
	return zero, reply.Status
}

func remoteGetN[T prop.Scalar](c *rpc.Client, h suite.Handle, name string, out []T) suite.Status {
	var reply GetReply
	args := GetArgs{Handle: h, Name: name, Count: len(out), Vector: true, Kind: prop.KindOf[T]()}
	if err := c.Call("Plugin.Get", args, &reply); err != nil {
		return suite.ErrFatal
	}
	copy(out, unpack[T](reply.Values))
	return reply.Status
}
