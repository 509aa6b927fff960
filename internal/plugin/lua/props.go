// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua

import (
	"log/slog"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/propsuite/pkg/prop"
	"github.com/holomush/propsuite/pkg/suite"
)

// ModuleName is the global table plugins use to reach property sets.
const ModuleName = "props"

// registerProps installs the props table. Every accessor returns its
// status as the last result; getters return the value first. Indexes are
// zero-based, as in the suite.
//
//	local st = props.set_string(self, "OfxPropLabel", 0, "Gain")
//	local v, st = props.get_int(host, "OfxPropAPIVersion", 1)
//	local vs, st = props.get_string_n(host, "OfxImageEffectPropSupportedContexts", 4)
//
// Lua numbers are doubles. An int argument must be a whole number within
// the int32 range and a pointer argument a whole number in [0, 2^53];
// anything else is refused with ErrValue before the suite is called.
// Pointers read back above 2^53 lose precision in Lua.
func registerProps(L *lua.LState, s *suite.Suite, logger *slog.Logger) {
	fns := map[string]lua.LGFunction{
		"set_int":     setter(s.SetInt, checkInt),
		"set_double":  setter(s.SetDouble, checkDouble),
		"set_string":  setter(s.SetString, checkString),
		"set_pointer": setter(s.SetPointer, checkPointer),

		"set_int_n":     vectorSetter(s.SetIntN, checkInt),
		"set_double_n":  vectorSetter(s.SetDoubleN, checkDouble),
		"set_string_n":  vectorSetter(s.SetStringN, checkString),
		"set_pointer_n": vectorSetter(s.SetPointerN, checkPointer),

		"get_int":     getter(s.GetInt),
		"get_double":  getter(s.GetDouble),
		"get_string":  getter(s.GetString),
		"get_pointer": getter(s.GetPointer),

		"get_int_n":     vectorGetter(s.GetIntN, s.GetDimension),
		"get_double_n":  vectorGetter(s.GetDoubleN, s.GetDimension),
		"get_string_n":  vectorGetter(s.GetStringN, s.GetDimension),
		"get_pointer_n": vectorGetter(s.GetPointerN, s.GetDimension),

		"reset": func(L *lua.LState) int {
			L.Push(lua.LNumber(s.Reset(checkHandle(L, 1), L.CheckString(2))))
			return 1
		},
		"get_dimension": func(L *lua.LState) int {
			n, st := s.GetDimension(checkHandle(L, 1), L.CheckString(2))
			L.Push(lua.LNumber(n))
			L.Push(lua.LNumber(st))
			return 2
		},
		"log": func(L *lua.LState) int {
			level := slog.LevelInfo
			_ = level.UnmarshalText([]byte(L.CheckString(1)))
			logger.Log(L.Context(), level, L.CheckString(2))
			return 0
		},
	}

	mod := L.SetFuncs(L.NewTable(), fns)
	for st := suite.OK; st <= suite.ReplyDefault; st++ {
		L.SetField(mod, st.String(), lua.LNumber(st))
	}
	L.SetGlobal(ModuleName, mod)
}

func checkHandle(L *lua.LState, n int) suite.Handle {
	return suite.Handle(L.CheckInt64(n))
}

// maxExactPointer is the largest address a Lua number carries exactly.
const maxExactPointer = 1 << 53

// checker reads argument n as T. ok is false when the argument has the
// right Lua type but does not fit T.
type checker[T prop.Scalar] func(L *lua.LState, n int) (v T, ok bool)

func wholeNumber(f float64) bool {
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}

func checkInt(L *lua.LState, n int) (int32, bool) {
	f := float64(L.CheckNumber(n))
	if !wholeNumber(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int32(f), true
}

func checkDouble(L *lua.LState, n int) (float64, bool) {
	return float64(L.CheckNumber(n)), true
}

func checkString(L *lua.LState, n int) (string, bool) {
	return L.CheckString(n), true
}

func checkPointer(L *lua.LState, n int) (uintptr, bool) {
	f := float64(L.CheckNumber(n))
	if !wholeNumber(f) || f < 0 || f > maxExactPointer {
		return 0, false
	}
	return uintptr(f), true
}

// checkFrom reads a Lua value already on the stack as T.
func checkFrom[T prop.Scalar](L *lua.LState, v lua.LValue, check checker[T]) (T, bool) {
	L.Push(v)
	defer L.Pop(1)
	return check(L, L.GetTop())
}

func push[T prop.Scalar](v T) lua.LValue {
	switch x := any(v).(type) {
	case int32:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case uintptr:
		return lua.LNumber(x)
	}
	return lua.LNil
}

func setter[T prop.Scalar](set func(suite.Handle, string, int, T) suite.Status, check checker[T]) lua.LGFunction {
	return func(L *lua.LState) int {
		h, name, index := checkHandle(L, 1), L.CheckString(2), L.CheckInt(3)
		v, ok := check(L, 4)
		if !ok {
			L.Push(lua.LNumber(suite.ErrValue))
			return 1
		}
		L.Push(lua.LNumber(set(h, name, index, v)))
		return 1
	}
}

func vectorSetter[T prop.Scalar](set func(suite.Handle, string, []T) suite.Status, check checker[T]) lua.LGFunction {
	return func(L *lua.LState) int {
		h, name, tbl := checkHandle(L, 1), L.CheckString(2), L.CheckTable(3)
		values := make([]T, 0, tbl.Len())
		for i := 1; i <= tbl.Len(); i++ {
			v, ok := checkFrom(L, tbl.RawGetInt(i), check)
			if !ok {
				L.Push(lua.LNumber(suite.ErrValue))
				return 1
			}
			values = append(values, v)
		}
		L.Push(lua.LNumber(set(h, name, values)))
		return 1
	}
}

func getter[T prop.Scalar](get func(suite.Handle, string, int) (T, suite.Status)) lua.LGFunction {
	return func(L *lua.LState) int {
		v, st := get(checkHandle(L, 1), L.CheckString(2), L.CheckInt(3))
		L.Push(push(v))
		L.Push(lua.LNumber(st))
		return 2
	}
}

func vectorGetter[T prop.Scalar](get func(suite.Handle, string, []T) suite.Status, dim func(suite.Handle, string) (int, suite.Status)) lua.LGFunction {
	return func(L *lua.LState) int {
		h, name, count := checkHandle(L, 1), L.CheckString(2), L.CheckInt(3)
		if count < 0 {
			L.ArgError(3, "count must not be negative")
		}
		// Bound the buffer by what the property holds. A property without a
		// dimension yields nothing; get still reports its status.
		n, dst := dim(h, name)
		if dst != suite.OK {
			n = 0
		}
		count = min(count, n)
		out := make([]T, count)
		st := get(h, name, out)
		tbl := L.CreateTable(len(out), 0)
		for _, v := range out {
			tbl.Append(push(v))
		}
		L.Push(tbl)
		L.Push(lua.LNumber(st))
		return 2
	}
}
