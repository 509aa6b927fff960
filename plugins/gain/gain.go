// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/holomush/propsuite/pkg/suite"
)

// Oldest host API the plugin can describe itself to.
const (
	minAPIMajor = 1
	minAPIMinor = 4
)

type gain struct{}

func (gain) MainEntry(_ context.Context, action string, s *suite.Suite, self, in, _ suite.Handle) suite.Status {
	switch action {
	case "describe":
		return describe(s, self, in)
	case "createInstance":
		return createInstance(s, self)
	default:
		return suite.ReplyDefault
	}
}

func describe(s *suite.Suite, self, host suite.Handle) suite.Status {
	version := make([]int32, 2)
	if st := s.GetIntN(host, "OfxPropAPIVersion", version); st != suite.OK {
		return st
	}
	if version[0] < minAPIMajor || (version[0] == minAPIMajor && version[1] < minAPIMinor) {
		return suite.ErrMissingHostFeature
	}

	steps := []func() suite.Status{
		func() suite.Status { return s.SetString(self, "OfxPropLabel", 0, "Gain") },
		func() suite.Status { return s.SetString(self, "OfxImageEffectPluginPropGrouping", 0, "Color") },
		func() suite.Status { return s.SetIntN(self, "OfxPropVersion", []int32{1, 2, 0}) },
		func() suite.Status {
			return s.SetStringN(self, "OfxImageEffectPropSupportedContexts",
				[]string{"OfxImageEffectContextFilter", "OfxImageEffectContextGeneral"})
		},
		func() suite.Status {
			return s.SetStringN(self, "OfxImageEffectPropSupportedPixelDepths",
				[]string{"OfxBitDepthFloat", "OfxBitDepthShort", "OfxBitDepthByte"})
		},
		func() suite.Status {
			return s.SetString(self, "OfxImageEffectPluginRenderThreadSafety", 0, "OfxImageEffectRenderFullySafe")
		},
	}
	for _, step := range steps {
		if st := step(); st != suite.OK {
			return st
		}
	}
	return suite.OK
}

// createInstance clamps a negative gain on the instance to zero.
func createInstance(s *suite.Suite, self suite.Handle) suite.Status {
	v, st := s.GetDouble(self, "Gain", 0)
	switch {
	case st == suite.ErrUnknown:
		return suite.ReplyDefault
	case st != suite.OK:
		return st
	case v < 0:
		return s.SetDouble(self, "Gain", 0, 0)
	}
	return suite.OK
}
