// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package prop

import (
	"github.com/samber/oops"

	"github.com/holomush/propsuite/pkg/errutil"
)

// Error codes carried by every error this package returns.
const (
	CodeUnknown  = "PROP_UNKNOWN"
	CodeBadIndex = "PROP_BAD_INDEX"
	CodeValue    = "PROP_VALUE"
	CodeMemory   = "PROP_MEMORY"
	CodeExists   = "PROP_EXISTS"
	CodeHook     = "PROP_HOOK_FAILED"
)

// ErrorCode returns the oops code attached to err, or "" when there is none.
func ErrorCode(err error) string { return errutil.Code(err) }

func unknownProperty(name string) error {
	return oops.Code(CodeUnknown).
		With("property", name).
		Errorf("unknown property %q", name)
}

func badIndex(name string, index, dimension int) error {
	return oops.Code(CodeBadIndex).
		With("property", name).
		With("index", index).
		With("dimension", dimension).
		Errorf("index %d out of range for property %q", index, name)
}

func kindMismatch(name string, want, got Kind) error {
	return oops.Code(CodeValue).
		With("property", name).
		With("want", want.String()).
		With("got", got.String()).
		Errorf("property %q holds %s values, not %s", name, want, got)
}

func tooLarge(name string, size, limit int) error {
	return oops.Code(CodeMemory).
		With("property", name).
		With("size", size).
		With("limit", limit).
		Errorf("property %q cannot grow to %d values", name, size)
}

func duplicateProperty(name string) error {
	return oops.Code(CodeExists).
		With("property", name).
		Errorf("property %q declared twice", name)
}

// hookError keeps coded errors from hooks intact so callers can map them.
func hookError(name string, err error) error {
	if ErrorCode(err) != "" {
		return err
	}
	return oops.Code(CodeHook).
		With("property", name).
		Wrapf(err, "hook for property %q", name)
}
