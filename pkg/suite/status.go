// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package suite

import (
	"fmt"
	"strings"

	"github.com/samber/oops"

	"github.com/holomush/propsuite/pkg/prop"
)

// Status is the integer result code of every Suite function. The numbering
// is part of the plugin ABI and never changes.
type Status int32

// Status codes.
const (
	OK Status = iota
	Failed
	ErrFatal
	ErrUnknown
	ErrMissingHostFeature
	ErrUnsupported
	ErrExists
	ErrFormat
	ErrMemory
	ErrBadHandle
	ErrBadIndex
	ErrValue
	ReplyYes
	ReplyNo
	ReplyDefault
)

var statusNames = [...]string{
	OK:                    "OK",
	Failed:                "Failed",
	ErrFatal:              "ErrFatal",
	ErrUnknown:            "ErrUnknown",
	ErrMissingHostFeature: "ErrMissingHostFeature",
	ErrUnsupported:        "ErrUnsupported",
	ErrExists:             "ErrExists",
	ErrFormat:             "ErrFormat",
	ErrMemory:             "ErrMemory",
	ErrBadHandle:          "ErrBadHandle",
	ErrBadIndex:           "ErrBadIndex",
	ErrValue:              "ErrValue",
	ReplyYes:              "ReplyYes",
	ReplyNo:               "ReplyNo",
	ReplyDefault:          "ReplyDefault",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int32(s))
	}
	return statusNames[s]
}

// Code returns the oops code that StatusOf maps back to s.
func (s Status) Code() string {
	return "SUITE_" + strings.ToUpper(s.String())
}

var codeStatus = func() map[string]Status {
	m := map[string]Status{
		prop.CodeUnknown:  ErrUnknown,
		prop.CodeBadIndex: ErrBadIndex,
		prop.CodeValue:    ErrValue,
		prop.CodeMemory:   ErrMemory,
		prop.CodeExists:   ErrExists,
		prop.CodeHook:     Failed,
	}
	for s := range statusNames {
		m[Status(s).Code()] = Status(s)
	}
	return m
}()

// StatusOf maps an error to the status reported across the plugin boundary.
// Errors without a recognised code map to Failed.
func StatusOf(err error) Status {
	if err == nil {
		return OK
	}
	if st, ok := codeStatus[prop.ErrorCode(err)]; ok {
		return st
	}
	return Failed
}

// Errorf returns an error that StatusOf maps to s. Hooks use it to report a
// specific status through a Set.
func Errorf(s Status, format string, args ...any) error {
	return oops.Code(s.Code()).With("status", s.String()).Errorf(format, args...)
}
