// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package validate checks property sets against lists of expectations.
//
// Validation reads but never writes. Every violation is reported; deciding
// whether a violation is fatal is left to the caller.
package validate

import (
	"fmt"

	"github.com/holomush/propsuite/pkg/prop"
)

// Expectation describes what a property set should contain.
type Expectation struct {
	Name      string
	Kind      prop.Kind
	Dimension int
	// Required demands at least one value when Dimension is 0.
	Required bool
	// Default, when set, is compared against the current values if defaults
	// are checked.
	Default *string
}

// Reason classifies a violation.
type Reason string

// Violation reasons.
const (
	ReasonMissing            Reason = "missing"
	ReasonKindMismatch       Reason = "kind_mismatch"
	ReasonDimensionMismatch  Reason = "dimension_mismatch"
	ReasonEmpty              Reason = "empty"
	ReasonDefaultMismatch    Reason = "default_mismatch"
	ReasonUnreadable         Reason = "unreadable"
	ReasonInvalidExpectation Reason = "invalid_expectation"
)

// Violation is one failed expectation.
type Violation struct {
	Property string
	Reason   Reason
	Expected string
	Actual   string
}

func (v Violation) Error() string {
	return fmt.Sprintf("property %q: %s (expected %s, got %s)", v.Property, v.Reason, v.Expected, v.Actual)
}

// Validate checks set against every expectation and returns all violations.
// Properties not named by any expectation are ignored.
func Validate(set *prop.Set, expectations []Expectation, checkDefaults bool) []Violation {
	var out []Violation
	for _, exp := range expectations {
		out = append(out, check(set, exp, checkDefaults)...)
	}
	return out
}

func check(set *prop.Set, exp Expectation, checkDefaults bool) []Violation {
	violation := func(r Reason, expected, actual string) Violation {
		return Violation{Property: exp.Name, Reason: r, Expected: expected, Actual: actual}
	}

	e, err := set.Entry(exp.Name)
	if err != nil {
		return []Violation{violation(ReasonMissing, "declared", "absent")}
	}
	if e.Kind() != exp.Kind {
		return []Violation{violation(ReasonKindMismatch, exp.Kind.String(), e.Kind().String())}
	}

	n, err := e.Dimension()
	if err != nil {
		return []Violation{violation(ReasonUnreadable, "dimension", err.Error())}
	}

	var out []Violation
	switch {
	case exp.Dimension > 0 && n != exp.Dimension:
		out = append(out, violation(ReasonDimensionMismatch, fmt.Sprint(exp.Dimension), fmt.Sprint(n)))
	case exp.Dimension == 0 && exp.Required && n < 1:
		out = append(out, violation(ReasonEmpty, "at least 1 value", "0"))
	}

	if checkDefaults && exp.Default != nil {
		if v, ok := checkDefault(e, exp, n); !ok {
			out = append(out, v)
		}
	}
	return out
}

func checkDefault(e *prop.Entry, exp Expectation, n int) (Violation, bool) {
	violation := func(r Reason, expected, actual string) Violation {
		return Violation{Property: exp.Name, Reason: r, Expected: expected, Actual: actual}
	}

	want, err := prop.ParseDefault(exp.Kind, exp.Dimension, *exp.Default)
	if err != nil {
		return violation(ReasonInvalidExpectation, *exp.Default, err.Error()), false
	}
	if n != len(want) {
		return violation(ReasonDefaultMismatch,
			fmt.Sprintf("%d default values", len(want)), fmt.Sprintf("%d values", n)), false
	}
	for i, w := range want {
		got, err := e.Get(i)
		if err != nil {
			return violation(ReasonUnreadable, fmt.Sprintf("value %d", i), err.Error()), false
		}
		if !got.Equal(w) {
			return violation(ReasonDefaultMismatch,
				fmt.Sprintf("[%d]=%q", i, w.String()), fmt.Sprintf("[%d]=%q", i, got.String())), false
		}
	}
	return Violation{}, true
}
