// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/holomush/propsuite/pkg/validate"
)

var (
	okColor      = color.New(color.FgGreen, color.Bold)
	failColor    = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	subtleColor  = color.New(color.Faint)
	headingColor = color.New(color.Bold)
)

// printReport writes a human-readable validation report. Under the
// advisory policy violations are shown as warnings.
func printReport(w io.Writer, subject string, r validate.Report, policy validate.Policy) {
	headingColor.Fprintf(w, "%s", subject)
	subtleColor.Fprintf(w, " [%s, set %s]\n", r.Checkpoint, r.SetID)

	if r.OK() {
		okColor.Fprint(w, "  ok")
		fmt.Fprintf(w, " %d expectations met\n", r.Checked)
		return
	}

	mark, c := "FAIL", failColor
	if policy != validate.PolicyStrict {
		mark, c = "WARN", warnColor
	}
	for _, v := range r.Violations {
		c.Fprintf(w, "  %s", mark)
		fmt.Fprintf(w, " %s: %s", v.Property, v.Reason)
		subtleColor.Fprintf(w, " (expected %s, got %s)\n", v.Expected, v.Actual)
	}
	fmt.Fprintf(w, "  %d violations across %d expectations\n", len(r.Violations), r.Checked)
}
