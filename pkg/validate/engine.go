// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package validate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/holomush/propsuite/pkg/prop"
)

// CodeFailed is the oops code of Report.Err.
const CodeFailed = "VALIDATION_FAILED"

// Policy selects what a caller does with violations.
type Policy string

// Policies.
const (
	PolicyAdvisory Policy = "advisory"
	PolicyStrict   Policy = "strict"
)

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	return p == PolicyAdvisory || p == PolicyStrict
}

// ViolationsTotal counts violations by reason.
// Use RegisterMetrics to register this with a Prometheus registry.
var ViolationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "propsuite_validation_violations_total",
		Help: "Total number of property validation violations",
	},
	[]string{"reason"},
)

// RunsTotal counts validation runs by checkpoint and outcome.
var RunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "propsuite_validation_runs_total",
		Help: "Total number of property validation runs",
	},
	[]string{"checkpoint", "result"},
)

// RegisterMetrics registers validation metrics with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ViolationsTotal)
	reg.MustRegister(RunsTotal)
}

// Report is the outcome of one validation run.
type Report struct {
	Checkpoint string
	SetID      ulid.ULID
	Checked    int
	Violations []Violation
}

// OK reports whether no violation was found.
func (r Report) OK() bool { return len(r.Violations) == 0 }

// Err joins all violations into one error, or returns nil.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Violations))
	for i, v := range r.Violations {
		errs[i] = v
	}
	return oops.Code(CodeFailed).
		With("checkpoint", r.Checkpoint).
		With("set", r.SetID.String()).
		With("violations", len(r.Violations)).
		Wrap(errors.Join(errs...))
}

// Enforce returns Err under PolicyStrict and nil otherwise.
func (r Report) Enforce(p Policy) error {
	if p == PolicyStrict {
		return r.Err()
	}
	return nil
}

// Engine runs validations and reports violations to a logger.
type Engine struct {
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger violations are written to.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine returns an Engine logging to slog.Default unless configured.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run validates set at a named checkpoint such as "describe" or
// "createInstance", logging each violation.
func (e *Engine) Run(ctx context.Context, checkpoint string, set *prop.Set, expectations []Expectation, checkDefaults bool) Report {
	report := Report{
		Checkpoint: checkpoint,
		SetID:      set.ID(),
		Checked:    len(expectations),
		Violations: Validate(set, expectations, checkDefaults),
	}

	for _, v := range report.Violations {
		ViolationsTotal.WithLabelValues(string(v.Reason)).Inc()
		e.logger.WarnContext(ctx, "property validation failed",
			"checkpoint", checkpoint,
			"set", report.SetID.String(),
			"property", v.Property,
			"reason", string(v.Reason),
			"expected", v.Expected,
			"actual", v.Actual,
		)
	}

	result := "pass"
	if !report.OK() {
		result = "fail"
	}
	RunsTotal.WithLabelValues(checkpoint, result).Inc()
	e.logger.DebugContext(ctx, "property validation finished",
		"checkpoint", checkpoint,
		"set", report.SetID.String(),
		"checked", report.Checked,
		"violations", len(report.Violations),
	)
	return report
}
