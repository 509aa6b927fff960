// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package suite

import "github.com/prometheus/client_golang/prometheus"

// Calls counts Suite calls by operation and resulting status.
// Use RegisterMetrics to register this with a Prometheus registry.
var Calls = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "propsuite_suite_calls_total",
		Help: "Total number of property suite calls",
	},
	[]string{"op", "status"},
)

// Panics counts Suite calls that ended in a recovered panic.
var Panics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "propsuite_suite_panics_total",
		Help: "Total number of property suite calls that panicked",
	},
	[]string{"op"},
)

// RegisterMetrics registers suite metrics with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Calls)
	reg.MustRegister(Panics)
}
