// Package metrics backs an in-process Prometheus registry counting
// build invocations and recording their duration (spec §9 ambient
// instrumentation). Nothing in this CLI serves the registry over HTTP
// (no web surface, per Non-goals); --dump-metrics renders it as text
// for the operator and tests scrape it with testutil.
package metrics

import (
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var (
	DefaultCollector *Collector
	once             sync.Once
)

// Collector counts invocations by scenario/kind/outcome and records
// their wall-clock duration.
type Collector struct {
	registry *prometheus.Registry

	invocationsTotal *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	scenariosFailed  prometheus.Counter
}

// NewCollector builds a fresh, independently registered Collector.
// Tests construct their own instance rather than sharing the process
// global so assertions never race across packages.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	invocationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildbench_invocations_total",
			Help: "Total number of build invocations by scenario, kind, and outcome",
		},
		[]string{"scenario", "kind", "outcome"},
	)

	invocationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buildbench_invocation_duration_seconds",
			Help:    "Wall-clock duration of build invocations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5s to ~17min
		},
		[]string{"scenario", "kind"},
	)

	scenariosFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "buildbench_scenarios_failed_total",
		Help: "Total number of ScenarioExecutions that ended with a failure",
	})

	registry.MustRegister(invocationsTotal, invocationDuration, scenariosFailed)

	return &Collector{
		registry:           registry,
		invocationsTotal:   invocationsTotal,
		invocationDuration: invocationDuration,
		scenariosFailed:    scenariosFailed,
	}
}

// InitGlobal lazily constructs the process-wide DefaultCollector used
// by the package-level convenience functions.
func InitGlobal() {
	once.Do(func() {
		DefaultCollector = NewCollector()
	})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordInvocation accounts for one completed Invocation (spec §4.8's
// per-invocation loop): a counter increment labeled by outcome, plus a
// duration observation for successful ones (a failed invocation's
// empty-cell timing would skew the histogram, mirroring the
// Aggregator's own "not counted toward mean/median/stddev" rule).
func (c *Collector) RecordInvocation(scenarioName, kind string, success bool, durationSeconds float64) {
	outcome := "success"
	if !success {
		outcome = "failed"
	}
	c.invocationsTotal.WithLabelValues(scenarioName, kind, outcome).Inc()
	if success {
		c.invocationDuration.WithLabelValues(scenarioName, kind).Observe(durationSeconds)
	}
}

// RecordScenarioFailure accounts for one ScenarioExecution ending with
// a failure (spec §4.8 step 3's "remember the first failure").
func (c *Collector) RecordScenarioFailure() {
	c.scenariosFailed.Inc()
}

// Dump writes the registry's metric families to w in Prometheus text
// exposition format, for --dump-metrics.
func (c *Collector) Dump(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// RecordInvocation records against the process-wide DefaultCollector,
// a no-op until InitGlobal has run.
func RecordInvocation(scenarioName, kind string, success bool, durationSeconds float64) {
	if DefaultCollector != nil {
		DefaultCollector.RecordInvocation(scenarioName, kind, success, durationSeconds)
	}
}

// RecordScenarioFailure records against the process-wide DefaultCollector.
func RecordScenarioFailure() {
	if DefaultCollector != nil {
		DefaultCollector.RecordScenarioFailure()
	}
}
