// Package metrics records run statistics and writes them as a Prometheus text file.
package metrics

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Collector captures metrics for a run. A nil Collector ignores every observation.
type Collector struct {
	registry           *prometheus.Registry
	suitesTotal        *prometheus.CounterVec
	stepsTotal         *prometheus.CounterVec
	assertionsTotal    *prometheus.CounterVec
	timeoutsTotal      prometheus.Counter
	invocationDuration *prometheus.HistogramVec
	runInfo            *prometheus.GaugeVec
}

// NewCollector initializes a new metrics registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	collector := &Collector{
		registry: registry,
		suitesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "weave_test_suites_total", Help: "Total number of suites by overall result"},
			[]string{"result"},
		),
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "weave_test_steps_total", Help: "Total number of steps by result"},
			[]string{"result"},
		),
		assertionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "weave_test_assertions_total", Help: "Total number of assertions"},
			[]string{"success"},
		),
		timeoutsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "weave_test_timeouts_total", Help: "Invocations stopped by their step timeout"},
		),
		invocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weave_test_invocation_duration_seconds",
				Help:    "Command invocation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"suite", "result"},
		),
		runInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "weave_test_run_info", Help: "Run metadata for traceability"},
			[]string{"run_id"},
		),
	}

	registry.MustRegister(
		collector.suitesTotal,
		collector.stepsTotal,
		collector.assertionsTotal,
		collector.timeoutsTotal,
		collector.invocationDuration,
		collector.runInfo,
	)
	return collector
}

// ObserveRun records the run identifier.
func (c *Collector) ObserveRun(runID string) {
	if c == nil {
		return
	}
	c.runInfo.WithLabelValues(runID).Set(1)
}

// ObserveSuite records a suite outcome.
func (c *Collector) ObserveSuite(result string) {
	if c == nil {
		return
	}
	c.suitesTotal.WithLabelValues(result).Inc()
}

// ObserveStep records a step outcome.
func (c *Collector) ObserveStep(result string) {
	if c == nil {
		return
	}
	c.stepsTotal.WithLabelValues(result).Inc()
}

// ObserveAssertion records one PASS or FAIL marker.
func (c *Collector) ObserveAssertion(success bool) {
	if c == nil {
		return
	}
	c.assertionsTotal.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// ObserveTimeout records an invocation that exceeded its budget.
func (c *Collector) ObserveTimeout() {
	if c == nil {
		return
	}
	c.timeoutsTotal.Inc()
}

// ObserveInvocation records how long one command invocation ran.
func (c *Collector) ObserveInvocation(suite, result string, duration time.Duration) {
	if c == nil {
		return
	}
	c.invocationDuration.WithLabelValues(suite, result).Observe(duration.Seconds())
}

// Write writes all metrics to a Prometheus text file.
func (c *Collector) Write(path string) error {
	if c == nil {
		return nil
	}
	metricFamilies, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range metricFamilies {
		if err := enc.Encode(family); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
