// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package export

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/adaptivecache/vcperf/checkpoint"
	"github.com/adaptivecache/vcperf/vcfmt"
	"github.com/adaptivecache/vcperf/vcmath"
)

// Metrics holds Prometheus gauges for results and comparisons.
// It is meant to be written once per run with WriteTextfile for
// collection by the node exporter.
type Metrics struct {
	registry *prometheus.Registry

	// Per-benchmark values, labeled by checkpoint and benchmark.
	hitRate   *prometheus.GaugeVec
	occupancy *prometheus.GaugeVec
	accesses  *prometheus.GaugeVec

	// Per-checkpoint summaries.
	benchmarks     *prometheus.GaugeVec
	summaryHitRate *prometheus.GaugeVec // labeled by checkpoint and stat
	summaryOcc     *prometheus.GaugeVec

	delta     prometheus.Gauge
	targetMet prometheus.Gauge
	compared  bool
}

// NewMetrics returns a Metrics with its own registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		hitRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vcperf_benchmark_hit_rate_percent",
			Help: "Victim cache hit rate of a benchmark",
		}, []string{"checkpoint", "benchmark"}),
		occupancy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vcperf_benchmark_occupancy_percent",
			Help: "Victim cache occupancy of a benchmark",
		}, []string{"checkpoint", "benchmark"}),
		accesses: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vcperf_benchmark_accesses",
			Help: "Total victim cache accesses of a benchmark",
		}, []string{"checkpoint", "benchmark"}),
		benchmarks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vcperf_checkpoint_benchmarks",
			Help: "Number of benchmarks in a checkpoint",
		}, []string{"checkpoint"}),
		summaryHitRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vcperf_checkpoint_hit_rate_percent",
			Help: "Mean, min, and max hit rate over the benchmarks of a checkpoint",
		}, []string{"checkpoint", "stat"}),
		summaryOcc: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vcperf_checkpoint_occupancy_percent",
			Help: "Mean occupancy over the benchmarks of a checkpoint",
		}, []string{"checkpoint"}),
		delta: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vcperf_comparison_hit_rate_delta_percent",
			Help: "Mean hit rate of the candidate minus mean hit rate of the baseline",
		}),
		targetMet: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vcperf_comparison_target_met",
			Help: "1 if the hit rate delta met the target, 0 otherwise",
		}),
	}
	m.registry.MustRegister(
		m.hitRate,
		m.occupancy,
		m.accesses,
		m.benchmarks,
		m.summaryHitRate,
		m.summaryOcc,
	)
	return m
}

// Gatherer returns the registry holding the observed metrics.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// ObserveResults records the results of one checkpoint.
// Metrics missing from a benchmark are not recorded.
func (m *Metrics) ObserveResults(label string, rs *vcfmt.ResultSet) {
	for _, rec := range rs.Records() {
		if rec.HitRate.Valid {
			m.hitRate.WithLabelValues(label, rec.Name).Set(rec.HitRate.Float64)
		}
		if rec.Occupancy.Valid {
			m.occupancy.WithLabelValues(label, rec.Name).Set(rec.Occupancy.Float64)
		}
		if rec.Accesses.Valid {
			m.accesses.WithLabelValues(label, rec.Name).Set(float64(rec.Accesses.Int64))
		}
	}
	m.observeSummary(label, vcmath.Summarize(rs))
}

func (m *Metrics) observeSummary(label string, s vcmath.Summary) {
	m.benchmarks.WithLabelValues(label).Set(float64(s.Benchmarks))
	if s.HitRate.N > 0 {
		m.summaryHitRate.WithLabelValues(label, "mean").Set(s.HitRate.Mean)
		m.summaryHitRate.WithLabelValues(label, "min").Set(s.HitRate.Min)
		m.summaryHitRate.WithLabelValues(label, "max").Set(s.HitRate.Max)
	}
	if s.Occupancy.N > 0 {
		m.summaryOcc.WithLabelValues(label).Set(s.Occupancy.Mean)
	}
}

// ObserveComparison records the outcome of a comparison.
func (m *Metrics) ObserveComparison(r *checkpoint.Report) {
	// Comparison gauges are only exposed once a comparison ran.
	if !m.compared {
		m.registry.MustRegister(m.delta, m.targetMet)
		m.compared = true
	}
	m.delta.Set(r.Delta)
	if r.TargetMet {
		m.targetMet.Set(1)
	} else {
		m.targetMet.Set(0)
	}
}

// WriteTextfile writes all metrics to path in the Prometheus text
// format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return &WriteError{Dest: path, Err: err}
	}
	return nil
}
