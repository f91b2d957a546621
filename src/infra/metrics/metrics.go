// Package metrics exposes prometheus counters for the scoring core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements ports.CoreMetrics on a dedicated prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	evaluationsSubmitted prometheus.Counter
	aggregationRuns      prometheus.Counter
	aggregationFailures  prometheus.Counter
	rebalanceRuns        prometheus.Counter
	leaderboardComputes  prometheus.Counter
}

// New creates the metrics set with its own registry, including the
// standard Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		evaluationsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hackboard_evaluations_submitted_total",
			Help: "Number of final evaluations submitted by judges.",
		}),
		aggregationRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hackboard_aggregation_runs_total",
			Help: "Number of completed score aggregation runs.",
		}),
		aggregationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hackboard_aggregation_failures_total",
			Help: "Number of failed background aggregation runs.",
		}),
		rebalanceRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hackboard_rebalance_runs_total",
			Help: "Number of applied assignment rebalance runs.",
		}),
		leaderboardComputes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hackboard_leaderboard_computes_total",
			Help: "Number of leaderboard computation runs.",
		}),
	}
	reg.MustRegister(
		m.evaluationsSubmitted,
		m.aggregationRuns,
		m.aggregationFailures,
		m.rebalanceRuns,
		m.leaderboardComputes,
	)
	return m
}

func (m *Metrics) EvaluationSubmitted() { m.evaluationsSubmitted.Inc() }
func (m *Metrics) AggregationRun()      { m.aggregationRuns.Inc() }
func (m *Metrics) AggregationFailure()  { m.aggregationFailures.Inc() }
func (m *Metrics) RebalanceRun()        { m.rebalanceRuns.Inc() }
func (m *Metrics) LeaderboardComputed() { m.leaderboardComputes.Inc() }

// Handler serves the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Nop is a no-op ports.CoreMetrics for tests.
type Nop struct{}

func (Nop) EvaluationSubmitted() {}
func (Nop) AggregationRun()      {}
func (Nop) AggregationFailure()  {}
func (Nop) RebalanceRun()        {}
func (Nop) LeaderboardComputed() {}
