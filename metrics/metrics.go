// Package metrics provides the campaign-level prometheus collectors,
// a thin registerer wrapper owning a set of named collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Campaign holds every collector a single campaign's coordinator and
// traversal pool update during a run.
type Campaign struct {
	Registry prometheus.Registerer

	SignalsProcessed  *prometheus.CounterVec // by kind
	FindingsEmitted   *prometheus.CounterVec // by kind
	DirectivesIssued  *prometheus.CounterVec // by kind
	WeightEvictions   prometheus.Counter
	CoveragePercent   prometheus.Gauge
	SubspacesAborted  prometheus.Counter
	SubspacesSolved   prometheus.Counter
	EpochDuration     prometheus.Histogram
	ActiveTraversals  prometheus.Gauge
	GuestCallDuration prometheus.Histogram
}

// NewCampaign registers and returns a fresh collector set for one campaign.
// Each campaign gets its own Campaign so that concurrently running
// campaigns (e.g. in a test suite) never collide on metric names when
// registered against independent registries.
func NewCampaign(reg prometheus.Registerer) *Campaign {
	c := &Campaign{
		Registry: reg,
		SignalsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "harness_signals_processed_total",
			Help: "Signals folded into directives by the coordinator, by kind.",
		}, []string{"kind"}),
		FindingsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "harness_findings_emitted_total",
			Help: "Findings emitted, by kind.",
		}, []string{"kind"}),
		DirectivesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "harness_directives_issued_total",
			Help: "Directives issued by the coordinator, by kind.",
		}, []string{"kind"}),
		WeightEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harness_weight_table_evictions_total",
			Help: "Weight table cells evicted by the LRU policy.",
		}),
		CoveragePercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "harness_coverage_percent",
			Help: "Fraction of reachable coverage targets hit or proven unreachable.",
		}),
		SubspacesAborted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harness_solver_subspaces_aborted_total",
			Help: "Input-domain subspaces proved UNSAT by the solver.",
		}),
		SubspacesSolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harness_solver_subspaces_solved_total",
			Help: "Input-domain subspaces that yielded at least one vector.",
		}),
		EpochDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "harness_epoch_duration_seconds",
			Help: "Wall time to fold one epoch's signals into directives.",
		}),
		ActiveTraversals: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "harness_active_traversals",
			Help: "Number of traversal workers currently running.",
		}),
		GuestCallDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "harness_guest_call_duration_seconds",
			Help: "Wall time of a single guest invocation.",
		}),
	}
	for _, col := range []prometheus.Collector{
		c.SignalsProcessed, c.FindingsEmitted, c.DirectivesIssued,
		c.WeightEvictions, c.CoveragePercent, c.SubspacesAborted,
		c.SubspacesSolved, c.EpochDuration, c.ActiveTraversals,
		c.GuestCallDuration,
	} {
		// Best effort: a collector already registered under the same name
		// (e.g. a shared process-wide registry reused across campaigns in
		// tests) is not a fatal condition for metrics, which are a
		// diagnostic aid rather than part of verification correctness.
		_ = reg.Register(col)
	}
	return c
}
