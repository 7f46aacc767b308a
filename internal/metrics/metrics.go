// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tripsplit"

// Settlement outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeMissingRate = "missing_rate"
	OutcomeError       = "error"
)

// Metrics holds every collector the server updates.
type Metrics struct {
	registry *prometheus.Registry

	Settlements *prometheus.CounterVec
	Transfers   prometheus.Histogram
	RPCDuration *prometheus.HistogramVec
	RateFetches *prometheus.CounterVec
}

// New creates the collectors on a fresh registry, along with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Settlements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Settlement computations by outcome.",
		}, []string{"outcome"}),
		Transfers: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_transfers",
			Help:      "Number of transfers produced per settlement.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		RPCDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Duration of RPC calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
		RateFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_fetch_total",
			Help:      "Exchange rate fetches by provider and outcome.",
		}, []string{"provider", "outcome"}),
	}
}

// ObserveSettlement records one settlement attempt.
func (m *Metrics) ObserveSettlement(outcome string, transfers int) {
	m.Settlements.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		m.Transfers.Observe(float64(transfers))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
