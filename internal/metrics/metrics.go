// Package metrics exposes Prometheus counters and gauges for the engine,
// grounded on Tim275-oms's common/metrics package but scoped to the
// broker-client domain (messages, acks, discovery) instead of HTTP/gRPC
// request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine holds the counters and gauges a single engine instance updates
// over its lifetime, plus the private Registry they're registered against.
// Counters are labeled by participant role so one engine hosting several
// participants doesn't need separate Engine values per participant.
type Engine struct {
	Registry *prometheus.Registry

	MessagesConsumed  *prometheus.CounterVec
	MessagesPublished *prometheus.CounterVec
	MessagesAcked     *prometheus.CounterVec
	MessagesNacked    *prometheus.CounterVec
	DiscoveryTicks    prometheus.Counter
	Connected         prometheus.Gauge
}

// New builds a fresh, private Registry and registers a full set of metrics
// against it — not the global DefaultRegisterer — so that constructing more
// than one Engine (e.g. one per test, or one per process hosting several
// participant engines) never collides on duplicate metric names. A host
// that wants these exposed over HTTP serves Engine.Registry with
// promhttp.HandlerFor instead of promhttp.Handler.
func New(namespace string) *Engine {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Engine{
		Registry: reg,
		MessagesConsumed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "msgflo_" + namespace + "_messages_consumed_total",
				Help: "Total number of inbound messages delivered to handlers.",
			},
			[]string{"role"},
		),
		MessagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "msgflo_" + namespace + "_messages_published_total",
				Help: "Total number of outbound messages published.",
			},
			[]string{"role"},
		),
		MessagesAcked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "msgflo_" + namespace + "_messages_acked_total",
				Help: "Total number of inbound messages acknowledged.",
			},
			[]string{"role"},
		),
		MessagesNacked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "msgflo_" + namespace + "_messages_nacked_total",
				Help: "Total number of inbound messages rejected or failed.",
			},
			[]string{"role"},
		),
		DiscoveryTicks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "msgflo_" + namespace + "_discovery_ticks_total",
				Help: "Total number of discovery announcements published.",
			},
		),
		Connected: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "msgflo_" + namespace + "_connected",
				Help: "1 if the transport is currently connected, 0 otherwise.",
			},
		),
	}
}
