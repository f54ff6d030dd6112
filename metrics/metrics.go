// Package metrics exposes Prometheus instrumentation for a pircbot
// client: outbound queue depth, dispatch volume, DCC session count, and
// connection state. Wiring these into a running client is left to the
// caller, since the core itself has no opinion on a metrics registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors groups the gauges/counters a caller registers against its
// own prometheus.Registerer.
type Collectors struct {
	OutboundQueueDepth prometheus.Gauge
	DispatchEventsTotal *prometheus.CounterVec
	DccSessionsActive  prometheus.Gauge
	ConnectionUp       prometheus.Gauge
}

// NewCollectors constructs the collector set, namespaced under pircbot.
func NewCollectors() *Collectors {
	return &Collectors{
		OutboundQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pircbot",
			Name:      "outbound_queue_depth",
			Help:      "Number of lines currently waiting in the outbound queue.",
		}),
		DispatchEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pircbot",
			Name:      "dispatch_events_total",
			Help:      "Total events routed through the handler registry, by command.",
		}, []string{"command"}),
		DccSessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pircbot",
			Name:      "dcc_sessions_active",
			Help:      "Number of DCC transfer/chat sessions currently tracked.",
		}),
		ConnectionUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pircbot",
			Name:      "connection_up",
			Help:      "1 if the client currently has a live server connection, else 0.",
		}),
	}
}

// MustRegister registers every collector against reg.
func (c *Collectors) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(c.OutboundQueueDepth, c.DispatchEventsTotal, c.DccSessionsActive, c.ConnectionUp)
}
