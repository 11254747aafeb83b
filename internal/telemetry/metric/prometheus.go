package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all application metrics.
type Registry struct {
	// Message metrics
	MessagesProcessed *prometheus.CounterVec
	UpdatesApplied    *prometheus.CounterVec
	ConnectionErrors  prometheus.Counter

	// Population metrics
	RoomsActive      prometheus.Gauge
	ClientsConnected prometheus.Gauge

	// Latency metrics
	UpdateDuration prometheus.Histogram

	// Replication metrics
	BusPublishes  prometheus.Counter
	BusDeliveries prometheus.Counter

	reg *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all collectors
// registered, including the standard Go and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	r := &Registry{
		MessagesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docmesh",
			Name:      "messages_processed_total",
			Help:      "Total inbound messages processed, by message kind.",
		}, []string{"kind"}),
		UpdatesApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docmesh",
			Name:      "updates_applied_total",
			Help:      "Total document updates applied, by update mode.",
		}, []string{"mode"}),
		ConnectionErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "docmesh",
			Name:      "connection_errors_total",
			Help:      "Total connection-level errors (decode failures, broken sends).",
		}),
		RoomsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "docmesh",
			Name:      "rooms_active",
			Help:      "Number of rooms with at least one local member.",
		}),
		ClientsConnected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "docmesh",
			Name:      "clients_connected",
			Help:      "Number of clients connected to this instance.",
		}),
		UpdateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docmesh",
			Name:      "update_duration_seconds",
			Help:      "Time spent applying one document update.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		BusPublishes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "docmesh",
			Name:      "bus_publishes_total",
			Help:      "Total updates published to the replication bus.",
		}),
		BusDeliveries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "docmesh",
			Name:      "bus_deliveries_total",
			Help:      "Total updates delivered from the replication bus.",
		}),
		reg: reg,
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Handler returns the HTTP handler for the metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
