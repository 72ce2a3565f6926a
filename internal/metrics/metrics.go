// Prometheus collectors for the console simulation
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "responseops_"

// Collectors bundles the simulation metrics behind one private registry so
// that every simulator instance (tests included) registers cleanly.
type Collectors struct {
	registry *prometheus.Registry

	Ticks            prometheus.Counter
	IncidentsCreated *prometheus.CounterVec
	Dispatches       *prometheus.CounterVec
	AnomaliesRaised  *prometheus.CounterVec
	OpenAlerts       prometheus.Gauge
	TelemetryRows    prometheus.Counter
	WriterErrors     prometheus.Counter
}

// New builds and registers the collector set.
func New() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "ticks_total",
			Help: "Total simulation ticks processed",
		}),
		IncidentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "incidents_created_total",
			Help: "Total incidents created by category",
		}, []string{"type"}),
		Dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "dispatches_total",
			Help: "Total dispatch attempts by result",
		}, []string{"result"}),
		AnomaliesRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "anomalies_raised_total",
			Help: "Total new anomaly alerts by severity",
		}, []string{"severity"}),
		OpenAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "open_alerts",
			Help: "Currently open anomaly alerts",
		}),
		TelemetryRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "telemetry_rows_total",
			Help: "Total telemetry rows emitted to writers",
		}),
		WriterErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "writer_errors_total",
			Help: "Total telemetry writer failures",
		}),
	}
	c.registry.MustRegister(
		c.Ticks,
		c.IncidentsCreated,
		c.Dispatches,
		c.AnomaliesRaised,
		c.OpenAlerts,
		c.TelemetryRows,
		c.WriterErrors,
	)
	return c
}

// Handler exposes the registry in Prometheus text format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
