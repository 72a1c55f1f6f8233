package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exports request metrics in the Prometheus text format.
// Each Collector owns its registry so several servers can live in one process.
type Collector struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

// NewCollector creates a Collector with Go runtime and process collectors.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apptintent_requests_total",
				Help: "Total number of parse requests by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apptintent_request_duration_seconds",
				Help:    "Duration of parse requests in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15},
			},
			[]string{"source"},
		),
		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "apptintent_requests_inflight",
			Help: "Number of parse requests being handled",
		}),
	}
}

// Begin marks a request as in flight.
func (c *Collector) Begin() {
	c.inflight.Inc()
}

// Observe records a finished request. Outcome is a parse status or an error code.
func (c *Collector) Observe(source, outcome string, duration time.Duration) {
	c.inflight.Dec()
	c.requests.WithLabelValues(source, outcome).Inc()
	c.duration.WithLabelValues(source).Observe(duration.Seconds())
}

// Handler serves the registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry returns the underlying registry, for tests and extra collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
