package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters exported on /metrics.
type Metrics struct {
	registry  *prometheus.Registry
	inspected *prometheus.CounterVec
	dropped   prometheus.Counter
	renders   *prometheus.CounterVec
}

// NewMetrics registers the editorschema counters on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		inspected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "editorschema_schemas_inspected_total",
				Help: "Total number of schemas inspected through the API",
			},
			[]string{"endpoint"},
		),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "editorschema_components_dropped_total",
			Help: "Total number of invalid component entries dropped",
		}),
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "editorschema_page_renders_total",
				Help: "Total number of page renders",
			},
			[]string{"route"},
		),
	}
	m.registry.MustRegister(m.inspected, m.dropped, m.renders)
	return m
}

// Registry exposes the prometheus registry backing the counters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) schemaInspected(endpoint string, dropped int) {
	m.inspected.WithLabelValues(endpoint).Inc()
	if dropped > 0 {
		m.dropped.Add(float64(dropped))
	}
}

func (m *Metrics) pageRendered(route string) {
	m.renders.WithLabelValues(route).Inc()
}
