// Package metrics holds the prometheus collectors for the ask pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns its registry so several instances can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	askRequestsTotal *prometheus.CounterVec
	askDuration      prometheus.Histogram
	toolCallsTotal   *prometheus.CounterVec
	modelCallsTotal  *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		askRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ask_requests_total",
				Help:      "Total number of ask requests by outcome",
			},
			[]string{"status"},
		),
		askDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ask_duration_seconds",
				Help:      "End-to-end ask latency in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
		),
		toolCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Tool calls handled by the dispatcher",
			},
			[]string{"tool", "outcome"},
		),
		modelCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_calls_total",
				Help:      "Chat model invocations",
			},
			[]string{"status"},
		),
	}
}

// RecordAsk counts one ask request; status is "ok" or "error".
func (c *Collector) RecordAsk(status string, elapsed time.Duration) {
	c.askRequestsTotal.WithLabelValues(status).Inc()
	c.askDuration.Observe(elapsed.Seconds())
}

func (c *Collector) ToolCall(tool, outcome string) {
	c.toolCallsTotal.WithLabelValues(tool, outcome).Inc()
}

func (c *Collector) ModelCall(status string) {
	c.modelCallsTotal.WithLabelValues(status).Inc()
}

// Handler exposes the registry in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
