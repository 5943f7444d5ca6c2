// Package metrics holds the agent's Prometheus metrics and their registry.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kube_log_annotator"

type Metrics struct {
	registry *prometheus.Registry

	Lines          *prometheus.CounterVec
	Files          prometheus.Gauge
	Rotations      prometheus.Counter
	TruncatedLines prometheus.Counter
	StreamDropped  prometheus.Counter
}

// New builds a fresh registry so tests and multiple apps do not collide on the
// global one.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_total",
			Help:      "Log lines read from container log files.",
		}, []string{"annotated"}),
		Files: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tailed_files",
			Help:      "Container log files currently tailed.",
		}),
		Rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_rotations_total",
			Help:      "Log files replaced at the same path.",
		}),
		TruncatedLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "truncated_lines_total",
			Help:      "Log lines cut at the maximum line size.",
		}),
		StreamDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_dropped_total",
			Help:      "Records not delivered to slow stream subscribers.",
		}),
	}

	m.registry.MustRegister(
		m.Lines,
		m.Files,
		m.Rotations,
		m.TruncatedLines,
		m.StreamDropped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Line returns the line counter for annotated or unannotated records.
func (m *Metrics) Line(annotated bool) prometheus.Counter {
	return m.Lines.WithLabelValues(strconv.FormatBool(annotated))
}

// RegisterCachedPods exposes the size of the pod cache, read on every scrape.
func (m *Metrics) RegisterCachedPods(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cached_pods",
		Help:      "Pods held in the informer cache.",
	}, func() float64 { return float64(count()) }))
}

func (m *Metrics) RegisterStreamSubscribers(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_subscribers",
		Help:      "Open log stream connections.",
	}, func() float64 { return float64(count()) }))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
