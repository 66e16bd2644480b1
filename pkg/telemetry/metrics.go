package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "earthcontrol"

// Metrics holds the dashboard's prometheus collectors on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	SignalsPublished *prometheus.CounterVec
	WidgetsMounted   *prometheus.CounterVec
	LayoutApplies    prometheus.Counter
	PagesActive      prometheus.Gauge
	PagesEvicted     prometheus.Counter
	RenderDuration   *prometheus.HistogramVec
	HTTPRequests     *prometheus.CounterVec
	WSClients        prometheus.Gauge
	RemoteRefreshes  prometheus.Counter
}

// NewMetrics registers a fresh collector set, including the Go and process
// collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SignalsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "signals_published_total",
			Help:      "Dashboard signals published, by signal.",
		}, []string{"signal"}),
		WidgetsMounted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "widget",
			Name:      "mounted_total",
			Help:      "Widgets inserted into a page grid, by widget.",
		}, []string{"widget"}),
		LayoutApplies: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "applies_total",
			Help:      "Full-width layout override applications.",
		}),
		PagesActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "page",
			Name:      "active",
			Help:      "Pages currently held in memory.",
		}),
		PagesEvicted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "page",
			Name:      "evicted_total",
			Help:      "Pages dropped to stay under the page limit.",
		}),
		RenderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "page",
			Name:      "render_seconds",
			Help:      "Time spent rendering page markup.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"kind"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"route", "code"}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Connected page event websocket clients.",
		}),
		RemoteRefreshes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "remote_refreshes_total",
			Help:      "Refresh signals received from other replicas.",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRender records a render duration.
func (m *Metrics) ObserveRender(kind string, started time.Time) {
	if m == nil {
		return
	}
	m.RenderDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// Signal counts a published signal.
func (m *Metrics) Signal(name string) {
	if m == nil {
		return
	}
	m.SignalsPublished.WithLabelValues(name).Inc()
}

// WidgetMounted counts a widget insertion.
func (m *Metrics) WidgetMounted(id string) {
	if m == nil {
		return
	}
	m.WidgetsMounted.WithLabelValues(id).Inc()
}

// LayoutApplied counts an override application.
func (m *Metrics) LayoutApplied() {
	if m == nil {
		return
	}
	m.LayoutApplies.Inc()
}
