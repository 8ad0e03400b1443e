// Package metrics exposes Prometheus collectors for HTTP traffic, sales and
// imports, and adapts them to core.Recorder.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/stockpos/internal/core"
)

// Metrics holds every collector, registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SalesTotal        prometheus.Counter
	SaleFailuresTotal *prometheus.CounterVec
	SaleItems         prometheus.Histogram
	RevenueTotal      prometheus.Counter

	ImportsTotal    *prometheus.CounterVec
	ImportRowsTotal *prometheus.CounterVec
	ImportsActive   prometheus.GaugeFunc
}

var _ core.Recorder = (*Metrics)(nil)

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors. activeImports, when set, backs the
// active-imports gauge.
func New(prefix string, activeImports func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	m.SalesTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_sales_total",
		Help: "Total number of recorded sales",
	})
	m.SaleFailuresTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_sale_failures_total",
			Help: "Total number of rejected sales by reason",
		},
		[]string{"reason"},
	)
	m.SaleItems = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    prefix + "_sale_items",
		Help:    "Number of lines per recorded sale",
		Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
	})
	m.RevenueTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_revenue_total",
		Help: "Sum of recorded sale totals",
	})

	m.ImportsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_imports_total",
			Help: "Total number of completed imports",
		},
		[]string{"entity"},
	)
	m.ImportRowsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_import_rows_total",
			Help: "Imported rows by entity and outcome",
		},
		[]string{"entity", "outcome"},
	)

	if activeImports != nil {
		m.ImportsActive = factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: prefix + "_imports_active",
			Help: "Imports currently holding a slot",
		}, func() float64 { return float64(activeImports()) })
	}

	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SaleRecorded implements core.Recorder.
func (m *Metrics) SaleRecorded(total decimal.Decimal, items int) {
	m.SalesTotal.Inc()
	m.SaleItems.Observe(float64(items))
	m.RevenueTotal.Add(total.InexactFloat64())
}

// SaleFailed implements core.Recorder.
func (m *Metrics) SaleFailed(reason string) {
	m.SaleFailuresTotal.WithLabelValues(reason).Inc()
}

// ImportFinished implements core.Recorder.
func (m *Metrics) ImportFinished(entity string, imported, failed int) {
	m.ImportsTotal.WithLabelValues(entity).Inc()
	m.ImportRowsTotal.WithLabelValues(entity, "imported").Add(float64(imported))
	m.ImportRowsTotal.WithLabelValues(entity, "failed").Add(float64(failed))
}

// Middleware records request count and latency. The path label is the
// matched chi route pattern, so ids do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}
		labels := []string{r.Method, path, strconv.Itoa(status)}
		m.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		m.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	})
}
