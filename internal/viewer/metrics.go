package viewer

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sizereport/internal/output"
)

// Metrics holds the Prometheus metrics of one viewer
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	reportLoadsTotal *prometheus.CounterVec
	reportTotalBytes prometheus.Gauge
	reportViolations prometheus.Gauge
	groupSelfBytes   *prometheus.GaugeVec
	groupSharedBytes *prometheus.GaugeVec
}

// NewMetrics creates metrics on a private registry so that several viewers
// can live in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sizereport_http_requests_total",
				Help: "Total number of viewer HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sizereport_http_request_duration_seconds",
				Help:    "Viewer HTTP request latency in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "route"},
		),
		reportLoadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sizereport_report_loads_total",
				Help: "Reports loaded by the viewer, by source",
			},
			[]string{"source"},
		),
		reportTotalBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sizereport_total_bytes",
				Help: "Total output size of the last served report",
			},
		),
		reportViolations: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sizereport_threshold_violations",
				Help: "Threshold violations in the last served report",
			},
		),
		groupSelfBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sizereport_group_self_bytes",
				Help: "Self size per report group in the last served report",
			},
			[]string{"group"},
		),
		groupSharedBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sizereport_group_shared_bytes",
				Help: "Shared size per report group in the last served report",
			},
			[]string{"group"},
		),
	}
}

// ObserveRequest records one handled request
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveReport updates the report gauges from a loaded report
func (m *Metrics) ObserveReport(source string, r *output.Report) {
	m.reportLoadsTotal.WithLabelValues(source).Inc()
	m.reportTotalBytes.Set(float64(r.SizeSummary.TotalBytes))
	m.reportViolations.Set(float64(r.Violations()))

	m.groupSelfBytes.Reset()
	m.groupSharedBytes.Reset()
	for _, g := range r.SizeSummary.Groups {
		m.groupSelfBytes.WithLabelValues(g.Name).Set(float64(g.SelfBytes))
		m.groupSharedBytes.WithLabelValues(g.Name).Set(float64(g.SharedBytes))
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
