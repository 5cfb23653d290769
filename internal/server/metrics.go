package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "gateway"

// Upload and retrieval outcome labels.
const (
	uploadSucceeded = "success"
	uploadRejected  = "rejected" // 400: not multipart or no file part
	uploadFailed    = "failure"  // 500

	retrievalHit   = "hit"
	retrievalMiss  = "miss"
	retrievalError = "error"
)

// Metrics owns a private Prometheus registry holding HTTP and object
// transfer metrics. Middleware and the Observe methods are no-ops on a nil
// receiver.
type Metrics struct {
	reg      *prometheus.Registry
	inflight prometheus.Gauge
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	uploads        *prometheus.CounterVec
	uploadBytes    prometheus.Counter
	retrievals     *prometheus.CounterVec
	retrievalBytes prometheus.Counter
}

// NewMetrics registers all collectors on a fresh registry, together with
// the Go runtime and process collectors.
func NewMetrics(version string) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		reg: reg,
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of inflight HTTP requests.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests processed, partitioned by status code and method.",
		}, []string{"code", "method"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Histogram of latencies for HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code", "method"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "uploads_total",
			Help:      "Upload attempts by outcome.",
		}, []string{"result"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "upload_bytes_total",
			Help:      "Bytes written to storage by successful uploads.",
		}),
		retrievals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "retrievals_total",
			Help:      "Retrieval requests by outcome.",
		}, []string{"result"}),
		retrievalBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "retrieval_bytes_total",
			Help:      "Bytes streamed to clients by retrievals.",
		}),
	}

	buildInfo := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "build_info",
		Help:        "Build information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
	buildInfo.Set(1)

	reg.MustRegister(
		m.inflight, m.requests, m.latency,
		m.uploads, m.uploadBytes, m.retrievals, m.retrievalBytes,
		buildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Middleware records inflight, count and latency for every request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.inflight.Inc()
		defer m.inflight.Dec()

		rec := wrapResponseWriter(w)
		next.ServeHTTP(rec, r)

		code := strconv.Itoa(rec.status)
		m.requests.WithLabelValues(code, r.Method).Inc()
		m.latency.WithLabelValues(code, r.Method).Observe(time.Since(start).Seconds())
	})
}

// ObserveUpload counts one upload outcome and, on success, its size.
func (m *Metrics) ObserveUpload(result string, bytes int64) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
	if result == uploadSucceeded {
		m.uploadBytes.Add(float64(bytes))
	}
}

// ObserveRetrieval counts one retrieval outcome and the bytes streamed.
func (m *Metrics) ObserveRetrieval(result string, bytes int64) {
	if m == nil {
		return
	}
	m.retrievals.WithLabelValues(result).Inc()
	if bytes > 0 {
		m.retrievalBytes.Add(float64(bytes))
	}
}
