package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	storeOpDuration *prometheus.HistogramVec
	mirrorQueueLag  prometheus.Histogram
	mirrorFailures  prometheus.Counter
	rankingsTotal   prometheus.Counter
}

// NewMetricsService registers the core collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	storeOpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_operation_duration_seconds",
		Help:    "Duration of local store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	mirrorQueueLag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mirror_replication_lag_seconds",
		Help:    "Time between a local commit and its remote replication",
		Buckets: prometheus.DefBuckets,
	})

	mirrorFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mirror_replication_failures_total",
		Help: "Replication attempts that exhausted their retries",
	})

	rankingsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "team_rankings_total",
		Help: "Number of suggested-team computations",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storeOpDuration, mirrorQueueLag, mirrorFailures, rankingsTotal, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		storeOpDuration: storeOpDuration,
		mirrorQueueLag:  mirrorQueueLag,
		mirrorFailures:  mirrorFailures,
		rankingsTotal:   rankingsTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	m.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveStoreOp records one local store operation.
func (m *MetricsService) ObserveStoreOp(op string, duration time.Duration) {
	if m == nil {
		return
	}
	m.storeOpDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// ObserveMirrorLag records how long a change waited before reaching the
// remote mirror.
func (m *MetricsService) ObserveMirrorLag(lag time.Duration) {
	if m == nil {
		return
	}
	m.mirrorQueueLag.Observe(lag.Seconds())
}

// CountMirrorFailure records a replication that gave up.
func (m *MetricsService) CountMirrorFailure() {
	if m == nil {
		return
	}
	m.mirrorFailures.Inc()
}

// CountRanking records one suggested-team computation.
func (m *MetricsService) CountRanking() {
	if m == nil {
		return
	}
	m.rankingsTotal.Inc()
}
