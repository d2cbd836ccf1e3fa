package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 Metrics collector
// =============================================================================

// Collector holds every prometheus metric the service records.
type Collector struct {
	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRequestSize     *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// Dispatch metrics
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec

	// Update command metrics
	updateCommandsTotal *prometheus.CounterVec

	// Store metrics
	storeOperationDuration *prometheus.HistogramVec
	storeDocuments         *prometheus.GaugeVec

	logger *zap.Logger
}

// NewCollector creates a collector registered on the default registry.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// HTTP metrics
	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.httpRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	c.httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// Dispatch metrics
	c.dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Total number of content stream dispatches",
		},
		[]string{"content_type", "outcome"},
	)

	c.dispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Content stream dispatch duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"content_type"},
	)

	// Update command metrics
	c.updateCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "update_commands_total",
			Help:      "Total number of update commands processed",
		},
		[]string{"kind", "status"},
	)

	// Store metrics
	c.storeOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Document store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	c.storeDocuments = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_documents",
			Help:      "Number of committed documents in the store",
		},
		[]string{"backend"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 HTTP metrics
// =============================================================================

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration, requestSize, responseSize int64) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	c.httpRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	c.httpResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// =============================================================================
// 📥 Dispatch metrics
// =============================================================================

// ObserveDispatch records one content stream dispatch. It satisfies
// the dispatcher's observer contract.
func (c *Collector) ObserveDispatch(contentType, outcome string, elapsed time.Duration) {
	if contentType == "" {
		contentType = "unknown"
	}
	c.dispatchTotal.WithLabelValues(contentType, outcome).Inc()
	c.dispatchDuration.WithLabelValues(contentType).Observe(elapsed.Seconds())
}

// =============================================================================
// 🔄 Update command metrics
// =============================================================================

// RecordUpdateCommand records one processed update command.
func (c *Collector) RecordUpdateCommand(kind, status string) {
	c.updateCommandsTotal.WithLabelValues(kind, status).Inc()
}

// =============================================================================
// 🗄️ Store metrics
// =============================================================================

// RecordStoreOperation records the duration of one store operation.
func (c *Collector) RecordStoreOperation(backend, operation string, duration time.Duration) {
	c.storeOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// SetStoreDocuments sets the committed document count gauge.
func (c *Collector) SetStoreDocuments(backend string, count int64) {
	c.storeDocuments.WithLabelValues(backend).Set(float64(count))
}

// =============================================================================
// 🔧 Helpers
// =============================================================================

// statusCode buckets an HTTP status code into its class.
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
