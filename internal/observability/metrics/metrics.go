package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the platform's payment counters.
type Metrics struct {
	payments     *prometheus.CounterVec
	aggregations *prometheus.CounterVec
	refunds      *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		payments: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sahelpay",
			Name:      "payments_total",
			Help:      "Payment attempts by provider and outcome status.",
		}, []string{"provider", "status"}),
		aggregations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sahelpay",
			Name:      "aggregations_total",
			Help:      "Aggregated payment batches by final status.",
		}, []string{"status"}),
		refunds: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sahelpay",
			Name:      "refunds_total",
			Help:      "Refunds by provider.",
		}, []string{"provider"}),
	}
}

func (m *Metrics) RecordPayment(provider, status string) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(provider, status).Inc()
}

func (m *Metrics) RecordAggregation(status string) {
	if m == nil {
		return
	}
	m.aggregations.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordRefund(provider string) {
	if m == nil {
		return
	}
	m.refunds.WithLabelValues(provider).Inc()
}

// HTTPMetrics instruments the gin engine.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sahelpay",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sahelpay",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
