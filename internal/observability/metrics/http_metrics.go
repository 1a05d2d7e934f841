package metrics

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	ErrorReasonDeadlineExceeded = "deadline_exceeded"
	ErrorReasonUniqueViolation  = "unique_violation"
	ErrorReasonForeignKey       = "foreign_key_violation"
	ErrorReasonUndefinedRoutine = "undefined_function"
	ErrorReasonNotFound         = "not_found"
	ErrorReasonUnknown          = "unknown"
)

// HTTPMetrics captures request throughput and latency for the scrape endpoint.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
	dbErrors *prometheus.CounterVec
}

var (
	httpMetricsOnce sync.Once
	httpMetrics     *HTTPMetrics
)

// NewHTTPMetrics returns the process-wide HTTP metrics registered on the
// default prometheus registry.
func NewHTTPMetrics(cfg Config) *HTTPMetrics {
	httpMetricsOnce.Do(func() {
		httpMetrics = newHTTPMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return httpMetrics
}

func newHTTPMetrics(registerer prometheus.Registerer, cfg Config) *HTTPMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "verlyx-hub"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "verlyx"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        prefix + "_http_requests_total",
		Help:        "HTTP requests by route, method and status class.",
		ConstLabels: constLabels,
	}, []string{"route", "method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        prefix + "_http_request_duration_seconds",
		Help:        "HTTP request latency by route.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: constLabels,
	}, []string{"route", "method"})
	inflight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        prefix + "_http_requests_in_flight",
		Help:        "HTTP requests currently being served.",
		ConstLabels: constLabels,
	})
	dbErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        prefix + "_db_errors_total",
		Help:        "Database errors surfaced to handlers by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"reason"})

	registerer.MustRegister(requests, duration, inflight, dbErrors)

	return &HTTPMetrics{
		requests: requests,
		duration: duration,
		inflight: inflight,
		dbErrors: dbErrors,
	}
}

// GinMiddleware records one observation per request.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		m.inflight.Inc()
		defer m.inflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(route, method, statusClass(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// ObserveError counts a handler error when it originates from the database.
func (m *HTTPMetrics) ObserveError(err error) {
	if m == nil || err == nil {
		return
	}
	reason := ClassifyErrorReason(err)
	if reason == ErrorReasonUnknown {
		return
	}
	m.dbErrors.WithLabelValues(reason).Inc()
}

// ClassifyErrorReason maps driver errors to a bounded set of reasons.
func ClassifyErrorReason(err error) string {
	if err == nil {
		return ErrorReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorReasonDeadlineExceeded
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrorReasonUniqueViolation
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrorReasonForeignKey
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorReasonNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrorReasonUniqueViolation
		case "23503":
			return ErrorReasonForeignKey
		case "42883":
			return ErrorReasonUndefinedRoutine
		}
	}
	return ErrorReasonUnknown
}

func statusClass(status int) string {
	if status < 100 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
