package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector of the service, registered on one registry
type Metrics struct {
	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	StatusCategoryTotal *prometheus.CounterVec

	// Core operation metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Inventory metrics
	TransactionsTotal    *prometheus.CounterVec
	ProductInventory     *prometheus.GaugeVec
	SentinelRedirects    *prometheus.CounterVec
	AuditWriteFailures   prometheus.Counter
	AuditLogsPruned      prometheus.Counter
	LoginAttemptsCounter *prometheus.CounterVec

	registry *prometheus.Registry
}

// New registers all collectors on reg using prefix for metric names
func New(prefix string, reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		StatusCategoryTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_status_category_total",
				Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
			},
			[]string{"category"},
		),

		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_operations_total",
				Help: "Total number of core operations by outcome",
			},
			[]string{"operation", "status"},
		),

		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_operation_duration_seconds",
				Help:    "Duration of core operations (unit of work included) in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		TransactionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_transactions_total",
				Help: "Total number of committed stock transactions",
			},
			[]string{"transaction_type", "currency"},
		),

		ProductInventory: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + "_product_inventory",
				Help: "Current inventory level of products",
			},
			[]string{"product_id"},
		),

		SentinelRedirects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_sentinel_redirects_total",
				Help: "Total number of rows re-pointed at a sentinel on soft delete",
			},
			[]string{"entity"},
		),

		AuditWriteFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_audit_write_failures_total",
				Help: "Total number of audit log rows that could not be written",
			},
		),

		AuditLogsPruned: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_audit_logs_pruned_total",
				Help: "Total number of audit log rows removed by retention",
			},
		),

		LoginAttemptsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_login_attempts_total",
				Help: "Total number of credential verifications by outcome",
			},
			[]string{"result"},
		),
	}
}

// RecordOperation records the outcome and duration of one core operation
func (m *Metrics) RecordOperation(operation, status string, duration time.Duration) {
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordTransaction counts a committed transaction and updates the stock gauge
func (m *Metrics) RecordTransaction(transactionType, currency string, productID uint, quantity int) {
	m.TransactionsTotal.WithLabelValues(transactionType, currency).Inc()
	m.UpdateProductInventory(productID, quantity)
}

// UpdateProductInventory sets the inventory gauge for a product
func (m *Metrics) UpdateProductInventory(productID uint, quantity int) {
	m.ProductInventory.WithLabelValues(strconv.FormatUint(uint64(productID), 10)).Set(float64(quantity))
}

// ForgetProduct drops the inventory gauge of a removed product
func (m *Metrics) ForgetProduct(productID uint) {
	m.ProductInventory.DeleteLabelValues(strconv.FormatUint(uint64(productID), 10))
}

// RecordRedirects counts rows redirected to the sentinel of entity
func (m *Metrics) RecordRedirects(entity string, n int64) {
	if n > 0 {
		m.SentinelRedirects.WithLabelValues(entity).Add(float64(n))
	}
}

// RecordLogin counts a credential verification
func (m *Metrics) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.LoginAttemptsCounter.WithLabelValues(result).Inc()
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	default:
		return ""
	}
}

// Middleware creates an Echo middleware function that records HTTP request metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let echo write the error response so the real status is recorded
				c.Error(err)
			}

			status := c.Response().Status
			method := c.Request().Method
			path := c.Path()
			statusStr := strconv.Itoa(status)

			m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
			if category := statusCategory(status); category != "" {
				m.StatusCategoryTotal.WithLabelValues(category).Inc()
			}
			m.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(time.Since(start).Seconds())

			return nil
		}
	}
}

// Handler returns an HTTP handler exposing the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
