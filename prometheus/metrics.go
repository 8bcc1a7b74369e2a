package prometheus

import (
	"time"

	"biztime-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Per-resource operation counters
	CompanyOperationsCounter  prometheus.CounterVec
	InvoiceOperationsCounter  prometheus.CounterVec
	IndustryOperationsCounter prometheus.CounterVec

	// Business-level gauges
	CompaniesGauge      prometheus.Gauge
	UnpaidInvoicesGauge prometheus.Gauge
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Database operation duration
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Company metrics
	CompanyOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_company_operations_total",
			Help: "Total number of company operations",
		},
		[]string{"operation"},
	)

	// Invoice metrics
	InvoiceOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_invoice_operations_total",
			Help: "Total number of invoice operations",
		},
		[]string{"operation"},
	)

	// Industry metrics
	IndustryOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_industry_operations_total",
			Help: "Total number of industry operations",
		},
		[]string{"operation"},
	)

	// Total companies on record
	CompaniesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_companies",
			Help: "Number of companies on record",
		},
	)

	// Invoices awaiting payment
	UnpaidInvoicesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_unpaid_invoices",
			Help: "Number of unpaid invoices",
		},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordCompanyOperation increments the counter for company operations
func RecordCompanyOperation(operation string) {
	CompanyOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordInvoiceOperation increments the counter for invoice operations
func RecordInvoiceOperation(operation string) {
	InvoiceOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordIndustryOperation increments the counter for industry operations
func RecordIndustryOperation(operation string) {
	IndustryOperationsCounter.WithLabelValues(operation).Inc()
}

// UpdateCompanyCount updates the companies gauge
func UpdateCompanyCount(count int64) {
	CompaniesGauge.Set(float64(count))
}

// UpdateUnpaidInvoiceCount updates the unpaid invoices gauge
func UpdateUnpaidInvoiceCount(count int64) {
	UnpaidInvoicesGauge.Set(float64(count))
}
