package wallet

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wallet_operation_duration_seconds",
		Help:    "Latency distribution of wallet operations",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"operation"})

	operationResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_operations_total",
		Help: "Total wallet operations, labeled by result",
	}, []string{"operation", "result"})

	creditsMoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_credits_moved_total",
		Help: "Total credits moved through the ledger, labeled by direction",
	}, []string{"direction"})

	operationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_operation_errors_total",
		Help: "Total wallet operation errors",
	}, []string{"operation", "error"})
)

// PrometheusCollector implements MetricsCollector on the registered
// wallet_* metric families.
type PrometheusCollector struct{}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{}
}

func (p *PrometheusCollector) RecordOperationDuration(operation string, duration time.Duration) {
	operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (p *PrometheusCollector) RecordOperationResult(operation, result string) {
	operationResults.WithLabelValues(operation, result).Inc()
}

func (p *PrometheusCollector) RecordCredits(direction string, amount int64) {
	creditsMoved.WithLabelValues(direction).Add(float64(amount))
}

func (p *PrometheusCollector) RecordError(operation, errType string) {
	operationErrors.WithLabelValues(operation, errType).Inc()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration) {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)          {}
func (n *NoopMetricsCollector) RecordCredits(string, int64)                   {}
func (n *NoopMetricsCollector) RecordError(string, string)                    {}
