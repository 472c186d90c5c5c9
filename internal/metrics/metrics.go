package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

var (
	PaymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payment intents by lifecycle status reached",
		},
		[]string{"status"},
	)

	PaymentAmounts = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_amounts",
			Help:    "Distribution of completed payment amounts",
			Buckets: prometheus.ExponentialBuckets(1, 2, 16),
		},
		[]string{"currency"},
	)

	CommissionAmounts = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "commission_amounts",
			Help:    "Distribution of commission retained per payment",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
		},
		[]string{"commission_type"},
	)

	FraudChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fraud_checks_total",
			Help: "Fraud checks by risk level and decision",
		},
		[]string{"risk_level", "decision"},
	)

	FraudRiskScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fraud_risk_scores",
			Help:    "Distribution of fraud risk scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	LedgerEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_entries_total",
			Help: "Ledger entries posted by entry type",
		},
		[]string{"entry_type"},
	)

	EventsConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Kafka events handled by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paymentscore_http_requests_total",
			Help: "Total HTTP requests processed, labeled by status code",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paymentscore_http_request_duration_seconds",
			Help:    "Latency distribution of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(
		PaymentsTotal,
		PaymentAmounts,
		CommissionAmounts,
		FraudChecksTotal,
		FraudRiskScores,
		LedgerEntriesTotal,
		EventsConsumedTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

func ObserveMoney(h *prometheus.HistogramVec, label string, amount decimal.Decimal) {
	h.WithLabelValues(label).Observe(amount.InexactFloat64())
}
