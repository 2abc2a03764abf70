package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "recipes", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "recipes", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "recipes", Name: "store_operations_total", Help: "Document store calls by backend, operation and outcome."},
		[]string{"backend", "operation", "outcome"},
	)
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "recipes", Name: "store_operation_seconds", Help: "Document store call latency.", Buckets: prometheus.DefBuckets},
		[]string{"backend", "operation"},
	)
	BackupsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "recipes", Name: "backups_total", Help: "Recipe snapshot uploads by outcome."},
		[]string{"outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(StoreOperations)
	reg.MustRegister(StoreLatency)
	reg.MustRegister(BackupsWritten)
}
