package retry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	retries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwa_listener_retries_total",
			Help: "Total number of retried attempts by operation",
		},
		[]string{"operation"},
	)

	exhausted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwa_listener_retries_exhausted_total",
			Help: "Total number of operations that failed after all attempts",
		},
		[]string{"operation"},
	)
)

func retriesInc(operation string) {
	retries.WithLabelValues(operation).Inc()
}

func exhaustedInc(operation string) {
	exhausted.WithLabelValues(operation).Inc()
}
