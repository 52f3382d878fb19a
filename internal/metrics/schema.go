package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	validationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Validation passes by engine line and result",
		},
		[]string{"line", "result"},
	)

	mismatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mismatches_total",
			Help:      "Mismatch entries collected by validation passes",
		},
		[]string{"line"},
	)

	reconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_actions_total",
			Help:      "Reconciliation outcomes by action",
		},
		[]string{"action"},
	)

	translateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "translate_duration_seconds",
			Help:      "Time spent translating a field catalog",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)
)

func init() {
	prometheus.MustRegister(validationsTotal, mismatchesTotal, reconcileTotal, translateDuration)
}

// ObserveValidation records one validation pass on the given engine line.
func ObserveValidation(line string, mismatches int) {
	result := "valid"
	if mismatches > 0 {
		result = "invalid"
		mismatchesTotal.WithLabelValues(line).Add(float64(mismatches))
	}
	validationsTotal.WithLabelValues(line, result).Inc()
}

func ObserveReconcile(action string) {
	reconcileTotal.WithLabelValues(action).Inc()
}

func ObserveTranslate(d time.Duration) {
	translateDuration.Observe(d.Seconds())
}
