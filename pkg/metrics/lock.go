package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/veilfs/pkg/evfs/lock"
)

// lockMetrics is the Prometheus-backed implementation of lock.Metrics.
type lockMetrics struct {
	turnWait *prometheus.HistogramVec
}

// NewLockMetrics constructs a lock.Metrics recorder. Returns nil when
// metrics are not enabled, which callers pass straight to
// lock.NewManager for zero overhead.
func NewLockMetrics() lock.Metrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()
	m := &lockMetrics{
		turnWait: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "veilfs_lock_turn_wait_milliseconds",
				Help:    "Time spent waiting for a path turn to be admitted, by turn kind",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 16),
			},
			[]string{"kind"}, // "reader", "writer"
		),
	}
	return m
}

func (m *lockMetrics) ObserveTurnWait(exclusive bool, wait time.Duration) {
	kind := "reader"
	if exclusive {
		kind = "writer"
	}
	m.turnWait.WithLabelValues(kind).Observe(float64(wait.Microseconds()) / 1000)
}
