package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels operations that completed.
	OutcomeSuccess = "success"
	// OutcomeError labels operations that failed.
	OutcomeError = "error"
	// OutcomeSkipped labels remediations suppressed by an active cooldown.
	OutcomeSkipped = "skipped"
)

var (
	cyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "healmon",
			Name:      "cycles_total",
			Help:      "Total number of completed monitoring cycles.",
		},
	)

	cycleDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "healmon",
			Name:      "cycle_seconds",
			Help:      "Monitoring cycle latency in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	collectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "healmon",
			Name:      "collections_total",
			Help:      "Metric collection attempts, partitioned by service and outcome.",
		},
		[]string{"service", "outcome"},
	)

	alertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "healmon",
			Name:      "alerts_total",
			Help:      "Alerts raised, partitioned by type and severity.",
		},
		[]string{"type", "severity"},
	)

	remediationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "healmon",
			Name:      "remediations_total",
			Help:      "Remediation attempts, partitioned by action and outcome.",
		},
		[]string{"action", "outcome"},
	)
)

// Register attaches healmon collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		cyclesTotal,
		cycleDurationSeconds,
		collectionsTotal,
		alertsTotal,
		remediationsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveCycle records one completed monitoring cycle.
func ObserveCycle(duration time.Duration) {
	cyclesTotal.Inc()
	if duration < 0 {
		duration = 0
	}
	cycleDurationSeconds.Observe(duration.Seconds())
}

// ObserveCollection records a collection attempt for a service.
func ObserveCollection(service, outcome string) {
	collectionsTotal.WithLabelValues(service, outcome).Inc()
}

// ObserveAlert records a raised alert.
func ObserveAlert(alertType, severity string) {
	alertsTotal.WithLabelValues(alertType, severity).Inc()
}

// ObserveRemediation records a remediation attempt.
func ObserveRemediation(action, outcome string) {
	remediationsTotal.WithLabelValues(action, outcome).Inc()
}
