package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// scheduledJobs is the number of live entries.
	scheduledJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "taskcoach",
		Subsystem: "scheduler",
		Name:      "jobs",
		Help:      "Number of scheduled jobs",
	})

	// firedTotal counts executed callbacks.
	// Labels: kind (at, interval)
	firedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskcoach",
		Subsystem: "scheduler",
		Name:      "fired_total",
		Help:      "Total callbacks fired by the scheduler",
	}, []string{"kind"})

	// fireLag measures how late a callback ran relative to its due time.
	fireLag = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "taskcoach",
		Subsystem: "scheduler",
		Name:      "lag_seconds",
		Help:      "Delay between a job's due time and its execution",
		Buckets:   []float64{0.001, 0.01, 0.1, 0.25, 0.5, 1, 2, 5, 30, 60},
	})
)

func kindLabel(every bool) string {
	if every {
		return "interval"
	}
	return "at"
}
