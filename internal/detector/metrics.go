package detector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	insertedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexfit",
		Subsystem: "detector",
		Name:      "alerts_inserted_total",
		Help:      "Number of alerts inserted per kind.",
	}, []string{"kind"})

	skippedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexfit",
		Subsystem: "detector",
		Name:      "alerts_deduplicated_total",
		Help:      "Number of alerts suppressed by the dedup key per kind.",
	}, []string{"kind"})

	categoryErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexfit",
		Subsystem: "detector",
		Name:      "category_errors_total",
		Help:      "Number of failed category scans per kind.",
	}, []string{"kind"})

	lastRunGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nexfit",
		Subsystem: "detector",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the most recent completed detection run.",
	})
)

func init() {
	prometheus.MustRegister(insertedCounter, skippedCounter, categoryErrorCounter, lastRunGauge)
}

func recordInserted(kind string) {
	insertedCounter.WithLabelValues(kind).Inc()
}

func recordSkipped(kind string) {
	skippedCounter.WithLabelValues(kind).Inc()
}

func recordCategoryError(kind string) {
	categoryErrorCounter.WithLabelValues(kind).Inc()
}

func recordRun() {
	lastRunGauge.Set(float64(time.Now().Unix()))
}
