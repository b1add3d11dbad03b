package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	snapshotFallbackCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nexfit",
		Subsystem: "snapshot",
		Name:      "fallback_served_total",
		Help:      "Number of requests answered from the demo dataset because live reads failed.",
	})
	snapshotBuiltCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nexfit",
		Subsystem: "snapshot",
		Name:      "built_total",
		Help:      "Number of snapshots assembled from live data.",
	})
)

func init() {
	prometheus.MustRegister(snapshotFallbackCounter, snapshotBuiltCounter)
}

// RecordSnapshot tracks whether a snapshot came from live data or fallback.
func RecordSnapshot(fallback bool) {
	if fallback {
		snapshotFallbackCounter.Inc()
		return
	}
	snapshotBuiltCounter.Inc()
}
