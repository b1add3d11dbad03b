package coach

import "github.com/prometheus/client_golang/prometheus"

var intentCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "nexfit",
	Subsystem: "coach",
	Name:      "insight_queries_total",
	Help:      "Number of resolved insight queries grouped by matched intent.",
}, []string{"intent"})

func init() {
	prometheus.MustRegister(intentCounter)
}

func recordIntent(name string) {
	intentCounter.WithLabelValues(name).Inc()
}
