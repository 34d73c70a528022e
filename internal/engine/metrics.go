package engine

import "github.com/prometheus/client_golang/prometheus"

var (
	startsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "astrod",
			Subsystem: "engine",
			Name:      "starts_total",
			Help:      "Engine start requests by result (ok, error)",
		},
		[]string{"result"},
	)

	crashesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "astrod",
		Subsystem: "engine",
		Name:      "crashes_total",
		Help:      "Worker processes that exited abnormally",
	})

	running = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "astrod",
		Subsystem: "engine",
		Name:      "running",
		Help:      "1 while a worker process occupies the supervisor slot",
	})
)

func init() {
	prometheus.MustRegister(startsTotal, crashesTotal, running)
}
