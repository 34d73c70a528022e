package download

import "github.com/prometheus/client_golang/prometheus"

var (
	bytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "astrod",
		Subsystem: "download",
		Name:      "bytes_total",
		Help:      "Bytes written to disk by model downloads",
	})

	downloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "astrod",
			Subsystem: "download",
			Name:      "downloads_total",
			Help:      "Download requests by result (ok, cached, error)",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(bytesTotal, downloadsTotal)
}
