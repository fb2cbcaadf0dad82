package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	FDsOpened          prometheus.Counter
	FDsClosed          prometheus.Counter
	FDsMatured         prometheus.Counter
	ValidationFailures *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		FDsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coreteller_fds_opened_total",
			Help: "Fixed deposits opened.",
		}),
		FDsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coreteller_fds_closed_total",
			Help: "Fixed deposits closed before maturity.",
		}),
		FDsMatured: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coreteller_fds_matured_total",
			Help: "Fixed deposits marked matured.",
		}),
		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coreteller_fd_validation_failures_total",
			Help: "Fixed deposit requests rejected by the eligibility rules.",
		}, []string{"operation"}),
	}
}
