package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the account domain counters.
type Metrics struct {
	CustomersRegistered prometheus.Counter
	AccountsOpened      *prometheus.CounterVec
	AccountsClosed      prometheus.Counter
	PlanChanges         prometheus.Counter
	ValidationFailures  *prometheus.CounterVec
}

// New creates and registers the account metrics.
func New() *Metrics {
	return &Metrics{
		CustomersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coreteller_customers_registered_total",
			Help: "Total customers registered",
		}),
		AccountsOpened: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coreteller_accounts_opened_total",
			Help: "Total savings accounts opened, by plan type",
		}, []string{"plan_type"}),
		AccountsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coreteller_accounts_closed_total",
			Help: "Total savings accounts closed",
		}),
		PlanChanges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coreteller_plan_changes_total",
			Help: "Total approved plan changes",
		}),
		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coreteller_account_validation_failures_total",
			Help: "Rejected account operations, by operation",
		}, []string{"operation"}),
	}
}
