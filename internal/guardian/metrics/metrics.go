package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the guardian registry.
type Metrics struct {
	Created  prometheus.Counter
	Upgrades prometheus.Counter
	Renewals prometheus.Counter
}

// New creates a Metrics instance with all guardian metrics registered.
func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shiosayi_guardians_created_total",
			Help: "Total number of guardian accounts created",
		}),
		Upgrades: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shiosayi_guardian_upgrades_total",
			Help: "Total number of tier changes applied on payment",
		}),
		Renewals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shiosayi_guardian_renewals_total",
			Help: "Total number of same-tier renewal payments applied",
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	if m != nil {
		m.Created.Inc()
	}
}

func (m *Metrics) IncrementUpgrades() {
	if m != nil {
		m.Upgrades.Inc()
	}
}

func (m *Metrics) IncrementRenewals() {
	if m != nil {
		m.Renewals.Inc()
	}
}
