package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for webhook ingestion.
type Metrics struct {
	Ingested   prometheus.Counter
	Duplicates prometheus.Counter
	Ignored    prometheus.Counter
}

// New creates a Metrics instance with all event metrics registered.
func New() *Metrics {
	return &Metrics{
		Ingested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shiosayi_events_ingested_total",
			Help: "Total number of payment events stored",
		}),
		Duplicates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shiosayi_events_duplicate_total",
			Help: "Total number of retried payment events deduplicated by id",
		}),
		Ignored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shiosayi_events_ignored_total",
			Help: "Total number of events stored but not qualifying for reconciliation",
		}),
	}
}

func (m *Metrics) IncrementIngested() {
	if m != nil {
		m.Ingested.Inc()
	}
}

func (m *Metrics) IncrementDuplicates() {
	if m != nil {
		m.Duplicates.Inc()
	}
}

func (m *Metrics) IncrementIgnored() {
	if m != nil {
		m.Ignored.Inc()
	}
}
