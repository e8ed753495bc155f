package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "roundrobin"

// Outcome label values.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Metrics groups the tournament counters exposed on /metrics.
type Metrics struct {
	TournamentsCreated prometheus.Counter
	SchedulesGenerated prometheus.Counter
	DaysCompleted      prometheus.Counter
	ResultsRecorded    *prometheus.CounterVec
	Reschedules        *prometheus.CounterVec
	Exports            *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TournamentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tournaments_created_total",
			Help:      "Number of tournaments created.",
		}),
		SchedulesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedules_generated_total",
			Help:      "Number of schedules generated or regenerated.",
		}),
		DaysCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_completed_total",
			Help:      "Number of match days marked completed.",
		}),
		ResultsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_total",
			Help:      "Match results submitted, by outcome.",
		}, []string{"outcome"}),
		Reschedules: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reschedules_total",
			Help:      "Reschedule requests, by outcome.",
		}, []string{"outcome"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "standings_exports_total",
			Help:      "Standings exports to object storage, by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.TournamentsCreated,
			m.SchedulesGenerated,
			m.DaysCompleted,
			m.ResultsRecorded,
			m.Reschedules,
			m.Exports,
		)
	}
	return m
}

// Outcome maps an operation error to its label value.
func Outcome(err error) string {
	if err != nil {
		return OutcomeRejected
	}
	return OutcomeAccepted
}
