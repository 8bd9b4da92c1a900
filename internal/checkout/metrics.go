package checkout

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the coordinator's Prometheus collectors.
type Metrics struct {
	transitions *prometheus.CounterVec
	submissions *prometheus.CounterVec
	open        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "boost",
				Subsystem: "checkout",
				Name:      "transitions_total",
				Help:      "Checkout session state transitions.",
			},
			[]string{"from", "to"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "boost",
				Subsystem: "checkout",
				Name:      "submissions_total",
				Help:      "Order submissions by result.",
			},
			[]string{"result"},
		),
		open: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "boost",
				Subsystem: "checkout",
				Name:      "open_sessions",
				Help:      "Sessions currently open, completing or failed.",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.transitions, m.submissions, m.open)
	}
	return m
}

func (m *Metrics) transition(from, to Status) {
	m.transitions.WithLabelValues(from.String(), to.String()).Inc()
	switch {
	case from == StatusIdle && to != StatusIdle:
		m.open.Inc()
	case from != StatusIdle && to == StatusIdle:
		m.open.Dec()
	}
}

func (m *Metrics) submission(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.submissions.WithLabelValues(result).Inc()
}
