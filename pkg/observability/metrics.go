package observability

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records tick and node activity as Prometheus metrics.
// Node ids are not used as labels; generated ids are random and unbounded.
type Metrics struct {
	Ticks        *prometheus.CounterVec
	TickDuration *prometheus.HistogramVec
	NodeVisits   *prometheus.CounterVec
	ConfigErrors *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "arbor",
				Name:      "ticks_total",
				Help:      "Total number of ticks, by resulting tree status.",
			},
			[]string{"agent", "status"},
		),
		TickDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "arbor",
				Name:      "tick_duration_seconds",
				Help:      "Duration of a full tree evaluation.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"agent"},
		),
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "arbor",
				Name:      "node_visits_total",
				Help:      "Total number of node evaluations, by kind, capability and status.",
			},
			[]string{"kind", "capability", "status"},
		),
		ConfigErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "arbor",
				Name:      "config_errors_total",
				Help:      "Total number of non-fatal configuration errors.",
			},
			[]string{"agent"},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.Ticks, m.TickDuration, m.NodeVisits, m.ConfigErrors} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(string(e.Kind), e.Name, e.Status.String()).Inc()
		},
		OnTick: func(_ context.Context, e *domain.TickEvent) {
			m.Ticks.WithLabelValues(e.AgentID, e.Status.String()).Inc()
			m.TickDuration.WithLabelValues(e.AgentID).Observe(e.Duration.Seconds())
		},
		OnConfigError: func(_ context.Context, e *domain.ConfigErrorEvent) {
			m.ConfigErrors.WithLabelValues(e.AgentID).Inc()
		},
	}
}
