package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	started   prometheus.Counter
	decisions *prometheus.CounterVec
	outcomes  *prometheus.CounterVec
	conflicts prometheus.Counter
	narrative *prometheus.HistogramVec
}

// NewMetrics registers the engine collectors on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		started: f.NewCounter(prometheus.CounterOpts{
			Name: "gambit_scenarios_started_total",
			Help: "Number of scenario traversals started or restarted.",
		}),
		decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gambit_decisions_total",
			Help: "Number of accepted decisions, by quality tier.",
		}, []string{"quality"}),
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gambit_outcomes_total",
			Help: "Number of traversals that ended, by outcome.",
		}, []string{"outcome"}),
		conflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "gambit_submit_conflicts_total",
			Help: "Number of submissions rejected because a concurrent update won.",
		}),
		narrative: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gambit_narrative_duration_seconds",
			Help:    "Duration of narrative generation calls.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"result"}),
	}
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStart: func(context.Context, *domain.StartEvent) {
			m.started.Inc()
		},
		OnDecision: func(_ context.Context, e *domain.DecisionEvent) {
			m.decisions.WithLabelValues(string(e.Quality)).Inc()
		},
		OnOutcome: func(_ context.Context, e *domain.OutcomeEvent) {
			m.outcomes.WithLabelValues(string(e.Outcome)).Inc()
		},
		OnConflict: func(context.Context, *domain.ConflictEvent) {
			m.conflicts.Inc()
		},
		OnAnalysis: func(_ context.Context, e *domain.AnalysisEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.narrative.WithLabelValues(result).Observe(e.Duration.Seconds())
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
