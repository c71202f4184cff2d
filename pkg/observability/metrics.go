package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records conversation activity as Prometheus collectors.
type Metrics struct {
	nodeVisits *prometheus.CounterVec
	matches    *prometheus.CounterVec
	fallbacks  *prometheus.CounterVec
	noAnswers  *prometheus.CounterVec
	matchCost  prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		nodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parley_node_visits_total",
				Help: "Total number of node visits",
			},
			[]string{"node"},
		),
		matches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parley_matches_total",
				Help: "Transitions taken by keyword match",
			},
			[]string{"from", "to"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parley_fallbacks_total",
				Help: "Returns to root from nodes without outgoing keywords",
			},
			[]string{"from"},
		),
		noAnswers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parley_no_answer_total",
				Help: "Visits to nodes that have no answers",
			},
			[]string{"node"},
		),
		matchCost: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "parley_match_cost",
				Help:    "Edit distance of the winning keyword",
				Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
			},
		),
	}

	for _, c := range []prometheus.Collector{m.nodeVisits, m.matches, m.fallbacks, m.noAnswers, m.matchCost} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.nodeVisits.WithLabelValues(e.NodeName).Inc()
		},
		OnMatch: func(_ context.Context, e *domain.MatchEvent) {
			m.matches.WithLabelValues(e.From, e.To).Inc()
			m.matchCost.Observe(float64(e.Cost))
		},
		OnFallback: func(_ context.Context, e *domain.MatchEvent) {
			m.fallbacks.WithLabelValues(e.From).Inc()
		},
		OnNoAnswer: func(_ context.Context, e *domain.NodeEvent) {
			m.noAnswers.WithLabelValues(e.NodeName).Inc()
		},
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
