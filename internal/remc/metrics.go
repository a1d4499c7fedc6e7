package remc

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects move outcomes and population size for scraping. Each
// instance owns its registry so tests and embedded servers never collide.
type Metrics struct {
	registry    *prometheus.Registry
	moves       *prometheus.CounterVec
	acceptance  prometheus.Histogram
	energyDelta prometheus.Histogram
	particles   prometheus.Gauge
	typeCounts  *prometheus.GaugeVec
	steps       prometheus.Counter
}

// NewMetrics creates the collectors and registers them.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "remcsim",
			Name:      "moves_total",
			Help:      "Trial moves by outcome.",
		}, []string{"outcome"}),
		acceptance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "remcsim",
			Name:      "acceptance_probability",
			Help:      "Acceptance probabilities of evaluated trial moves.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		energyDelta: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "remcsim",
			Name:      "energy_delta",
			Help:      "Energy changes of evaluated trial moves.",
			Buckets:   prometheus.LinearBuckets(-10, 2, 11),
		}),
		particles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "remcsim",
			Name:      "particles",
			Help:      "Current particle count.",
		}),
		typeCounts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "remcsim",
			Name:      "particles_by_type",
			Help:      "Current particle count per species type.",
		}, []string{"type"}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "remcsim",
			Name:      "step_batches_total",
			Help:      "Completed step batches.",
		}),
	}
	m.registry.MustRegister(m.moves, m.acceptance, m.energyDelta, m.particles, m.typeCounts, m.steps)
	return m
}

// Observe records a batch of move results and the population they left
// behind.
func (m *Metrics) Observe(results []MoveResult, store ParticleStore) {
	for _, res := range results {
		m.moves.WithLabelValues(string(res.Outcome)).Inc()
		switch res.Outcome {
		case OutcomeAccepted, OutcomeRejected:
			m.acceptance.Observe(res.Acceptance)
			m.energyDelta.Observe(res.DeltaEnergy)
		}
	}
	m.steps.Inc()
	if store != nil {
		m.particles.Set(float64(store.Len()))
		m.typeCounts.Reset()
		for typeID, count := range store.TypeCounts() {
			m.typeCounts.WithLabelValues(strconv.Itoa(typeID)).Set(float64(count))
		}
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
