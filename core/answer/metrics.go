package answer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/siherrmann/fingrapher/core/retrieval"
)

// Steps of an answer
const (
	StepRetrieve     = "retrieve"
	StepVectorSearch = retrieval.StepVectorSearch
	StepGraphSearch  = retrieval.StepGraphSearch
	StepContext      = "build_context"
	StepGenerate     = "generate"
)

// Metrics holds Prometheus metrics for question answering.
// A nil *Metrics records nothing.
type Metrics struct {
	questionsTotal prometheus.Counter
	refusalsTotal  prometheus.Counter
	degradedSteps  *prometheus.CounterVec
	stepDuration   *prometheus.HistogramVec
	sourceCounts   *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with registerer if it
// is not nil
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		questionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fingrapher_questions_total",
			Help: "Total number of answered questions",
		}),
		refusalsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fingrapher_refusals_total",
			Help: "Total number of questions refused for lack of evidence",
		}),
		degradedSteps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fingrapher_degraded_steps_total",
				Help: "Total number of answer steps that fell back to an empty result",
			},
			[]string{"step"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fingrapher_step_duration_seconds",
				Help:    "Duration of answer steps",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"step"},
		),
		sourceCounts: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fingrapher_retrieved_sources",
				Help:    "Number of sources retrieved per question",
				Buckets: []float64{0, 1, 2, 3, 5, 10, 15, 20},
			},
			[]string{"kind"},
		),
	}

	if registerer == nil {
		return m, nil
	}
	for _, collector := range []prometheus.Collector{m.questionsTotal, m.refusalsTotal, m.degradedSteps, m.stepDuration, m.sourceCounts} {
		err := registerer.Register(collector)
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Degraded counts a step that returned an empty result after a failure
func (m *Metrics) Degraded(step string, _ error) {
	if m == nil {
		return
	}
	m.degradedSteps.WithLabelValues(step).Inc()
}

func (m *Metrics) observeStep(step string, start time.Time) {
	if m == nil {
		return
	}
	m.stepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeAnswer(vectorResults int, graphEntities int, refused bool) {
	if m == nil {
		return
	}
	m.questionsTotal.Inc()
	if refused {
		m.refusalsTotal.Inc()
	}
	m.sourceCounts.WithLabelValues("vector").Observe(float64(vectorResults))
	m.sourceCounts.WithLabelValues("graph").Observe(float64(graphEntities))
}
