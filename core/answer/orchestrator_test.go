package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/siherrmann/fingrapher/core/retrieval"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func metaVectorStore() fakeVectorStore {
	return fakeVectorStore{result: &model.VectorSearchResult{
		Documents: []string{"Meta faces regulatory scrutiny in the EU.", "Advertising revenue may decline."},
		Metadatas: []map[string]string{
			{"ticker": "META", "section": "Risk Factors", "url": "https://sec.gov/meta"},
			{"ticker": "META", "section": "Risk Factors"},
		},
		Distances: []float64{0.1, 0.4},
	}}
}

func metaGraphStore() *fakeGraphStore {
	return &fakeGraphStore{
		entities: map[string][]model.GraphEntity{"meta's": {{
			EntityType: "Company",
			Attributes: map[string]interface{}{"name": "Meta Platforms Inc.", "ticker": "META", "sector": "Technology"},
		}}},
		paths: []model.GraphPath{{SourceKey: "META", RelationType: "OPERATES_IN", TargetType: "Sector", TargetLabel: "Technology"}},
	}
}

func newTestOrchestrator(vectorStore fakeVectorStore, graphStore *fakeGraphStore, generator *mockGenerator, opts ...OrchestratorOption) (*Orchestrator, *Metrics) {
	metrics, _ := NewMetrics(nil)
	hook := retrieval.WithDegradeHook(metrics.Degraded)

	var graph *retrieval.GraphRetriever
	if graphStore != nil {
		graph = retrieval.NewGraphRetriever(graphStore, hook)
	} else {
		graph = retrieval.NewGraphRetriever(nil, hook)
	}
	engine := retrieval.NewEngine(retrieval.NewVectorRetriever(vectorStore, hook), graph)

	opts = append([]OrchestratorOption{WithMetrics(metrics)}, opts...)
	return NewOrchestrator(engine, NewSynthesizer(generator, "llama3.2", nil), opts...), metrics
}

func TestOrchestratorAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("Meta risks end to end", func(t *testing.T) {
		generator := &mockGenerator{}
		generator.On("Generate", mock.Anything, "llama3.2", mock.Anything).
			Return(&model.Generation{Text: "Meta faces regulatory and advertising risks [Source 1]."}, nil).Once()
		orchestrator, _ := newTestOrchestrator(metaVectorStore(), metaGraphStore(), generator)

		result, err := orchestrator.Answer(ctx, "What are Meta's main risks?", model.DefaultAnswerOptions())
		require.NoError(t, err)

		assert.Equal(t, "What are Meta's main risks?", result.Question)
		assert.Equal(t, "Meta faces regulatory and advertising risks [Source 1].", result.Answer)
		assert.Equal(t, 2, result.SourceCounts.VectorResults)
		assert.Equal(t, 1, result.SourceCounts.GraphEntities)
		require.Len(t, result.Citations, 2)
		assert.Equal(t, 0.9, result.Citations[0].Relevance)
		assert.Equal(t, 0.6, result.Citations[1].Relevance)
		assert.Equal(t, "https://sec.gov/meta", result.Citations[0].Locator)
		require.Len(t, result.GraphPaths, 1)
		assert.Equal(t, "META", result.GraphPaths[0].SourceKey)

		prompt := generator.Calls[0].Arguments.String(2)
		assert.Contains(t, prompt, "[Source 1: META]")
		assert.Contains(t, prompt, "[Source 2: META]")
		assert.Contains(t, prompt, "Company: Meta Platforms Inc.")
		assert.Contains(t, prompt, "  Sector: Technology")
	})

	t.Run("Graph is not touched when not requested", func(t *testing.T) {
		generator := &mockGenerator{}
		generator.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(&model.Generation{Text: "ok"}, nil)
		graphStore := metaGraphStore()
		orchestrator, _ := newTestOrchestrator(metaVectorStore(), graphStore, generator)

		result, err := orchestrator.Answer(ctx, "What are Meta's main risks?", model.AnswerOptions{TopK: 5, IncludeGraph: false})
		require.NoError(t, err)
		assert.Equal(t, 0, graphStore.calls)
		assert.Equal(t, 0, result.SourceCounts.GraphEntities)
		assert.NotNil(t, result.GraphPaths)
		assert.Empty(t, result.GraphPaths)
	})

	t.Run("No evidence is refused without calling the generator", func(t *testing.T) {
		generator := &mockGenerator{}
		orchestrator, metrics := newTestOrchestrator(fakeVectorStore{result: &model.VectorSearchResult{}}, nil, generator)

		result, err := orchestrator.Answer(ctx, "What are Meta's main risks?", model.DefaultAnswerOptions())
		require.NoError(t, err)
		assert.Equal(t, RefusalMessage, result.Answer)
		assert.Empty(t, result.Citations)
		generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.refusalsTotal))
	})

	t.Run("Failed stores degrade into a refusal", func(t *testing.T) {
		generator := &mockGenerator{}
		graphStore := &fakeGraphStore{err: errors.New("graph down")}
		orchestrator, metrics := newTestOrchestrator(fakeVectorStore{err: errors.New("index down")}, graphStore, generator)

		result, err := orchestrator.Answer(ctx, "What are Meta's main risks?", model.DefaultAnswerOptions())
		require.NoError(t, err)
		assert.Equal(t, RefusalMessage, result.Answer)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.degradedSteps.WithLabelValues(StepVectorSearch)))
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.degradedSteps.WithLabelValues(StepGraphSearch)))
	})

	t.Run("Generator failure is reported in the answer", func(t *testing.T) {
		generator := &mockGenerator{}
		generator.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("model not found"))
		orchestrator, metrics := newTestOrchestrator(metaVectorStore(), nil, generator)

		result, err := orchestrator.Answer(ctx, "What are Meta's main risks?", model.DefaultAnswerOptions())
		require.NoError(t, err)
		assert.Equal(t, "Error generating answer: model not found", result.Answer)
		assert.Empty(t, result.Citations)
		assert.Equal(t, 2, result.SourceCounts.VectorResults)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.degradedSteps.WithLabelValues(StepGenerate)))
	})

	t.Run("Blank question is an error", func(t *testing.T) {
		orchestrator, _ := newTestOrchestrator(metaVectorStore(), nil, &mockGenerator{})

		_, err := orchestrator.Answer(ctx, "  ", model.DefaultAnswerOptions())
		assert.ErrorIs(t, err, helper.ErrEmptyQuestion)
	})

	t.Run("Steps are traced in order under one answer span", func(t *testing.T) {
		recorder := tracetest.NewSpanRecorder()
		provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		generator := &mockGenerator{}
		generator.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(&model.Generation{Text: "ok"}, nil)
		orchestrator, _ := newTestOrchestrator(metaVectorStore(), metaGraphStore(), generator, WithTracer(provider.Tracer("test")))

		_, err := orchestrator.Answer(ctx, "What are Meta's main risks?", model.DefaultAnswerOptions())
		require.NoError(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 4)
		assert.Equal(t, SpanRetrieve, spans[0].Name())
		assert.Equal(t, SpanBuildContext, spans[1].Name())
		assert.Equal(t, SpanGenerate, spans[2].Name())
		assert.Equal(t, SpanAnswer, spans[3].Name())
		for _, span := range spans[:3] {
			assert.Equal(t, spans[3].SpanContext().SpanID(), span.Parent().SpanID())
		}
	})
}

func TestNewMetrics(t *testing.T) {
	t.Run("Metrics register once per registry", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		_, err := NewMetrics(registry)
		require.NoError(t, err)

		_, err = NewMetrics(registry)
		assert.Error(t, err)
	})

	t.Run("Nil metrics record nothing", func(t *testing.T) {
		var metrics *Metrics
		assert.NotPanics(t, func() { metrics.Degraded(StepGenerate, errors.New("x")) })
	})
}
