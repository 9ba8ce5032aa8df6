package answer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/siherrmann/fingrapher/core/retrieval"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names of an answer
const (
	SpanAnswer       = "fingrapher.answer"
	SpanRetrieve     = "fingrapher.answer.retrieve"
	SpanBuildContext = "fingrapher.answer.build_context"
	SpanGenerate     = "fingrapher.answer.generate"
)

const tracerName = "github.com/siherrmann/fingrapher/core/answer"

// Orchestrator answers a question by retrieving evidence, assembling a
// context and synthesizing an answer, strictly in that order
type Orchestrator struct {
	engine      *retrieval.Engine
	synthesizer *Synthesizer
	tracer      trace.Tracer
	metrics     *Metrics
	logger      *slog.Logger
}

// OrchestratorOption configures an Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithTracer sets the tracer, the global otel tracer otherwise
func WithTracer(tracer trace.Tracer) OrchestratorOption {
	return func(o *Orchestrator) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithMetrics records step durations and outcomes in metrics
func WithMetrics(metrics *Metrics) OrchestratorOption {
	return func(o *Orchestrator) {
		o.metrics = metrics
	}
}

// WithLogger sets the logger, slog.Default() otherwise
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(engine *retrieval.Engine, synthesizer *Synthesizer, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		engine:      engine,
		synthesizer: synthesizer,
		tracer:      otel.Tracer(tracerName),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Answer runs vector search, graph search (if requested and available),
// context assembly and synthesis. Only a blank question is an error,
// retrieval and generation failures degrade into the result.
func (o *Orchestrator) Answer(ctx context.Context, question string, opts model.AnswerOptions) (*model.AnswerResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, helper.ErrEmptyQuestion
	}
	if opts.TopK <= 0 {
		opts.TopK = model.DefaultAnswerOptions().TopK
	}

	ctx, span := o.tracer.Start(ctx, SpanAnswer)
	defer span.End()
	span.SetAttributes(
		attribute.Int("fingrapher.top_k", opts.TopK),
		attribute.Bool("fingrapher.include_graph", opts.IncludeGraph),
		attribute.Bool("fingrapher.graph_available", o.engine.GraphAvailable()),
	)

	evidence := o.retrieve(ctx, question, opts)
	contextText := o.buildContext(ctx, evidence)
	answer, citations := o.generate(ctx, question, contextText, evidence.Vector)

	refused := strings.TrimSpace(contextText) == ""
	o.metrics.observeAnswer(len(evidence.Vector), len(evidence.Entities), refused)

	span.SetAttributes(
		attribute.Int("fingrapher.vector_results", len(evidence.Vector)),
		attribute.Int("fingrapher.graph_entities", len(evidence.Entities)),
		attribute.Int("fingrapher.citations", len(citations)),
		attribute.Bool("fingrapher.refused", refused),
	)
	span.SetStatus(codes.Ok, "answered")

	o.logger.Info(
		"Answered question",
		slog.Int("vector_results", len(evidence.Vector)),
		slog.Int("graph_entities", len(evidence.Entities)),
		slog.Int("graph_paths", len(evidence.Paths)),
		slog.Int("citations", len(citations)),
	)

	return &model.AnswerResult{
		Question:   question,
		Answer:     answer,
		Citations:  citations,
		GraphPaths: evidence.Paths,
		SourceCounts: model.SourceCounts{
			VectorResults: len(evidence.Vector),
			GraphEntities: len(evidence.Entities),
		},
	}, nil
}

func (o *Orchestrator) retrieve(ctx context.Context, question string, opts model.AnswerOptions) *retrieval.Evidence {
	ctx, span := o.tracer.Start(ctx, SpanRetrieve)
	defer span.End()
	defer o.metrics.observeStep(StepRetrieve, time.Now())

	evidence := o.engine.Retrieve(ctx, question, opts)
	span.SetAttributes(
		attribute.Int("fingrapher.vector_results", len(evidence.Vector)),
		attribute.Int("fingrapher.graph_entities", len(evidence.Entities)),
		attribute.Int("fingrapher.graph_paths", len(evidence.Paths)),
	)
	return evidence
}

func (o *Orchestrator) buildContext(ctx context.Context, evidence *retrieval.Evidence) string {
	_, span := o.tracer.Start(ctx, SpanBuildContext)
	defer span.End()
	defer o.metrics.observeStep(StepContext, time.Now())

	contextText := BuildContext(evidence.Vector, evidence.Entities)
	span.SetAttributes(attribute.Int("fingrapher.context_runes", len([]rune(contextText))))
	return contextText
}

func (o *Orchestrator) generate(ctx context.Context, question string, contextText string, evidence []model.VectorEvidence) (string, []model.Citation) {
	ctx, span := o.tracer.Start(ctx, SpanGenerate)
	defer span.End()
	defer o.metrics.observeStep(StepGenerate, time.Now())

	answer, citations, err := o.synthesizer.synthesize(ctx, question, contextText, evidence)
	if err != nil {
		o.metrics.Degraded(StepGenerate, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return answer, citations
	}

	span.SetStatus(codes.Ok, "generated")
	return answer, citations
}
