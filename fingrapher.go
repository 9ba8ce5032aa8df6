package fingrapher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/siherrmann/fingrapher/core/answer"
	"github.com/siherrmann/fingrapher/core/ingest"
	"github.com/siherrmann/fingrapher/core/llm"
	"github.com/siherrmann/fingrapher/core/pipeline"
	"github.com/siherrmann/fingrapher/core/retrieval"
	"github.com/siherrmann/fingrapher/core/store"
	"github.com/siherrmann/fingrapher/database"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
	loadSql "github.com/siherrmann/fingrapher/sql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/siherrmann/fingrapher"

// FinGrapher answers questions about public companies from filing passages
// and a company knowledge graph.
type FinGrapher struct {
	DB           *helper.Database
	Config       *model.Config
	Pipeline     *pipeline.Pipeline
	Vector       *store.PostgresVectorStore
	Graph        store.GraphBackend // nil if no graph backend is available
	Generator    llm.Generator
	Orchestrator *answer.Orchestrator
	Ingestor     *ingest.Ingestor
	Extractor    *pipeline.LLMExtractor
	Metrics      *answer.Metrics
	// Logging
	log *slog.Logger
}

type options struct {
	pipeline   *pipeline.Pipeline
	generator  llm.Generator
	logger     *slog.Logger
	registerer prometheus.Registerer
	tracer     trace.Tracer
	ner        bool
}

// Option configures NewFinGrapher
type Option func(*options)

// WithPipeline replaces the default semantic chunking and embedding pipeline
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(o *options) {
		o.pipeline = p
	}
}

// WithGenerator replaces the Ollama generator
func WithGenerator(generator llm.Generator) Option {
	return func(o *options) {
		o.generator = generator
	}
}

// WithLogger replaces the pretty stdout logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegisterer registers the answer metrics with registerer
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = registerer
	}
}

// WithTracer replaces the global OpenTelemetry tracer
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithNERExtraction runs the offline NER model over every added document
// and merges the entities it finds into the graph
func WithNERExtraction() Option {
	return func(o *options) {
		o.ner = true
	}
}

// NewFinGrapher connects the stores and wires retrieval, answering and
// ingestion. An unreachable Neo4j backend is logged and the instance runs
// without graph. An unreachable PostgreSQL database panics.
func NewFinGrapher(ctx context.Context, config *model.Config, opts ...Option) (*FinGrapher, error) {
	if config == nil {
		defaultConfig := model.DefaultConfig()
		config = &defaultConfig
	}
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// Logger
	logger := o.logger
	if logger == nil {
		logger = helper.NewLogger(os.Stdout, parseLevel(config.LogLevel))
	}
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	// Initialize database
	db := helper.NewDatabase("fingrapher", &config.Database, logger)
	err = loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	p := o.pipeline
	if p == nil {
		embedder, err := pipeline.DefaultEmbedder(config.Embedding.Model)
		if err != nil {
			return nil, helper.NewError("create default embedder", err)
		}
		p = pipeline.NewPipeline(pipeline.DefaultChunker(500, 0.7), embedder)
	}
	if o.ner {
		extractor, err := pipeline.NERExtractor()
		if err != nil {
			return nil, helper.NewError("create ner extractor", err)
		}
		p.SetExtractor(extractor)
	}

	vector, err := store.NewPostgresVectorStore(db, p, config.Embedding.Dimension, false)
	if err != nil {
		return nil, helper.NewError("create vector store", err)
	}

	graph, err := newGraphBackend(ctx, config, db, logger)
	if err != nil {
		return nil, err
	}

	generator := o.generator
	if generator == nil {
		ollamaGenerator, err := llm.NewOllamaGenerator(config.LLM)
		if err != nil {
			return nil, helper.NewError("create generator", err)
		}
		generator = ollamaGenerator
	}

	metrics, err := answer.NewMetrics(o.registerer)
	if err != nil {
		return nil, helper.NewError("create metrics", err)
	}

	retrieverOpts := []retrieval.Option{
		retrieval.WithLogger(logger),
		retrieval.WithDegradeHook(metrics.Degraded),
	}
	var graphStore store.GraphStore
	var graphWriter store.GraphWriter
	if graph != nil {
		graphStore = store.NewTracedGraphStore(graph, tracer)
		graphWriter = store.NewTracedGraphWriter(graph, tracer)
	}
	engine := retrieval.NewEngine(
		retrieval.NewVectorRetriever(store.NewTracedVectorStore(vector, tracer), retrieverOpts...),
		retrieval.NewGraphRetriever(graphStore, retrieverOpts...),
	)

	orchestrator := answer.NewOrchestrator(
		engine,
		answer.NewSynthesizer(generator, config.LLM.Model, logger),
		answer.WithTracer(tracer),
		answer.WithMetrics(metrics),
		answer.WithLogger(logger),
	)

	return &FinGrapher{
		DB:           db,
		Config:       config,
		Pipeline:     p,
		Vector:       vector,
		Graph:        graph,
		Generator:    generator,
		Orchestrator: orchestrator,
		Ingestor:     ingest.NewIngestor(graphWriter, logger),
		Extractor:    pipeline.NewLLMExtractor(generator, config.LLM.Model, logger),
		Metrics:      metrics,
		log:          logger,
	}, nil
}

func newGraphBackend(ctx context.Context, config *model.Config, db *helper.Database, logger *slog.Logger) (store.GraphBackend, error) {
	switch config.GraphBackend {
	case model.GraphBackendPostgres:
		graph, err := store.NewPostgresGraphStore(db, false)
		if err != nil {
			return nil, helper.NewError("create graph store", err)
		}
		return graph, nil
	case model.GraphBackendNeo4j:
		graph, err := store.NewNeo4jGraphStore(ctx, config.Neo4j, logger)
		if err != nil {
			logger.Warn("Graph store unavailable, answering from vector search only", slog.String("uri", config.Neo4j.URI), slog.String("error", err.Error()))
			return nil, nil
		}
		return graph, nil
	default:
		return nil, nil
	}
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	err := l.UnmarshalText([]byte(strings.TrimSpace(level)))
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// Close closes the graph backend and the database connection
func (f *FinGrapher) Close(ctx context.Context) error {
	if f.Graph != nil {
		err := f.Graph.Close(ctx)
		if err != nil {
			f.log.Warn("Failed to close graph store", slog.String("error", err.Error()))
		}
	}
	if f.DB != nil && f.DB.Instance != nil {
		return f.DB.Instance.Close()
	}
	return nil
}

// Answer answers a question. Only a blank question is an error, failing
// retrieval or generation steps degrade the result instead.
func (f *FinGrapher) Answer(ctx context.Context, question string, opts model.AnswerOptions) (result *model.AnswerResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("Answer panicked", slog.Any("panic", r))
			result = nil
			err = helper.NewError("answer", fmt.Errorf("unexpected failure: %v", r))
		}
	}()

	return f.Orchestrator.Answer(ctx, question, opts)
}

// Ask answers a question with the configured answer options
func (f *FinGrapher) Ask(ctx context.Context, question string) (*model.AnswerResult, error) {
	return f.Answer(ctx, question, f.Config.Answer)
}

// AddDocument chunks, embeds and stores a filing document. If the pipeline
// has an extractor, its extraction is merged into the graph. Extraction and
// merge problems are logged and do not fail the call.
func (f *FinGrapher) AddDocument(ctx context.Context, doc *model.Document) (int, error) {
	result, err := f.Vector.AddDocument(ctx, doc)
	if err != nil {
		return 0, err
	}

	if result.ExtractionError != nil {
		f.log.Warn("Extraction failed", slog.String("title", doc.Title), slog.String("error", result.ExtractionError.Error()))
	} else if result.Extraction != nil && f.Graph != nil {
		stats, err := f.MergeExtractions(ctx, []model.Extraction{*result.Extraction})
		if err != nil {
			f.log.Warn("Merging extraction failed", slog.String("title", doc.Title), slog.String("error", err.Error()))
		} else {
			f.log.Info("Merged extraction", slog.String("title", doc.Title), slog.Int("entities", stats.EntitiesAdded), slog.Int("failures", len(stats.Failures)))
		}
	}

	return len(result.Chunks), nil
}

// Documents lists the stored documents of a ticker, newest first
func (f *FinGrapher) Documents(ctx context.Context, ticker string, limit int) ([]*model.Document, error) {
	return f.Vector.Documents(ctx, ticker, limit)
}

// UpsertCompany merges a company with its sector and industry into the graph
func (f *FinGrapher) UpsertCompany(ctx context.Context, company model.Company) error {
	if f.Graph == nil {
		return helper.ErrGraphUnavailable
	}
	return f.Graph.UpsertCompany(ctx, company)
}

// GetCompany returns the company node of a ticker or nil if it is unknown
func (f *FinGrapher) GetCompany(ctx context.Context, ticker string) (*model.GraphEntity, error) {
	if f.Graph == nil {
		return nil, helper.ErrGraphUnavailable
	}
	return f.Graph.GetCompany(ctx, strings.ToUpper(strings.TrimSpace(ticker)))
}

// MergeExtractions merges extracted entities and relations into the graph
func (f *FinGrapher) MergeExtractions(ctx context.Context, extractions []model.Extraction) (*model.MergeStats, error) {
	return f.Ingestor.MergeExtractions(ctx, extractions)
}

// ExtractAndMerge extracts entities and relations from documents with the
// generator and merges them into the graph.
func (f *FinGrapher) ExtractAndMerge(ctx context.Context, docs []*model.Document) (*model.MergeStats, error) {
	extractions := []model.Extraction{}
	for _, extraction := range f.Extractor.BatchExtract(ctx, docs) {
		if extraction != nil {
			extractions = append(extractions, *extraction)
		}
	}
	return f.MergeExtractions(ctx, extractions)
}

// Reindex rebuilds the vector index of the chunk embeddings as
// database.IndexTypeHNSW or database.IndexTypeIVFFlat
func (f *FinGrapher) Reindex(ctx context.Context, indexType string, params database.IndexParams) error {
	err := f.Vector.Chunks().ChangeIndexType(ctx, indexType, params)
	if err != nil {
		return helper.NewError("change index type", err)
	}
	f.log.Info("Rebuilt vector index", slog.String("type", indexType))
	return nil
}

// GraphStats counts the nodes and relations of the graph
func (f *FinGrapher) GraphStats(ctx context.Context) (*model.GraphStats, error) {
	if f.Graph == nil {
		return nil, helper.ErrGraphUnavailable
	}
	return f.Graph.Stats(ctx)
}

// VectorStats counts the stored documents and chunks
func (f *FinGrapher) VectorStats(ctx context.Context) (*model.VectorStats, error) {
	return f.Vector.Stats(ctx)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Health checks the vector store, the graph store and the generator. The
// status is degraded if a configured dependency cannot be reached.
func (f *FinGrapher) Health(ctx context.Context) *model.HealthStatus {
	status := &model.HealthStatus{Status: model.HealthHealthy}

	status.VectorStore = checkComponent(ctx, f.Vector)
	if status.VectorStore.Connected {
		stats, err := f.Vector.Stats(ctx)
		if err == nil {
			status.VectorStats = stats
		}
	}

	graphConfigured := f.Config.GraphBackend != model.GraphBackendNone
	if f.Graph != nil {
		status.GraphStore = checkComponent(ctx, f.Graph)
	} else if graphConfigured {
		status.GraphStore = model.ComponentHealth{Error: helper.ErrGraphUnavailable.Error()}
	}

	if p, ok := f.Generator.(pinger); ok {
		status.LLM = checkComponent(ctx, p)
	} else {
		status.LLM = model.ComponentHealth{Connected: f.Generator != nil}
	}

	if !status.VectorStore.Connected || !status.LLM.Connected || (graphConfigured && !status.GraphStore.Connected) {
		status.Status = model.HealthDegraded
	}

	return status
}

func checkComponent(ctx context.Context, p pinger) model.ComponentHealth {
	err := p.Ping(ctx)
	if err != nil {
		return model.ComponentHealth{Error: err.Error()}
	}
	return model.ComponentHealth{Connected: true}
}
