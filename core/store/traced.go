package store

import (
	"context"

	"github.com/siherrmann/fingrapher/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names of the traced stores
const (
	SpanVectorSearch  = "fingrapher.store.vector_search"
	SpanMatchNodes    = "fingrapher.store.match_nodes"
	SpanOutgoingEdges = "fingrapher.store.outgoing_edges"
	SpanUpsertNode    = "fingrapher.store.upsert_node"
	SpanUpsertEdge    = "fingrapher.store.upsert_edge"
)

// TracedVectorStore wraps a VectorStore with OpenTelemetry spans
type TracedVectorStore struct {
	inner  VectorStore
	tracer trace.Tracer
}

// NewTracedVectorStore wraps inner, creating one span per search
func NewTracedVectorStore(inner VectorStore, tracer trace.Tracer) *TracedVectorStore {
	return &TracedVectorStore{inner: inner, tracer: tracer}
}

// Search traces the inner search with the query size and hit count
func (s *TracedVectorStore) Search(ctx context.Context, query string, topK int, tickerFilter string) (*model.VectorSearchResult, error) {
	ctx, span := s.tracer.Start(ctx, SpanVectorSearch)
	defer span.End()

	span.SetAttributes(
		attribute.Int("fingrapher.query_length", len(query)),
		attribute.Int("fingrapher.top_k", topK),
		attribute.String("fingrapher.ticker_filter", tickerFilter),
	)

	result, err := s.inner.Search(ctx, query, topK, tickerFilter)
	if err != nil {
		endWithError(span, err)
		return nil, err
	}

	if result != nil {
		span.SetAttributes(attribute.Int("fingrapher.results", len(result.Documents)))
	}
	span.SetStatus(codes.Ok, "search succeeded")
	return result, nil
}

// TracedGraphStore wraps a GraphStore with OpenTelemetry spans
type TracedGraphStore struct {
	inner  GraphStore
	tracer trace.Tracer
}

// NewTracedGraphStore wraps inner, creating one span per call
func NewTracedGraphStore(inner GraphStore, tracer trace.Tracer) *TracedGraphStore {
	return &TracedGraphStore{inner: inner, tracer: tracer}
}

// MatchNodes traces the inner node match
func (s *TracedGraphStore) MatchNodes(ctx context.Context, label model.Label, term string, limit int) ([]model.GraphEntity, error) {
	ctx, span := s.tracer.Start(ctx, SpanMatchNodes)
	defer span.End()

	span.SetAttributes(
		attribute.String("fingrapher.label", label.String()),
		attribute.String("fingrapher.term", term),
		attribute.Int("fingrapher.limit", limit),
	)

	entities, err := s.inner.MatchNodes(ctx, label, term, limit)
	if err != nil {
		endWithError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("fingrapher.results", len(entities)))
	span.SetStatus(codes.Ok, "match succeeded")
	return entities, nil
}

// OutgoingEdges traces the inner one-hop expansion
func (s *TracedGraphStore) OutgoingEdges(ctx context.Context, label model.Label, keyField string, keyValue string, limit int) ([]model.GraphPath, error) {
	ctx, span := s.tracer.Start(ctx, SpanOutgoingEdges)
	defer span.End()

	span.SetAttributes(
		attribute.String("fingrapher.label", label.String()),
		attribute.String("fingrapher.key_field", keyField),
		attribute.String("fingrapher.key_value", keyValue),
		attribute.Int("fingrapher.limit", limit),
	)

	paths, err := s.inner.OutgoingEdges(ctx, label, keyField, keyValue, limit)
	if err != nil {
		endWithError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("fingrapher.results", len(paths)))
	span.SetStatus(codes.Ok, "expansion succeeded")
	return paths, nil
}

// TracedGraphWriter wraps a GraphWriter with OpenTelemetry spans
type TracedGraphWriter struct {
	inner  GraphWriter
	tracer trace.Tracer
}

// NewTracedGraphWriter wraps inner, creating one span per upsert
func NewTracedGraphWriter(inner GraphWriter, tracer trace.Tracer) *TracedGraphWriter {
	return &TracedGraphWriter{inner: inner, tracer: tracer}
}

// UpsertNode traces the inner node upsert
func (w *TracedGraphWriter) UpsertNode(ctx context.Context, label model.Label, name string, props map[string]interface{}) error {
	ctx, span := w.tracer.Start(ctx, SpanUpsertNode)
	defer span.End()

	span.SetAttributes(
		attribute.String("fingrapher.label", label.String()),
		attribute.String("fingrapher.name", name),
	)

	err := w.inner.UpsertNode(ctx, label, name, props)
	if err != nil {
		endWithError(span, err)
		return err
	}

	span.SetStatus(codes.Ok, "upsert succeeded")
	return nil
}

// UpsertEdge traces the inner edge upsert
func (w *TracedGraphWriter) UpsertEdge(ctx context.Context, sourceName string, relation model.Label, targetName string, props map[string]interface{}) error {
	ctx, span := w.tracer.Start(ctx, SpanUpsertEdge)
	defer span.End()

	span.SetAttributes(
		attribute.String("fingrapher.source", sourceName),
		attribute.String("fingrapher.relation", relation.String()),
		attribute.String("fingrapher.target", targetName),
	)

	err := w.inner.UpsertEdge(ctx, sourceName, relation, targetName, props)
	if err != nil {
		endWithError(span, err)
		return err
	}

	span.SetStatus(codes.Ok, "upsert succeeded")
	return nil
}

func endWithError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Bool("error", true))
}
