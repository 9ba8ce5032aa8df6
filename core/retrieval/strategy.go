package retrieval

import (
	"context"

	"github.com/siherrmann/fingrapher/model"
)

// Evidence is everything retrieved for one question
type Evidence struct {
	Vector   []model.VectorEvidence
	Entities []model.GraphEntity
	Paths    []model.GraphPath
}

// Strategy defines a retrieval strategy
type Strategy interface {
	Retrieve(ctx context.Context, question string, opts model.AnswerOptions) *Evidence
}

// VectorOnlyStrategy only searches the vector store
type VectorOnlyStrategy struct {
	vector *VectorRetriever
}

// NewVectorOnlyStrategy creates a new vector-only strategy
func NewVectorOnlyStrategy(vector *VectorRetriever) *VectorOnlyStrategy {
	return &VectorOnlyStrategy{vector: vector}
}

// Retrieve performs vector-only retrieval
func (s *VectorOnlyStrategy) Retrieve(ctx context.Context, question string, opts model.AnswerOptions) *Evidence {
	return &Evidence{
		Vector:   s.vector.Search(ctx, question, opts.TopK, WithTickerFilter(opts.TickerFilter)),
		Entities: []model.GraphEntity{},
		Paths:    []model.GraphPath{},
	}
}

// HybridStrategy searches the vector store, then the graph
type HybridStrategy struct {
	vector *VectorRetriever
	graph  *GraphRetriever
}

// NewHybridStrategy creates a new vector plus graph strategy
func NewHybridStrategy(vector *VectorRetriever, graph *GraphRetriever) *HybridStrategy {
	return &HybridStrategy{vector: vector, graph: graph}
}

// Retrieve runs the vector search and then the graph search, in that order
func (s *HybridStrategy) Retrieve(ctx context.Context, question string, opts model.AnswerOptions) *Evidence {
	evidence := NewVectorOnlyStrategy(s.vector).Retrieve(ctx, question, opts)

	entities, paths := s.graph.Search(ctx, question)
	if entities != nil {
		evidence.Entities = entities
	}
	if paths != nil {
		evidence.Paths = paths
	}

	return evidence
}
