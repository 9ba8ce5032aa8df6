package retrieval

import (
	"context"

	"github.com/siherrmann/fingrapher/model"
)

// Engine selects the retrieval strategy of a question
type Engine struct {
	vector *VectorRetriever
	graph  *GraphRetriever
}

// NewEngine creates a new retrieval engine. graph may be nil.
func NewEngine(vector *VectorRetriever, graph *GraphRetriever) *Engine {
	return &Engine{
		vector: vector,
		graph:  graph,
	}
}

// GraphAvailable reports whether graph retrieval can run
func (e *Engine) GraphAvailable() bool {
	return e.graph.Available()
}

// Strategy returns the hybrid strategy if the graph is requested and
// available, the vector-only strategy otherwise
func (e *Engine) Strategy(opts model.AnswerOptions) Strategy {
	if opts.IncludeGraph && e.GraphAvailable() {
		return NewHybridStrategy(e.vector, e.graph)
	}
	return NewVectorOnlyStrategy(e.vector)
}

// Retrieve gathers the evidence of a question with the selected strategy
func (e *Engine) Retrieve(ctx context.Context, question string, opts model.AnswerOptions) *Evidence {
	return e.Strategy(opts).Retrieve(ctx, question, opts)
}
