package retrieval

import (
	"context"
	"testing"

	"github.com/siherrmann/fingrapher/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineStrategy(t *testing.T) {
	vector := NewVectorRetriever(&fakeVectorStore{result: &model.VectorSearchResult{}})

	t.Run("Hybrid strategy when the graph is requested and available", func(t *testing.T) {
		engine := NewEngine(vector, NewGraphRetriever(&fakeGraphStore{}))
		assert.IsType(t, &HybridStrategy{}, engine.Strategy(model.DefaultAnswerOptions()))
	})

	t.Run("Vector only strategy when the graph is not requested", func(t *testing.T) {
		engine := NewEngine(vector, NewGraphRetriever(&fakeGraphStore{}))
		assert.IsType(t, &VectorOnlyStrategy{}, engine.Strategy(model.AnswerOptions{TopK: 5}))
	})

	t.Run("Vector only strategy when the graph is unavailable", func(t *testing.T) {
		engine := NewEngine(vector, NewGraphRetriever(nil))
		assert.False(t, engine.GraphAvailable())
		assert.IsType(t, &VectorOnlyStrategy{}, engine.Strategy(model.DefaultAnswerOptions()))
	})

	t.Run("Nil graph retriever is unavailable", func(t *testing.T) {
		engine := NewEngine(vector, nil)
		assert.False(t, engine.GraphAvailable())
	})
}

func TestEngineRetrieve(t *testing.T) {
	ctx := context.Background()

	vectorStore := &fakeVectorStore{result: &model.VectorSearchResult{
		Documents: []string{"Meta faces regulatory risk."},
		Metadatas: []map[string]string{{"ticker": "META"}},
		Distances: []float64{0.2},
	}}
	graphStore := &fakeGraphStore{
		nodes: map[string][]model.GraphEntity{"meta's": {company("META", "Meta Platforms", "Technology")}},
		paths: map[string][]model.GraphPath{"META": {{SourceKey: "META", RelationType: "OPERATES_IN", TargetType: "Sector", TargetLabel: "Technology"}}},
	}
	engine := NewEngine(NewVectorRetriever(vectorStore), NewGraphRetriever(graphStore))

	t.Run("Retrieve gathers vector and graph evidence", func(t *testing.T) {
		evidence := engine.Retrieve(ctx, "What are Meta's main risks?", model.AnswerOptions{TopK: 3, IncludeGraph: true, TickerFilter: "META"})
		require.Len(t, evidence.Vector, 1)
		require.Len(t, evidence.Entities, 1)
		require.Len(t, evidence.Paths, 1)
		assert.Equal(t, vectorCall{"What are Meta's main risks?", 3, "META"}, vectorStore.calls[len(vectorStore.calls)-1])
	})

	t.Run("Retrieve without graph leaves the graph untouched", func(t *testing.T) {
		matchCalls := len(graphStore.matchCalls)

		evidence := engine.Retrieve(ctx, "What are Meta's main risks?", model.AnswerOptions{TopK: 5})
		assert.Len(t, evidence.Vector, 1)
		assert.NotNil(t, evidence.Entities)
		assert.Empty(t, evidence.Entities)
		assert.Empty(t, evidence.Paths)
		assert.Equal(t, matchCalls, len(graphStore.matchCalls))
	})
}
