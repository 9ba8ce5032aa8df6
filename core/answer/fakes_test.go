package answer

import (
	"context"

	"github.com/siherrmann/fingrapher/model"
	"github.com/stretchr/testify/mock"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, modelName, prompt string) (*model.Generation, error) {
	args := m.Called(ctx, modelName, prompt)
	generation, _ := args.Get(0).(*model.Generation)
	return generation, args.Error(1)
}

type fakeVectorStore struct {
	result *model.VectorSearchResult
	err    error
}

func (f fakeVectorStore) Search(ctx context.Context, query string, topK int, tickerFilter string) (*model.VectorSearchResult, error) {
	return f.result, f.err
}

type fakeGraphStore struct {
	// entities per search term
	entities map[string][]model.GraphEntity
	paths    []model.GraphPath
	err      error
	calls    int
}

func (f *fakeGraphStore) MatchNodes(ctx context.Context, label model.Label, term string, limit int) ([]model.GraphEntity, error) {
	f.calls++
	return f.entities[term], f.err
}

func (f *fakeGraphStore) OutgoingEdges(ctx context.Context, label model.Label, keyField string, keyValue string, limit int) ([]model.GraphPath, error) {
	f.calls++
	return f.paths, f.err
}
