package retrieval

import (
	"context"

	"github.com/siherrmann/fingrapher/model"
)

type vectorCall struct {
	query        string
	topK         int
	tickerFilter string
}

type fakeVectorStore struct {
	result *model.VectorSearchResult
	err    error
	calls  []vectorCall
}

func (f *fakeVectorStore) Search(ctx context.Context, query string, topK int, tickerFilter string) (*model.VectorSearchResult, error) {
	f.calls = append(f.calls, vectorCall{query, topK, tickerFilter})
	return f.result, f.err
}

type matchCall struct {
	label model.Label
	term  string
	limit int
}

type expandCall struct {
	label    model.Label
	keyField string
	keyValue string
	limit    int
}

type fakeGraphStore struct {
	// nodes per search term
	nodes       map[string][]model.GraphEntity
	paths       map[string][]model.GraphPath
	matchErr    error
	expandErr   error
	matchCalls  []matchCall
	expandCalls []expandCall
}

func (f *fakeGraphStore) MatchNodes(ctx context.Context, label model.Label, term string, limit int) ([]model.GraphEntity, error) {
	f.matchCalls = append(f.matchCalls, matchCall{label, term, limit})
	if f.matchErr != nil {
		return nil, f.matchErr
	}
	nodes := f.nodes[term]
	if len(nodes) > limit {
		nodes = nodes[:limit]
	}
	return nodes, nil
}

func (f *fakeGraphStore) OutgoingEdges(ctx context.Context, label model.Label, keyField string, keyValue string, limit int) ([]model.GraphPath, error) {
	f.expandCalls = append(f.expandCalls, expandCall{label, keyField, keyValue, limit})
	if f.expandErr != nil {
		return nil, f.expandErr
	}
	return f.paths[keyValue], nil
}

func company(ticker, name, sector string) model.GraphEntity {
	return model.GraphEntity{
		EntityType: "Company",
		Attributes: map[string]interface{}{"ticker": ticker, "name": name, "sector": sector},
	}
}
