package retrieval

import (
	"context"
	"log/slog"

	"github.com/siherrmann/fingrapher/core/store"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
)

// Graph lookup bounds
const (
	MaxKeywords       = 5
	MatchesPerKeyword = 3
	MaxPaths          = 10
)

// GraphRetriever searches the graph for companies named in a question and
// expands the first match by one hop.
type GraphRetriever struct {
	store   store.GraphStore
	options retrieverOptions
}

// NewGraphRetriever creates a retriever on graphStore. A nil store makes
// the retriever unavailable, which is logged once here.
func NewGraphRetriever(graphStore store.GraphStore, opts ...Option) *GraphRetriever {
	retriever := &GraphRetriever{
		store:   graphStore,
		options: newRetrieverOptions(opts),
	}
	if graphStore == nil {
		retriever.options.logger.Warn("Graph store not available, graph retrieval disabled")
	}
	return retriever
}

// Available reports whether a graph store is connected
func (g *GraphRetriever) Available() bool {
	return g != nil && g.store != nil
}

// MatchEntities searches the Company nodes with the first MaxKeywords
// keywords, up to MatchesPerKeyword each. Matches are not deduplicated.
func (g *GraphRetriever) MatchEntities(ctx context.Context, keywords []string) ([]model.GraphEntity, error) {
	if !g.Available() {
		return nil, helper.ErrGraphUnavailable
	}

	if len(keywords) > MaxKeywords {
		keywords = keywords[:MaxKeywords]
	}

	entities := []model.GraphEntity{}
	for _, keyword := range keywords {
		matches, err := g.store.MatchNodes(ctx, model.LabelCompany, keyword, MatchesPerKeyword)
		if err != nil {
			return nil, helper.NewError("match "+keyword, err)
		}
		entities = append(entities, matches...)
	}
	return entities, nil
}

// ExpandFirst returns up to MaxPaths outgoing edges of the first entity,
// keyed by its ticker. Other entities are never expanded.
func (g *GraphRetriever) ExpandFirst(ctx context.Context, entities []model.GraphEntity) ([]model.GraphPath, error) {
	if !g.Available() {
		return nil, helper.ErrGraphUnavailable
	}
	if len(entities) == 0 {
		return []model.GraphPath{}, nil
	}

	ticker := entities[0].Attr("ticker")
	if ticker == "" {
		return []model.GraphPath{}, nil
	}

	paths, err := g.store.OutgoingEdges(ctx, model.LabelCompany, "ticker", ticker, MaxPaths)
	if err != nil {
		return nil, helper.NewError("expand "+ticker, err)
	}
	return paths, nil
}

// Search extracts the keywords of question, matches them and expands the
// first match. Any store failure yields no entities and no paths.
func (g *GraphRetriever) Search(ctx context.Context, question string) ([]model.GraphEntity, []model.GraphPath) {
	if !g.Available() {
		return nil, nil
	}

	entities, err := g.MatchEntities(ctx, ExtractKeywords(question))
	if err != nil {
		g.options.degrade(StepGraphSearch, err)
		return nil, nil
	}

	paths, err := g.ExpandFirst(ctx, entities)
	if err != nil {
		g.options.degrade(StepGraphSearch, err)
		return nil, nil
	}

	g.options.logger.Debug("Graph search", slog.Int("entities", len(entities)), slog.Int("paths", len(paths)))

	return entities, paths
}
