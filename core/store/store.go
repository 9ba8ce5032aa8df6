package store

import (
	"context"

	"github.com/siherrmann/fingrapher/model"
)

// VectorStore runs a semantic search over the indexed passages. The three
// arrays of the result are index-aligned, best match first. An empty
// tickerFilter searches every company.
type VectorStore interface {
	Search(ctx context.Context, query string, topK int, tickerFilter string) (*model.VectorSearchResult, error)
}

// GraphStore is the read side of the graph used by retrieval
type GraphStore interface {
	// MatchNodes returns up to limit nodes of label whose name, ticker,
	// sector or industry contains term, case-insensitive.
	MatchNodes(ctx context.Context, label model.Label, term string, limit int) ([]model.GraphEntity, error)
	// OutgoingEdges returns up to limit one-hop edges leaving the nodes of
	// label whose property keyField equals keyValue.
	OutgoingEdges(ctx context.Context, label model.Label, keyField string, keyValue string, limit int) ([]model.GraphPath, error)
}

// GraphWriter is the write side of the graph used by ingestion. Both
// operations are idempotent upserts.
type GraphWriter interface {
	UpsertNode(ctx context.Context, label model.Label, name string, props map[string]interface{}) error
	UpsertEdge(ctx context.Context, sourceName string, relation model.Label, targetName string, props map[string]interface{}) error
}

// GraphBackend is a complete graph store implementation
type GraphBackend interface {
	GraphStore
	GraphWriter
	UpsertCompany(ctx context.Context, company model.Company) error
	// GetCompany returns nil without error if no company has the ticker.
	GetCompany(ctx context.Context, ticker string) (*model.GraphEntity, error)
	Stats(ctx context.Context) (*model.GraphStats, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
