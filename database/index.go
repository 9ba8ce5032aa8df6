package database

import (
	"context"
	"fmt"
	"time"

	"github.com/siherrmann/fingrapher/helper"
)

// Vector index types supported by ChangeIndexType
const (
	IndexTypeHNSW    = "hnsw"
	IndexTypeIVFFlat = "ivfflat"
)

// IndexParams tunes the vector index. Zero values use the pgvector defaults
// (m 16, ef_construction 64 for HNSW and 100 lists for IVFFlat).
type IndexParams struct {
	M              int
	EFConstruction int
	Lists          int
}

// ChangeIndexType rebuilds the chunk embedding index as HNSW or IVFFlat.
// Both use cosine distance, the metric of the similarity search.
func (h *ChunksDBHandler) ChangeIndexType(ctx context.Context, indexType string, params IndexParams) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	var createIndexSQL string
	switch indexType {
	case IndexTypeHNSW:
		m, efConstruction := params.M, params.EFConstruction
		if m <= 0 {
			m = 16
		}
		if efConstruction <= 0 {
			efConstruction = 64
		}
		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			m, efConstruction,
		)
	case IndexTypeIVFFlat:
		lists := params.Lists
		if lists <= 0 {
			lists = 100
		}
		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			lists,
		)
	default:
		return helper.NewError("change index type", fmt.Errorf("unsupported index type: %s (use 'hnsw' or 'ivfflat')", indexType))
	}

	_, err := h.db.Instance.ExecContext(ctx, `DROP INDEX IF EXISTS idx_chunks_embedding;`)
	if err != nil {
		return helper.NewError("drop index", err)
	}

	_, err = h.db.Instance.ExecContext(ctx, createIndexSQL)
	if err != nil {
		return helper.NewError("create index", err)
	}

	h.db.Logger.Info("Rebuilt vector index", "type", indexType)

	return nil
}
