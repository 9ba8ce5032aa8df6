package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/siherrmann/fingrapher/core/pipeline"
	"github.com/siherrmann/fingrapher/database"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
)

// PostgresVectorStore indexes document chunks in pgvector and searches them
// by cosine distance.
type PostgresVectorStore struct {
	db        *helper.Database
	documents *database.DocumentsDBHandler
	chunks    *database.ChunksDBHandler
	pipeline  *pipeline.Pipeline
	logger    *slog.Logger
}

// NewPostgresVectorStore creates the document and chunk handlers on db.
// The pipeline embeds queries and chunks documents on ingest.
func NewPostgresVectorStore(db *helper.Database, p *pipeline.Pipeline, embeddingDim int, force bool) (*PostgresVectorStore, error) {
	if p == nil || p.Embedder == nil {
		return nil, helper.NewError("vector store validation", fmt.Errorf("pipeline with embedder is required"))
	}

	documents, err := database.NewDocumentsDBHandler(db, force)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	chunks, err := database.NewChunksDBHandler(db, embeddingDim, force)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	return &PostgresVectorStore{
		db:        db,
		documents: documents,
		chunks:    chunks,
		pipeline:  p,
		logger:    db.Logger,
	}, nil
}

// Search embeds the query and returns the topK nearest chunks
func (s *PostgresVectorStore) Search(ctx context.Context, query string, topK int, tickerFilter string) (*model.VectorSearchResult, error) {
	embedding, err := s.pipeline.Embedder(query)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	chunks, err := s.chunks.SelectChunksBySimilarity(ctx, embedding, topK, strings.TrimSpace(tickerFilter))
	if err != nil {
		return nil, helper.NewError("select chunks by similarity", err)
	}

	result := &model.VectorSearchResult{
		Documents: make([]string, 0, len(chunks)),
		Metadatas: make([]map[string]string, 0, len(chunks)),
		Distances: make([]float64, 0, len(chunks)),
	}
	for _, chunk := range chunks {
		result.Documents = append(result.Documents, chunk.Content)
		result.Metadatas = append(result.Metadatas, chunk.Metadata.Strings())
		if chunk.Distance != nil {
			result.Distances = append(result.Distances, *chunk.Distance)
		}
	}
	if len(result.Distances) != len(result.Documents) {
		// partial distances cannot be aligned to their documents
		result.Distances = nil
	}

	return result, nil
}

// AddDocument stores the document, then chunks, embeds and stores its
// content. The document is removed again if a chunk cannot be stored.
func (s *PostgresVectorStore) AddDocument(ctx context.Context, doc *model.Document) (*pipeline.ProcessingResult, error) {
	if doc == nil || strings.TrimSpace(doc.Content) == "" {
		return nil, helper.NewError("document validation", fmt.Errorf("document content is empty"))
	}
	doc.Ticker = strings.ToUpper(strings.TrimSpace(doc.Ticker))

	err := s.documents.InsertDocument(ctx, doc)
	if err != nil {
		return nil, helper.NewError("insert document", err)
	}

	result, err := s.pipeline.ProcessDocument(ctx, doc)
	if err != nil {
		s.rollback(ctx, doc)
		return nil, helper.NewError("process document", err)
	}

	for _, chunk := range result.Chunks {
		chunk.DocumentID = doc.ID
		chunk.DocumentRID = doc.RID
		err = s.chunks.InsertChunk(ctx, chunk)
		if err != nil {
			s.rollback(ctx, doc)
			return nil, helper.NewError("insert chunk", err)
		}
	}

	s.logger.Info(
		"Added document",
		slog.String("title", doc.Title),
		slog.String("ticker", doc.Ticker),
		slog.Int("chunks", len(result.Chunks)),
	)

	return result, nil
}

func (s *PostgresVectorStore) rollback(ctx context.Context, doc *model.Document) {
	err := s.documents.DeleteDocument(ctx, doc.RID)
	if err != nil {
		s.logger.Warn("Failed to remove partially added document", slog.String("rid", doc.RID.String()), slog.String("error", err.Error()))
	}
}

// Documents lists the stored documents of a ticker
func (s *PostgresVectorStore) Documents(ctx context.Context, ticker string, limit int) ([]*model.Document, error) {
	documents, err := s.documents.SelectDocumentsByTicker(ctx, strings.ToUpper(strings.TrimSpace(ticker)), limit)
	if err != nil {
		return nil, helper.NewError("select documents by ticker", err)
	}
	return documents, nil
}

// Stats counts the stored documents and chunks
func (s *PostgresVectorStore) Stats(ctx context.Context) (*model.VectorStats, error) {
	documents, err := s.documents.CountDocuments(ctx)
	if err != nil {
		return nil, helper.NewError("count documents", err)
	}

	chunks, err := s.chunks.CountChunks(ctx)
	if err != nil {
		return nil, helper.NewError("count chunks", err)
	}

	return &model.VectorStats{TotalDocuments: documents, TotalChunks: chunks}, nil
}

// Chunks exposes the chunk handler, for example to change the vector index
func (s *PostgresVectorStore) Chunks() *database.ChunksDBHandler {
	return s.chunks
}

// Ping checks the database connection
func (s *PostgresVectorStore) Ping(ctx context.Context) error {
	err := s.db.Instance.PingContext(ctx)
	if err != nil {
		return helper.NewError("ping", err)
	}
	return nil
}
