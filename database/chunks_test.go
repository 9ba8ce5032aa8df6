package database

import (
	"context"
	"testing"

	"github.com/siherrmann/fingrapher/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunksNewChunksDBHandler(t *testing.T) {
	database := initDB(t)

	// Needed because a chunk has a reference to a document
	_, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err)

	t.Run("Valid call NewChunksDBHandler", func(t *testing.T) {
		chunksDbHandler, err := NewChunksDBHandler(database, 384, true)
		assert.NoError(t, err)
		require.NotNil(t, chunksDbHandler)
	})

	t.Run("Invalid call NewChunksDBHandler with nil database", func(t *testing.T) {
		_, err := NewChunksDBHandler(nil, 384, false)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database connection is nil")
	})

	t.Run("Invalid call NewChunksDBHandler with zero dimension", func(t *testing.T) {
		_, err := NewChunksDBHandler(database, 0, false)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")
	})
}

func TestChunksInsertAndSelect(t *testing.T) {
	database := initDB(t)
	ctx := context.Background()

	documentsDbHandler, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err)
	chunksDbHandler, err := NewChunksDBHandler(database, 384, true)
	require.NoError(t, err)

	doc := &model.Document{Title: "Business", Ticker: "AAPL"}
	require.NoError(t, documentsDbHandler.InsertDocument(ctx, doc))
	defer documentsDbHandler.DeleteDocument(ctx, doc.RID)

	t.Run("Insert chunk", func(t *testing.T) {
		index := 0
		chunk := &model.Chunk{
			DocumentID: doc.ID,
			Content:    "Apple designs smartphones.",
			Path:       "aapl.business.chunk0",
			Embedding:  unitVector(0),
			ChunkIndex: &index,
			Metadata:   model.Metadata{"ticker": "AAPL", "section": "Business"},
		}

		err := chunksDbHandler.InsertChunk(ctx, chunk)
		require.NoError(t, err)
		assert.NotZero(t, chunk.ID)
		assert.Equal(t, doc.RID, chunk.DocumentRID)
		assert.Len(t, chunk.Embedding, 384)

		selected, err := chunksDbHandler.SelectChunk(ctx, chunk.ID)
		require.NoError(t, err)
		assert.Equal(t, chunk.Content, selected.Content)
		assert.Equal(t, "AAPL", selected.Metadata["ticker"])
		require.NotNil(t, selected.ChunkIndex)
		assert.Equal(t, 0, *selected.ChunkIndex)
	})

	t.Run("Select chunks by document in chunk order", func(t *testing.T) {
		index := 1
		chunk := &model.Chunk{
			DocumentID: doc.ID,
			Content:    "Apple sells services.",
			Embedding:  unitVector(1),
			ChunkIndex: &index,
		}
		require.NoError(t, chunksDbHandler.InsertChunk(ctx, chunk))

		chunks, err := chunksDbHandler.SelectChunksByDocument(ctx, doc.RID)
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, 0, *chunks[0].ChunkIndex)
		assert.Equal(t, 1, *chunks[1].ChunkIndex)
	})

	t.Run("Delete chunk", func(t *testing.T) {
		chunk := &model.Chunk{DocumentID: doc.ID, Content: "Temporary", Embedding: unitVector(2)}
		require.NoError(t, chunksDbHandler.InsertChunk(ctx, chunk))

		require.NoError(t, chunksDbHandler.DeleteChunk(ctx, chunk.ID))

		_, err := chunksDbHandler.SelectChunk(ctx, chunk.ID)
		assert.Error(t, err)
	})
}

func TestChunksSelectBySimilarity(t *testing.T) {
	database := initDB(t)
	ctx := context.Background()

	documentsDbHandler, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err)
	chunksDbHandler, err := NewChunksDBHandler(database, 384, true)
	require.NoError(t, err)

	apple := &model.Document{Title: "Business", Ticker: "SIMA"}
	require.NoError(t, documentsDbHandler.InsertDocument(ctx, apple))
	defer documentsDbHandler.DeleteDocument(ctx, apple.RID)
	other := &model.Document{Title: "Business", Ticker: "SIMB"}
	require.NoError(t, documentsDbHandler.InsertDocument(ctx, other))
	defer documentsDbHandler.DeleteDocument(ctx, other.RID)

	near := &model.Chunk{DocumentID: apple.ID, Content: "near", Embedding: unitVector(10), Metadata: model.Metadata{"ticker": "SIMA"}}
	far := &model.Chunk{DocumentID: apple.ID, Content: "far", Embedding: unitVector(11), Metadata: model.Metadata{"ticker": "SIMA"}}
	foreign := &model.Chunk{DocumentID: other.ID, Content: "foreign", Embedding: unitVector(10), Metadata: model.Metadata{"ticker": "SIMB"}}
	for _, chunk := range []*model.Chunk{near, far, foreign} {
		require.NoError(t, chunksDbHandler.InsertChunk(ctx, chunk))
	}

	t.Run("Nearest chunk first with distance", func(t *testing.T) {
		chunks, err := chunksDbHandler.SelectChunksBySimilarity(ctx, unitVector(10), 2, "SIMA")
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "near", chunks[0].Content)
		require.NotNil(t, chunks[0].Distance)
		assert.InDelta(t, 0.0, *chunks[0].Distance, 1e-6)
		assert.Equal(t, "far", chunks[1].Content)
		assert.InDelta(t, 1.0, *chunks[1].Distance, 1e-6)
	})

	t.Run("Ticker filter is case-insensitive and excludes other companies", func(t *testing.T) {
		chunks, err := chunksDbHandler.SelectChunksBySimilarity(ctx, unitVector(10), 10, "sima")
		require.NoError(t, err)
		for _, chunk := range chunks {
			assert.Equal(t, "SIMA", chunk.Metadata["ticker"])
		}
	})

	t.Run("Empty ticker searches all companies", func(t *testing.T) {
		chunks, err := chunksDbHandler.SelectChunksBySimilarity(ctx, unitVector(10), 1000, "")
		require.NoError(t, err)

		contents := map[string]bool{}
		for _, chunk := range chunks {
			contents[chunk.Content] = true
		}
		assert.True(t, contents["near"])
		assert.True(t, contents["foreign"])
	})

	t.Run("Count chunks", func(t *testing.T) {
		count, err := chunksDbHandler.CountChunks(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, count, int64(3))
	})
}
