package model

import (
	"time"

	"github.com/google/uuid"
)

// Chunk represents an indexed passage of a document
type Chunk struct {
	ID          int64     `json:"id"`
	DocumentID  int64     `json:"document_id"`
	DocumentRID uuid.UUID `json:"document_rid"`
	Content     string    `json:"content"`
	Path        string    `json:"path"`
	Embedding   []float32 `json:"embedding,omitempty"`
	ChunkIndex  *int      `json:"chunk_index,omitempty"`
	Metadata    Metadata  `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	// Results
	Distance *float64 `json:"distance,omitempty"`
}
