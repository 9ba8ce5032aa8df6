package pipeline

import (
	"context"

	"github.com/siherrmann/fingrapher/model"
)

// ChunkFunc is a function that splits text into chunks with their hierarchical paths
// The path is dot separated (e.g., "aapl.risk_factors.chunk3")
type ChunkFunc func(text string, basePath string) ([]ChunkWithPath, error)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// ExtractFunc extracts the entities and relations of one source document
type ExtractFunc func(ctx context.Context, sourceName string, text string) (*model.Extraction, error)

// ChunkWithPath represents a chunk with its hierarchical path
type ChunkWithPath struct {
	Content    string
	Path       string
	ChunkIndex *int
	Metadata   model.Metadata
}

// Pipeline combines chunking, embedding and optional extraction
type Pipeline struct {
	Chunker   ChunkFunc
	Embedder  EmbedFunc
	Extractor ExtractFunc // Optional
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// SetExtractor sets the entity and relation extraction function
func (p *Pipeline) SetExtractor(extractor ExtractFunc) {
	p.Extractor = extractor
}

// ProcessingResult contains the embedded chunks of a document and, if an
// extractor is set, its extraction
type ProcessingResult struct {
	Chunks          []*model.Chunk
	Extraction      *model.Extraction
	ExtractionError error
}

// Process processes text through the pipeline, returning chunks with embeddings
func (p *Pipeline) Process(text string, basePath string) ([]*model.Chunk, error) {
	chunksWithPath, err := p.Chunker(text, basePath)
	if err != nil {
		return nil, err
	}

	chunks := make([]*model.Chunk, 0, len(chunksWithPath))
	for _, cwp := range chunksWithPath {
		embedding, err := p.Embedder(cwp.Content)
		if err != nil {
			return nil, err
		}

		chunks = append(chunks, &model.Chunk{
			Content:    cwp.Content,
			Path:       cwp.Path,
			Embedding:  embedding,
			ChunkIndex: cwp.ChunkIndex,
			Metadata:   cwp.Metadata,
		})
	}

	return chunks, nil
}

// ProcessDocument chunks and embeds a document. Every chunk carries the
// document metadata (ticker, section, url, year) on top of its own.
// Extraction runs once over the whole document. An extraction failure
// does not fail the processing, it is reported in ExtractionError.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc *model.Document) (*ProcessingResult, error) {
	chunks, err := p.Process(doc.Content, DocumentPath(doc))
	if err != nil {
		return nil, err
	}

	documentMetadata := doc.ChunkMetadata()
	for _, chunk := range chunks {
		merged := model.Metadata{}
		for key, value := range chunk.Metadata {
			merged[key] = value
		}
		for key, value := range documentMetadata {
			merged[key] = value
		}
		chunk.Metadata = merged
	}

	result := &ProcessingResult{Chunks: chunks}
	if p.Extractor != nil {
		sourceName := doc.Title
		if sourceName == "" {
			sourceName = "document"
		}
		result.Extraction, result.ExtractionError = p.Extractor(ctx, sourceName, doc.Content)
	}

	return result, nil
}
