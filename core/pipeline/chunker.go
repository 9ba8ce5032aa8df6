package pipeline

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/knights-analytics/hugot"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
)

// DefaultEmbeddingModel is the sentence transformer used for embeddings and
// semantic chunking. It produces 384-dimensional vectors.
const DefaultEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"

// SentenceChunker creates a chunker that splits by sentences
func SentenceChunker(maxSentencesPerChunk int) ChunkFunc {
	return func(text string, basePath string) ([]ChunkWithPath, error) {
		if maxSentencesPerChunk <= 0 {
			return nil, fmt.Errorf("max sentences per chunk must be positive")
		}

		sentences := splitSentences(text)

		var chunks []ChunkWithPath
		for start := 0; start < len(sentences); start += maxSentencesPerChunk {
			end := min(start+maxSentencesPerChunk, len(sentences))
			chunks = append(chunks, newChunk(basePath, "chunk", len(chunks), sentences[start:end], model.Metadata{
				"num_sentences":   end - start,
				"chunking_method": "sentence",
			}))
		}

		return chunks, nil
	}
}

// ParagraphChunker creates a chunker that splits by blank lines
func ParagraphChunker() ChunkFunc {
	return func(text string, basePath string) ([]ChunkWithPath, error) {
		var chunks []ChunkWithPath
		for _, para := range strings.Split(text, "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			chunks = append(chunks, newChunk(basePath, "para", len(chunks), []string{para}, model.Metadata{
				"chunking_method": "paragraph",
			}))
		}

		return chunks, nil
	}
}

// DefaultChunker creates a semantic chunker that uses embeddings to identify natural boundaries.
// It starts a new chunk where the similarity between the running chunk and the next
// sentence drops below similarityThreshold or the chunk would exceed maxChunkSize runes.
func DefaultChunker(maxChunkSize int, similarityThreshold float32) ChunkFunc {
	return func(text string, basePath string) ([]ChunkWithPath, error) {
		sentences := splitSentences(text)
		if len(sentences) == 0 {
			return nil, fmt.Errorf("no sentences found in text")
		}

		modelPath, err := helper.PrepareModel(DefaultEmbeddingModel, "onnx/model.onnx")
		if err != nil {
			return nil, err
		}

		session, err := hugot.NewGoSession()
		if err != nil {
			return nil, fmt.Errorf("failed to create hugot session: %w", err)
		}
		defer session.Destroy()

		config := hugot.FeatureExtractionConfig{
			ModelPath: modelPath,
			Name:      "semantic-chunker-pipeline",
		}
		sentencePipeline, err := hugot.NewPipeline(session, config)
		if err != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
		}

		embeddingResult, err := sentencePipeline.RunPipeline(sentences)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}

		return groupBySimilarity(sentences, embeddingResult.Embeddings, basePath, maxChunkSize, similarityThreshold)
	}
}

// groupBySimilarity merges consecutive sentences into chunks. A sentence
// starts a new chunk if its cosine similarity to the mean embedding of the
// current chunk is below threshold or the chunk would grow past maxChunkSize runes.
func groupBySimilarity(sentences []string, embeddings [][]float32, basePath string, maxChunkSize int, threshold float32) ([]ChunkWithPath, error) {
	if len(embeddings) != len(sentences) {
		return nil, fmt.Errorf("embedding count mismatch: got %d embeddings for %d sentences", len(embeddings), len(sentences))
	}

	var chunks []ChunkWithPath
	var current []string
	var currentEmbeddings [][]float32
	currentLength := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, newChunk(basePath, "chunk", len(chunks), current, model.Metadata{
			"embedding_model": DefaultEmbeddingModel,
			"num_sentences":   len(current),
			"chunking_method": "semantic",
		}))
		current = nil
		currentEmbeddings = nil
		currentLength = 0
	}

	for i, sentence := range sentences {
		sentenceLength := utf8.RuneCountInString(sentence)
		if len(current) > 0 {
			similarity := cosineSimilarity(meanEmbedding(currentEmbeddings), embeddings[i])
			if similarity < threshold || currentLength+sentenceLength > maxChunkSize {
				flush()
			}
		}

		current = append(current, sentence)
		currentEmbeddings = append(currentEmbeddings, embeddings[i])
		currentLength += sentenceLength
	}
	flush()

	return chunks, nil
}

// splitSentences splits text after '.', '!' and '?' followed by a space
// and drops empty sentences.
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "! ", "!|")
	text = strings.ReplaceAll(text, "? ", "?|")
	text = strings.ReplaceAll(text, ". ", ".|")

	var sentences []string
	for _, s := range strings.Split(text, "|") {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func newChunk(basePath string, kind string, index int, sentences []string, metadata model.Metadata) ChunkWithPath {
	chunkIndex := index
	return ChunkWithPath{
		Content:    strings.Join(sentences, " "),
		Path:       fmt.Sprintf("%s.%s%d", basePath, kind, index),
		ChunkIndex: &chunkIndex,
		Metadata:   metadata,
	}
}

func meanEmbedding(embeddings [][]float32) []float32 {
	mean := make([]float32, len(embeddings[0]))
	for _, emb := range embeddings {
		for j := range emb {
			mean[j] += emb[j]
		}
	}
	for j := range mean {
		mean[j] /= float32(len(embeddings))
	}
	return mean
}

// cosineSimilarity calculates the cosine similarity between two embedding vectors
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float32
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
