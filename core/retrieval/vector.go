package retrieval

import (
	"context"
	"errors"

	"github.com/siherrmann/fingrapher/core/store"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
)

// MaxDocumentRunes caps the content of a single vector hit
const MaxDocumentRunes = 2000

var errNoVectorStore = errors.New("vector store not configured")

// VectorRetriever turns the raw hits of a VectorStore into evidence
type VectorRetriever struct {
	store   store.VectorStore
	options retrieverOptions
}

// NewVectorRetriever creates a retriever on vectorStore
func NewVectorRetriever(vectorStore store.VectorStore, opts ...Option) *VectorRetriever {
	return &VectorRetriever{
		store:   vectorStore,
		options: newRetrieverOptions(opts),
	}
}

type searchOptions struct {
	tickerFilter string
}

// SearchOption narrows a vector search
type SearchOption func(*searchOptions)

// WithTickerFilter only searches passages of one company
func WithTickerFilter(ticker string) SearchOption {
	return func(o *searchOptions) {
		o.tickerFilter = ticker
	}
}

// Search returns up to topK evidence items, best match first. A store
// failure yields an empty list.
func (r *VectorRetriever) Search(ctx context.Context, question string, topK int, opts ...SearchOption) []model.VectorEvidence {
	options := searchOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	if r.store == nil {
		r.options.degrade(StepVectorSearch, errNoVectorStore)
		return []model.VectorEvidence{}
	}

	result, err := r.store.Search(ctx, question, topK, options.tickerFilter)
	if err != nil {
		r.options.degrade(StepVectorSearch, err)
		return []model.VectorEvidence{}
	}

	return ToEvidence(result)
}

// ToEvidence converts the store triple arrays. Documents are truncated,
// missing metadata becomes an empty map and a missing distance a
// relevance of 0.
func ToEvidence(result *model.VectorSearchResult) []model.VectorEvidence {
	if result == nil {
		return []model.VectorEvidence{}
	}

	evidence := make([]model.VectorEvidence, 0, len(result.Documents))
	for i, document := range result.Documents {
		metadata := map[string]string{}
		if i < len(result.Metadatas) {
			for key, value := range result.Metadatas[i] {
				metadata[key] = value
			}
		}

		relevance := 0.0
		if i < len(result.Distances) {
			relevance = 1 - result.Distances[i]
		}

		evidence = append(evidence, model.VectorEvidence{
			Content:        helper.Truncate(document, MaxDocumentRunes),
			Metadata:       metadata,
			RelevanceScore: relevance,
		})
	}
	return evidence
}
