package model

import (
	"encoding/json"

	"github.com/siherrmann/fingrapher/helper"
)

// VectorSearchResult is the raw answer of a vector store search.
// The three slices are index aligned, one entry per hit.
type VectorSearchResult struct {
	Documents []string            `json:"documents"`
	Metadatas []map[string]string `json:"metadatas"`
	Distances []float64           `json:"distances"`
}

// VectorEvidence is one passage returned by semantic search.
// RelevanceScore is 1 - distance and only meaningful as a ranking signal.
type VectorEvidence struct {
	Content        string            `json:"content"`
	Metadata       map[string]string `json:"metadata"`
	RelevanceScore float64           `json:"relevance"`
}

// MarshalJSON writes a non-finite relevance as null
func (v VectorEvidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Content        string            `json:"content"`
		Metadata       map[string]string `json:"metadata"`
		RelevanceScore *float64          `json:"relevance"`
	}{v.Content, v.Metadata, helper.FloatOrNil(v.RelevanceScore)})
}

// Citation points at a piece of vector evidence used for an answer
type Citation struct {
	Source    string  `json:"source"`
	Section   string  `json:"section"`
	Locator   string  `json:"url"`
	Relevance float64 `json:"relevance"`
}

// MarshalJSON writes a non-finite relevance as null
func (c Citation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Source    string   `json:"source"`
		Section   string   `json:"section"`
		Locator   string   `json:"url"`
		Relevance *float64 `json:"relevance"`
	}{c.Source, c.Section, c.Locator, helper.FloatOrNil(c.Relevance)})
}

// SourceCounts are the raw retrieval counts before any capping
type SourceCounts struct {
	VectorResults int `json:"vector_results"`
	GraphEntities int `json:"graph_entities"`
}

// AnswerResult is the response of a question answering call
type AnswerResult struct {
	Question     string       `json:"question"`
	Answer       string       `json:"answer"`
	Citations    []Citation   `json:"citations"`
	GraphPaths   []GraphPath  `json:"graph_paths"`
	SourceCounts SourceCounts `json:"sources"`
}

// Generation is the output of a single shot generative model call
type Generation struct {
	Text string `json:"text"`
}
