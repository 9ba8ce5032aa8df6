package model

// ExtractedEntity is a named entity found in a source document
type ExtractedEntity struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	MentionCount int    `json:"mentions"`
}

// ExtractedRelation is a directed relation between two named entities
type ExtractedRelation struct {
	SourceName   string `json:"source"`
	RelationType string `json:"relation"`
	TargetName   string `json:"target"`
}

// Extraction is the entity and relation output for one source document
type Extraction struct {
	SourceName string              `json:"source"`
	Entities   []ExtractedEntity   `json:"entities"`
	Relations  []ExtractedRelation `json:"relations"`
}

// MergeFailure records an entity or relation that could not be merged
type MergeFailure struct {
	SourceName string `json:"source"`
	Kind       string `json:"kind"` // "entity" or "relation"
	Item       string `json:"item"`
	Error      string `json:"error"`
}

// MergeStats counts attempted merges. Merging the same item twice counts twice.
type MergeStats struct {
	EntitiesAdded  int            `json:"entities_added"`
	RelationsAdded int            `json:"relations_added"`
	Failures       []MergeFailure `json:"failures,omitempty"`
}
