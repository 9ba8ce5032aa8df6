package model

// GraphStats summarizes the content of the graph store
type GraphStats struct {
	TotalNodes     int64           `json:"total_nodes"`
	TotalRelations int64           `json:"total_relations"`
	NodeTypes      []NodeTypeCount `json:"node_types"`
}

// NodeTypeCount is the number of nodes carrying a label
type NodeTypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// VectorStats summarizes the content of the vector store
type VectorStats struct {
	TotalDocuments int64 `json:"total_documents"`
	TotalChunks    int64 `json:"total_chunks"`
}

// Health states
const (
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
)

// ComponentHealth is the health check result of one dependency
type ComponentHealth struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// HealthStatus reports the reachability of every dependency. Status is
// degraded as soon as one configured dependency is unreachable.
type HealthStatus struct {
	Status      string          `json:"status"`
	VectorStore ComponentHealth `json:"vector_store"`
	GraphStore  ComponentHealth `json:"graph_store"`
	LLM         ComponentHealth `json:"llm"`
	VectorStats *VectorStats    `json:"vector_stats,omitempty"`
}
