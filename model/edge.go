package model

// GraphPath is one directed outgoing edge of an anchor entity
type GraphPath struct {
	SourceKey    string `json:"source"`
	RelationType string `json:"relation"`
	TargetType   string `json:"target_type"`
	TargetLabel  string `json:"target"`
}
