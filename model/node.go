package model

import (
	"time"

	"github.com/google/uuid"
)

// Node is a stored graph node. Key is unique per label, for example the
// ticker of a Company or the name of an extracted entity.
type Node struct {
	ID         int64     `json:"id"`
	RID        uuid.UUID `json:"rid"`
	Label      Label     `json:"label"`
	Key        string    `json:"key"`
	Properties Metadata  `json:"properties"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Entity returns the node as a retrieval entity
func (n *Node) Entity() GraphEntity {
	attributes := map[string]interface{}{}
	for key, value := range n.Properties {
		attributes[key] = value
	}
	return GraphEntity{
		EntityType: n.Label.String(),
		Attributes: attributes,
	}
}

// NodeRef identifies a node by label and key
type NodeRef struct {
	Label Label
	Key   string
}
