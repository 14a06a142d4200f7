package domain

import (
	"crypto/sha256"
	"fmt"
)

// EdgeType represents the kind of link between two hosts
type EdgeType string

const (
	EdgeTypeNetwork       EdgeType = "network"
	EdgeTypeCommunication EdgeType = "communication"
)

// Edge represents a derived link between two hosts, keyed by host id
type Edge struct {
	ID     string   `json:"id" yaml:"id"`
	Source string   `json:"source" yaml:"source"`
	Target string   `json:"target" yaml:"target"`
	Type   EdgeType `json:"type" yaml:"type"`
}

// NewEdge creates a new edge with a deterministic ID
func NewEdge(source, target string, edgeType EdgeType) Edge {
	edge := Edge{
		Source: source,
		Target: target,
		Type:   edgeType,
	}
	edge.ID = edge.GenerateID()
	return edge
}

// GenerateID creates a deterministic ID for the edge based on endpoints
func (e *Edge) GenerateID() string {
	// Normalize endpoints for consistent ID
	from, to := e.Source, e.Target
	if from > to {
		from, to = to, from
	}

	key := fmt.Sprintf("%s-%s-%s", from, to, e.Type)
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", hash[:8])
}
