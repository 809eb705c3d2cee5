package graph

import (
	"crypto/sha256"
	"encoding/hex"
)

// NodeID is a content-addressed identifier for graph nodes.
type NodeID string

// ZeroID is the zero value of NodeID, used for absent references.
const ZeroID NodeID = ""

// shortLen is the number of hex characters shown in human-readable output.
const shortLen = 8

// NewNodeID derives a NodeID by hashing the given path components. The same
// components always produce the same ID, so re-evaluating unchanged source
// yields identical node identities.
func NewNodeID(parts ...string) NodeID {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return NodeID(hex.EncodeToString(h.Sum(nil)))
}

// IsZero reports whether the ID is the zero value.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

// Short returns a truncated form of the ID for display.
func (id NodeID) Short() string {
	if len(id) <= shortLen {
		return string(id)
	}
	return string(id[:shortLen])
}

// SourceRef points back at the DSL expression that created a node.
type SourceRef struct {
	Expr string `json:"expr,omitempty"` // the originating form, e.g. `(box :x 10 ...)`
	Line int    `json:"line,omitempty"`
}
