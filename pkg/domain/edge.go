package domain

// EdgeID is a stable handle to an edge inside a single graph.
type EdgeID int

// Edge is a directed transition between two nodes, guarded by trigger keywords.
// An edge without keywords is never selected by matching.
type Edge struct {
	ID       EdgeID   `json:"id" yaml:"id"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Parent   NodeID   `json:"parent" yaml:"parent"`
	Child    NodeID   `json:"child" yaml:"child"`
}
