package domain

// NodeID is a stable handle to a node inside a single graph.
// It indexes the graph's node arena and carries no meaning across graphs.
type NodeID int

// InvalidNode is the zero handle returned when a lookup fails.
const InvalidNode NodeID = -1

// Node represents a conversation state in the dialogue graph.
// It holds the pre-authored answers emitted when the conversation arrives at
// the node, and handles to the edges that leave and enter it.
type Node struct {
	ID   NodeID `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// Answers are the candidate responses. One is drawn at random on arrival.
	Answers []string `json:"answers" yaml:"answers"`

	// ChildEdges lists outgoing edges in authoring order.
	ChildEdges []EdgeID `json:"child_edges,omitempty" yaml:"child_edges,omitempty"`

	// ParentEdges lists incoming edges in authoring order.
	ParentEdges []EdgeID `json:"parent_edges,omitempty" yaml:"parent_edges,omitempty"`
}

// HasAnswers reports whether the node can produce a response.
func (n Node) HasAnswers() bool {
	return len(n.Answers) > 0
}
