package graph

// Description is a name-based, serializable view of a graph, as returned by
// the graph endpoints of the HTTP and MCP adapters.
type Description struct {
	Root  string            `json:"root" yaml:"root"`
	Nodes []NodeDescription `json:"nodes" yaml:"nodes"`
}

// NodeDescription lists a node's answers and outgoing edges.
type NodeDescription struct {
	Name    string            `json:"name" yaml:"name"`
	Answers []string          `json:"answers" yaml:"answers"`
	Edges   []EdgeDescription `json:"edges" yaml:"edges"`
}

// EdgeDescription names the target of an edge and its keywords.
type EdgeDescription struct {
	To       string   `json:"to" yaml:"to"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Describe returns the graph in authoring order with handles resolved to names.
func (g *Graph) Describe() Description {
	d := Description{
		Root:  g.Name(g.root),
		Nodes: make([]NodeDescription, 0, len(g.nodes)),
	}
	for _, node := range g.nodes {
		nd := NodeDescription{
			Name:    node.Name,
			Answers: append([]string{}, node.Answers...),
			Edges:   make([]EdgeDescription, 0, len(node.ChildEdges)),
		}
		for _, id := range node.ChildEdges {
			nd.Edges = append(nd.Edges, EdgeDescription{
				To:       g.Name(g.TargetOf(id)),
				Keywords: append([]string{}, g.KeywordsOf(id)...),
			})
		}
		d.Nodes = append(d.Nodes, nd)
	}
	return d
}
