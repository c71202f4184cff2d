package loam

// NodeMetadata is the frontmatter of a node document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type NodeMetadata struct {
	ID      string   `json:"id" mapstructure:"id"`
	Root    bool     `json:"root" mapstructure:"root"`
	Answers []string `json:"answers" mapstructure:"answers"`
	// Edges are the outgoing transitions, in authoring order.
	Edges []EdgeMetadata `json:"edges" mapstructure:"edges"`
}

// EdgeMetadata is one outgoing transition of a node document.
type EdgeMetadata struct {
	To       string   `json:"to" mapstructure:"to"`
	Keywords []string `json:"keywords" mapstructure:"keywords"`
	// Keyword is shorthand for a single-keyword edge.
	Keyword string `json:"keyword" mapstructure:"keyword"`
}

func (e EdgeMetadata) keywords() []string {
	if e.Keyword == "" {
		return e.Keywords
	}
	return append([]string{e.Keyword}, e.Keywords...)
}
