package yaml

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/parley/pkg/graph"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Document is the decoded form of a graph file.
type Document struct {
	Root  string         `mapstructure:"root"`
	Nodes []NodeDocument `mapstructure:"nodes"`
}

// NodeDocument is one node of a graph file.
type NodeDocument struct {
	Name    string         `mapstructure:"name"`
	Answer  string         `mapstructure:"answer"`
	Answers []string       `mapstructure:"answers"`
	Edges   []EdgeDocument `mapstructure:"edges"`
}

// EdgeDocument is one outgoing transition of a node.
type EdgeDocument struct {
	To       string   `mapstructure:"to"`
	Keywords []string `mapstructure:"keywords"`
}

// Loader is a ports.GraphSource reading a YAML file.
type Loader struct {
	path string
}

// NewLoader creates a loader for the file at path. The file is read on
// every Load.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string {
	return l.path
}

// Load implements ports.GraphSource.
func (l *Loader) Load(ctx context.Context) (*graph.Graph, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	return g, nil
}

// Parse decodes and builds a graph from YAML bytes.
func Parse(data []byte) (*graph.Graph, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return doc.Build()
}

// Decode parses YAML bytes into a Document without building the graph.
func Decode(data []byte) (*Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}

	var doc Document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid graph document: %w", err)
	}
	return &doc, nil
}

// Build turns the document into an immutable graph. Without a root key
// the first node is the root.
func (d *Document) Build() (*graph.Graph, error) {
	b := graph.NewBuilder()
	for _, n := range d.Nodes {
		answers := n.Answers
		if n.Answer != "" {
			answers = append([]string{n.Answer}, answers...)
		}
		b.Node(n.Name, answers...)
	}
	for _, n := range d.Nodes {
		for _, e := range n.Edges {
			b.Edge(n.Name, e.To, e.Keywords...)
		}
	}
	if d.Root != "" {
		b.Root(d.Root)
	}
	return b.Build()
}
