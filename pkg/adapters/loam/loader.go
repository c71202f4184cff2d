package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/parley/pkg/graph"
)

// DefaultRoot is the node used as root when no document sets root: true.
const DefaultRoot = "start"

// Loader reads a dialogue graph from a Loam repository: one document per
// node, frontmatter carrying answers and edges. A document without an
// answers key takes its answers from the body, one per paragraph.
type Loader struct {
	Repo *loam.TypedRepository[NodeMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[NodeMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at path.
func Open(path string) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// The graph is only ever read, so keep Loam out of its sandbox behaviour.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[NodeMetadata](repo)), nil
}

type document struct {
	id   string
	meta NodeMetadata
	body string
}

// Load implements ports.GraphSource.
func (l *Loader) Load(ctx context.Context) (*graph.Graph, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	nodes := make([]document, 0, len(docs))
	seen := make(map[string]string, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID

		body := doc.Content
		if len(doc.Data.Answers) == 0 && body == "" {
			// List returns metadata only; the body needs a full read.
			full, err := l.Repo.Get(ctx, doc.ID)
			if err != nil {
				return nil, fmt.Errorf("loam get failed for %s: %w", doc.ID, err)
			}
			body = full.Content
		}
		nodes = append(nodes, document{id: id, meta: doc.Data, body: body})
	}

	// Listing order depends on the filesystem.
	slices.SortFunc(nodes, func(a, b document) int { return strings.Compare(a.id, b.id) })

	b := graph.NewBuilder()
	root := ""
	for _, n := range nodes {
		answers := n.meta.Answers
		if len(answers) == 0 {
			answers = paragraphs(n.body)
		}
		b.Node(n.id, answers...)

		if n.meta.Root {
			if root != "" {
				return nil, fmt.Errorf("both %q and %q are marked as root", root, n.id)
			}
			root = n.id
		}
	}
	for _, n := range nodes {
		for _, e := range n.meta.Edges {
			b.Edge(n.id, trimExtension(e.To), e.keywords()...)
		}
	}

	if root == "" {
		root = DefaultRoot
	}
	b.Root(root)

	g, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("loam graph: %w", err)
	}
	return g, nil
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Coalesce bursts: one pending signal is enough to trigger a reload.
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()

	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

func paragraphs(body string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
