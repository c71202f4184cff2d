package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/pkg/domain"
	dialogue "github.com/aretw0/parley/pkg/graph"
)

// ErrInvalidGraph is returned by Validate when the graph has errors.
var ErrInvalidGraph = errors.New("graph has errors")

// Validate prints authoring diagnostics for the loaded graph. Warnings are
// printed but only errors fail.
func (a *App) Validate(w io.Writer) error {
	g := a.Engine.Inspect()
	issues := dialogue.Validate(g)
	for _, issue := range issues {
		fmt.Fprintln(w, issue.String())
	}
	if dialogue.HasErrors(issues) {
		return ErrInvalidGraph
	}
	fmt.Fprintf(w, "Graph is valid: %d nodes, %d edges, root %q.\n", g.Len(), len(g.Edges()), g.Name(g.Root()))
	return nil
}

// Explain prints how text scores against the keywords leaving node (root
// when empty), best candidate first.
func (a *App) Explain(w io.Writer, node, text string) error {
	g := a.Engine.Inspect()
	if node == "" {
		node = g.Name(g.Root())
	}
	if _, err := g.Lookup(node); err != nil {
		return err
	}

	matches := a.Engine.Explain(domain.NewState("", node), text)
	if len(matches) == 0 {
		fmt.Fprintf(w, "%s has no outgoing edges; input would fall back to %s.\n", node, g.Name(g.Root()))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COST\tTARGET\tKEYWORD")
	for _, m := range matches {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", m.Cost, m.To, m.Keyword)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "-> %s\n", matches[0].To)
	return nil
}

// Mermaid prints the graph as a Mermaid flowchart. A non-nil state is drawn
// as an overlay of visited and current nodes.
func (a *App) Mermaid(w io.Writer, state *domain.State) error {
	var overlay *graph.GraphOverlay
	if state != nil {
		overlay = &graph.GraphOverlay{
			VisitedNodes: state.History,
			CurrentNode:  state.CurrentNode,
		}
	}
	_, err := io.WriteString(w, graph.GenerateMermaid(a.Engine.Inspect(), overlay))
	return err
}

// LoadSession reads a stored conversation from the configured store.
func (a *App) LoadSession(ctx context.Context, sessionID string) (*domain.State, error) {
	stores, err := OpenPersistentStores(ctx, a.Config)
	if err != nil {
		return nil, err
	}
	defer stores.Close()
	return stores.Store.Load(ctx, sessionID)
}
