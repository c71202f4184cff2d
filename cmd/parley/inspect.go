package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newGraphCmd(g *globals) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "graph [graph]",
		Short: "Export the graph as a Mermaid diagram",
		Long: `Prints a Mermaid flowchart (graph TD) of the nodes and keyword edges.
With --session, the nodes visited by that stored conversation are highlighted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.app(cmd.Context(), args)
			if err != nil {
				return err
			}
			if sessionID == "" {
				return app.Mermaid(cmd.OutOrStdout(), nil)
			}
			state, err := app.LoadSession(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			return app.Mermaid(cmd.OutOrStdout(), state)
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Overlay a stored conversation")
	return cmd
}

func newValidateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [graph]",
		Short: "Check the graph for authoring mistakes",
		Long: `Loads the graph (which already rejects dangling edges, duplicate names and a
missing root) and reports reachable nodes without answers as errors, and
unreachable nodes or keyword-less edges as warnings.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.app(cmd.Context(), args)
			if err != nil {
				return err
			}
			return app.Validate(cmd.OutOrStdout())
		},
	}
}

func newExplainCmd(g *globals) *cobra.Command {
	var node string

	cmd := &cobra.Command{
		Use:   "explain <text>...",
		Short: "Show how text would be matched",
		Long: `Scores the text against every keyword leaving a node (root by default) and
prints the candidates, lowest distance first. The first one is where the
conversation would go.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.app(cmd.Context(), nil)
			if err != nil {
				return err
			}
			return app.Explain(cmd.OutOrStdout(), node, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&node, "node", "n", "", "Node to score from (default: root)")
	return cmd
}
