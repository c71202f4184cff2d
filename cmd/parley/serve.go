package main

import (
	"github.com/aretw0/parley/internal/cli"
	"github.com/spf13/cobra"
)

func newServeCmd(g *globals) *cobra.Command {
	var (
		listen string
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "serve [graph]",
		Short: "Serve the chat HTTP API",
		Long: `Exposes conversations over HTTP. Sessions live in memory unless a session
directory or a Redis server is configured. The OpenAPI document is served at
/openapi.yaml and Prometheus metrics at /metrics.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()

			app, err := g.app(ctx, args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				app.Config.Listen = listen
			}
			return app.Serve(ctx, cli.ServeOptions{Addr: app.Config.Listen, Watch: watch})
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", ":8080", "Address to listen on")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the graph when its files change")
	return cmd
}

func newMCPCmd(g *globals) *cobra.Command {
	var (
		transport string
		listen    string
	)

	cmd := &cobra.Command{
		Use:   "mcp [graph]",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes the graph as MCP tools (start_session, chat, explain, get_graph) so
AI agents can hold conversations with it.

Supported transports:
- stdio (default): standard input/output, for local process integration.
- sse: Server-Sent Events over HTTP, for remote agents or debuggers.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()

			app, err := g.app(ctx, args)
			if err != nil {
				return err
			}
			return app.ServeMCP(ctx, transport, listen)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", cli.TransportStdio, "Transport protocol: stdio or sse")
	cmd.Flags().StringVarP(&listen, "listen", "l", ":8081", "Address to listen on (sse only)")
	return cmd
}
