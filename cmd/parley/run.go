package main

import (
	"github.com/aretw0/parley/internal/cli"
	"github.com/spf13/cobra"
)

func newRunCmd(g *globals) *cobra.Command {
	var opts cli.RunOptions

	cmd := &cobra.Command{
		Use:   "run [graph]",
		Short: "Chat with a graph in the terminal",
		Long: `Starts an interactive conversation at the graph root. Type "exit" or
"quit" to leave. With --session the conversation is saved and resumed on the
next run with the same name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()

			app, err := g.app(ctx, args)
			if err != nil {
				return err
			}

			opts.Input = cmd.InOrStdin()
			opts.Output = cmd.OutOrStdout()
			_, err = app.Run(ctx, opts)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.SessionID, "session", "s", "", "Persist and resume the conversation under this name")
	cmd.Flags().BoolVar(&opts.Fresh, "fresh", false, "Discard the stored session before starting")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Reload the graph when its files change")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Read and write JSON lines instead of text")
	return cmd
}
