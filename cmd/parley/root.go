package main

import (
	"context"
	"os"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/parley/internal/cli"
	"github.com/aretw0/parley/internal/config"
	"github.com/spf13/cobra"
)

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	graph      string
	logLevel   string
	logFormat  string
	seed       uint64

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "parley",
		Short: "Parley is a keyword-matching dialogue engine",
		Long: `Parley walks a graph of conversation states. Each user message moves the
conversation along the outgoing edge whose keyword is closest to the text
(Levenshtein distance, case-insensitive) and answers with one of the target
node's responses. Graphs are YAML files or directories of Markdown nodes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "TOML config file")
	flags.StringVarP(&g.graph, "graph", "g", "", "Graph file (.yaml) or directory of Markdown nodes")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&g.logFormat, "log-format", "", "Log format: text or json")
	flags.Uint64Var(&g.seed, "seed", 0, "Seed for answer selection (random when unset)")

	root.AddCommand(
		newRunCmd(g),
		newServeCmd(g),
		newMCPCmd(g),
		newGraphCmd(g),
		newValidateCmd(g),
		newExplainCmd(g),
		newSessionCmd(g),
		newVersionCmd(),
	)
	return root
}

// load resolves the configuration: defaults, file, environment, then flags
// the user actually set.
func (g *globals) load(cmd *cobra.Command) error {
	cfg, err := config.Load(g.configPath, os.LookupEnv)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("graph") {
		cfg.Graph = g.graph
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = g.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = g.logFormat
	}
	if flags.Changed("seed") {
		seed := g.seed
		cfg.Seed = &seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg
	return nil
}

// app loads the graph, taking it from the first positional argument when
// given.
func (g *globals) app(ctx context.Context, args []string) (*cli.App, error) {
	if len(args) > 0 {
		g.cfg.Graph = args[0]
	}
	return cli.NewApp(ctx, g.cfg, os.Stderr)
}

// signalContext is the command context, cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithCancel(lifecycle.NewSignalContext(cmd.Context()))
}
