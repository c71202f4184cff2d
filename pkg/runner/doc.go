/*
Package runner implements the interactive conversation loop for the parley engine.

It acts as the bridge between the stateless Engine and a person typing. The
runner keeps the conversation in a session (in memory, or in any
ports.StateStore for resumable sessions) and talks through pluggable handlers.

# Key Components

  - Runner: reads a line, advances the conversation, prints the answer.
  - IOHandler: decouples how messages are read and shown (text, JSON lines).
  - TextHandler: interactive terminal usage, optionally rendering Markdown.
  - JSONHandler: one JSON object per line, for scripting and pipes.

# Usage

	r := runner.NewRunner(
		runner.WithStore(store),
		runner.WithRenderer(tui.NewRenderer()),
	)

	if _, err := r.Run(ctx, engine, "user-1"); err != nil {
		log.Fatal(err)
	}

Typing "exit" or "quit", closing the input or cancelling ctx ends the loop.
*/
package runner
