// Command parley runs keyword-matching dialogue graphs as a terminal chat,
// an HTTP API or an MCP tool server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
