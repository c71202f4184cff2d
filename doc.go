/*
Package parley is a keyword-matching dialogue engine for building simple chatbots, help desks and scripted conversational agents.

A conversation lives in a directed graph of nodes. Each node carries canned answers; each edge carries trigger keywords. Free text typed by the user is compared with the keywords of the edges leaving the current node using a case-insensitive edit distance, the closest keyword wins, and the bot replies with one of the target node's answers. When the current node has no way out the conversation returns to the root.

# Architecture

The graph is authored outside the engine (YAML, a directory of Markdown documents, or the pkg/dsl builder in Go) and loaded through a ports.GraphSource. The engine itself keeps no conversation state: callers pass a domain.State in and get a new one back, which lets the same Engine serve a terminal REPL, an HTTP API or an MCP tool server, with state kept in memory or in Redis.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/parley"
	)

	func main() {
		ctx := context.Background()

		eng, err := parley.Open(ctx, "./pizza.yaml")
		if err != nil {
			log.Fatal(err)
		}

		state, greeting, err := eng.Start(ctx, "session-123")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(greeting.Answer)

		state, reply, err := eng.Navigate(ctx, state, "I want to order a pizza")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(reply.Answer)
	}

# Determinism

Answer selection draws from one generator seeded when the Engine is created. Use WithSeed to make replies reproducible in tests.
*/
package parley
