package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAnswer is returned when the node reached has no answers to pick from.
	ErrNoAnswer = errors.New("no response available")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNodeNotFound is returned when a node name or handle does not exist in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrMissingRoot is returned when a graph is built without an entry node.
	ErrMissingRoot = errors.New("graph has no root node")

	// ErrDanglingEdge is returned when an edge refers to a node that does not exist.
	ErrDanglingEdge = errors.New("edge refers to an unknown node")

	// ErrDuplicateNode is returned when two nodes share a name.
	ErrDuplicateNode = errors.New("duplicate node name")
)

// NoAnswerError names the node whose answer set was empty.
type NoAnswerError struct {
	Node string
}

func (e *NoAnswerError) Error() string {
	return fmt.Sprintf("node %q: %s", e.Node, ErrNoAnswer)
}

func (e *NoAnswerError) Unwrap() error {
	return ErrNoAnswer
}

// DanglingEdgeError describes an edge endpoint that could not be resolved.
type DanglingEdgeError struct {
	From string
	To   string
	// Missing is the endpoint name that does not exist.
	Missing string
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("edge %s -> %s: %s: %q", e.From, e.To, ErrDanglingEdge, e.Missing)
}

func (e *DanglingEdgeError) Unwrap() error {
	return ErrDanglingEdge
}
