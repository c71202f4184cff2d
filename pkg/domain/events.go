package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter EventType = "node_enter"
	EventMatch     EventType = "match"
	EventFallback  EventType = "fallback"
	EventNoAnswer  EventType = "no_answer"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent represents arrival at a node.
type NodeEvent struct {
	EventBase
	NodeID   NodeID `json:"node_id"`
	NodeName string `json:"node_name"`
}

// MatchEvent describes the outcome of scoring one input.
type MatchEvent struct {
	EventBase
	From       string `json:"from"`
	To         string `json:"to"`
	Keyword    string `json:"keyword,omitempty"`
	Cost       int    `json:"cost"`
	Candidates int    `json:"candidates"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeEvent)
	OnMatch     func(context.Context, *MatchEvent)
	OnFallback  func(context.Context, *MatchEvent)
	OnNoAnswer  func(context.Context, *NodeEvent)
}
