package domain

import "time"

// State is the persisted snapshot of one conversation.
// Nodes are referenced by name so a state survives a graph reload, where
// handles may be reassigned.
//
// History lists every node visited, oldest first. It starts with the start
// node and gains one entry per turn, so len(History) == Turns+1.
type State struct {
	SessionID   string    `json:"session_id"`
	CurrentNode string    `json:"current_node"`
	History     []string  `json:"history,omitempty"`
	Turns       int       `json:"turns"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewState creates a conversation positioned at the given node.
func NewState(sessionID, startNode string) *State {
	return &State{
		SessionID:   sessionID,
		CurrentNode: startNode,
		History:     []string{startNode},
		UpdatedAt:   time.Now().UTC(),
	}
}

// Clone returns a copy that can be mutated without touching the original.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.History = append([]string(nil), s.History...)
	return &next
}

// Reply is what the engine hands to the presentation side after a move.
type Reply struct {
	Node     string `json:"node"`
	Answer   string `json:"answer"`
	Fallback bool   `json:"fallback,omitempty"`
	Keyword  string `json:"keyword,omitempty"`
	Cost     int    `json:"cost,omitempty"`
}

// Match is one scored candidate transition, as shown by explain tooling.
type Match struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Keyword string `json:"keyword"`
	Cost    int    `json:"cost"`
}
