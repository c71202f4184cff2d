package domain

// StateDiff represents the changes between two conversation states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentNode *string `json:"current_node,omitempty"`

	// Appended contains only the history entries added since the old state.
	Appended []string `json:"appended,omitempty"`

	Turns *int `json:"turns,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState.
// It returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{SessionID: newState.SessionID}

	if oldState == nil || oldState.CurrentNode != newState.CurrentNode {
		diff.CurrentNode = &newState.CurrentNode
	}
	if oldState == nil || oldState.Turns != newState.Turns {
		diff.Turns = &newState.Turns
	}
	diff.Appended = diffHistory(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// diffHistory assumes append-only history.
func diffHistory(old *State, new *State) []string {
	if len(new.History) == 0 {
		return nil
	}
	if old == nil {
		return new.History
	}
	if len(new.History) > len(old.History) {
		return new.History[len(old.History):]
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.CurrentNode == nil && d.Turns == nil && len(d.Appended) == 0
}
