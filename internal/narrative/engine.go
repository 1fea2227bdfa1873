package narrative

import "fmt"

// State is the mutable side of one dialogue, owned by a single session.
// Transitions produce new values; a recorded choice sequence replayed from
// Start always reproduces the same final state.
type State struct {
	CurrentNodeID  string
	Variables      map[string]interface{}
	VisitedNodeIDs []string // insertion-ordered set
	ProgressScore  int
}

// Start initializes a dialogue at the graph's start node.
func Start(g *Graph) State {
	return State{
		CurrentNodeID: g.StartNodeID,
		Variables:     make(map[string]interface{}),
	}
}

// ProcessChoice applies a choice to the state and returns the successor
// state. Pure function: the input state is not mutated and no global state is
// involved, so transitions are deterministic and replayable.
func ProcessChoice(g *Graph, state State, choiceID string) (State, error) {
	node := g.Node(state.CurrentNodeID)
	if node == nil {
		return State{}, fmt.Errorf("%w: current node %q not in graph", ErrUnknownChoice, state.CurrentNodeID)
	}

	var choice *Choice
	for i := range node.Choices {
		if node.Choices[i].ID == choiceID {
			choice = &node.Choices[i]
			break
		}
	}
	if choice == nil {
		return State{}, fmt.Errorf("%w: %q on node %q", ErrUnknownChoice, choiceID, node.ID)
	}

	next := State{
		CurrentNodeID:  choice.TargetNodeID,
		Variables:      make(map[string]interface{}, len(state.Variables)),
		VisitedNodeIDs: appendVisited(state.VisitedNodeIDs, choice.TargetNodeID),
		ProgressScore:  state.ProgressScore + choice.Effects[ProgressEffect],
	}
	for k, v := range state.Variables {
		next.Variables[k] = v
	}

	return next, nil
}

// Advance follows a node's linear continuation (NextNodeID) for beats that
// present no choices. Returns the state unchanged when there is nowhere to go.
func Advance(g *Graph, state State) State {
	node := g.Node(state.CurrentNodeID)
	if node == nil || node.NextNodeID == "" || len(node.Choices) > 0 {
		return state
	}

	next := State{
		CurrentNodeID:  node.NextNodeID,
		Variables:      make(map[string]interface{}, len(state.Variables)),
		VisitedNodeIDs: appendVisited(state.VisitedNodeIDs, node.NextNodeID),
		ProgressScore:  state.ProgressScore,
	}
	for k, v := range state.Variables {
		next.Variables[k] = v
	}
	return next
}

// IsComplete reports whether the dialogue has reached a completion node.
func IsComplete(g *Graph, state State) bool {
	return g.IsCompletionNode(state.CurrentNodeID)
}

// appendVisited returns a fresh slice with id appended unless already
// present. The input slice is never written to.
func appendVisited(visited []string, id string) []string {
	for _, v := range visited {
		if v == id {
			return append([]string(nil), visited...)
		}
	}
	out := make([]string, 0, len(visited)+1)
	out = append(out, visited...)
	return append(out, id)
}
