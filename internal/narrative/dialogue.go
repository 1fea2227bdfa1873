package narrative

import (
	"github.com/soulbios/chamber-engine/internal/events"
)

// Dialogue wraps the pure transition functions for one running conversation
// and emits engine events as it advances. The wrapped Graph stays shared and
// read-only; all mutable state lives here.
type Dialogue struct {
	graph *Graph
	state State
}

// NewDialogue starts a dialogue on a validated graph.
func NewDialogue(g *Graph) *Dialogue {
	d := &Dialogue{
		graph: g,
		state: Start(g),
	}
	events.Emit("info", "narrative.started", g.ChamberID, map[string]interface{}{
		"archetype":  g.Archetype,
		"start_node": g.StartNodeID,
	})
	return d
}

// Graph returns the shared dialogue graph.
func (d *Dialogue) Graph() *Graph {
	return d.graph
}

// State returns the current dialogue state value.
func (d *Dialogue) State() State {
	return d.state
}

// CurrentNode returns the node the dialogue is on.
func (d *Dialogue) CurrentNode() *Node {
	return d.graph.Node(d.state.CurrentNodeID)
}

// Choose applies a choice by id. On an unknown id the dialogue state is left
// exactly as it was.
func (d *Dialogue) Choose(choiceID string) error {
	next, err := ProcessChoice(d.graph, d.state, choiceID)
	if err != nil {
		return err
	}
	d.state = next

	events.Emit("info", "narrative.choice", d.graph.ChamberID, map[string]interface{}{
		"archetype":      d.graph.Archetype,
		"choice_id":      choiceID,
		"node_id":        next.CurrentNodeID,
		"progress_score": next.ProgressScore,
	})

	if IsComplete(d.graph, d.state) {
		events.Emit("info", "narrative.completed", d.graph.ChamberID, map[string]interface{}{
			"archetype":      d.graph.Archetype,
			"progress_score": d.state.ProgressScore,
			"nodes_visited":  len(d.state.VisitedNodeIDs),
		})
	}
	return nil
}

// Advance follows the current node's linear continuation, if any.
func (d *Dialogue) Advance() {
	next := Advance(d.graph, d.state)
	if next.CurrentNodeID == d.state.CurrentNodeID {
		return
	}
	d.state = next
	if IsComplete(d.graph, d.state) {
		events.Emit("info", "narrative.completed", d.graph.ChamberID, map[string]interface{}{
			"archetype":      d.graph.Archetype,
			"progress_score": d.state.ProgressScore,
			"nodes_visited":  len(d.state.VisitedNodeIDs),
		})
	}
}

// Complete reports whether the dialogue reached a completion node.
func (d *Dialogue) Complete() bool {
	return IsComplete(d.graph, d.state)
}
