package narrative

import "fmt"

// Validate runs the load-time integrity check for a dialogue graph. It is
// part of the content pipeline, not the hot transition path: ProcessChoice
// assumes a validated graph.
//
// Checks: the start node exists, every choice target and linear continuation
// resolves, the completion set is non-empty and agrees with the
// completion-typed nodes in both directions, and
// every node reachable from the start can still reach a completion node in a
// finite number of steps (a cycle that avoids all completion nodes is a
// content-authoring bug and is rejected here).
func Validate(g *Graph) error {
	fail := func(format string, args ...interface{}) error {
		return &IntegrityError{ChamberID: g.ChamberID, Archetype: g.Archetype, Detail: fmt.Sprintf(format, args...)}
	}

	if len(g.Nodes) == 0 {
		return fail("no nodes")
	}
	if g.Node(g.StartNodeID) == nil {
		return fail("start node %q does not exist", g.StartNodeID)
	}
	if len(g.CompletionNodeIDs) == 0 {
		return fail("no completion nodes")
	}
	for id := range g.CompletionNodeIDs {
		node := g.Node(id)
		if node == nil {
			return fail("completion node %q does not exist", id)
		}
		if node.Type != NodeCompletion {
			return fail("completion node %q has type %q", id, node.Type)
		}
	}
	for _, node := range g.Nodes {
		if node.Type == NodeCompletion {
			if _, ok := g.CompletionNodeIDs[node.ID]; !ok {
				return fail("node %q has completion type but is not listed in the completion set", node.ID)
			}
		}
	}

	for _, node := range g.Nodes {
		seen := make(map[string]struct{}, len(node.Choices))
		for _, choice := range node.Choices {
			if choice.ID == "" {
				return fail("node %q has a choice with empty id", node.ID)
			}
			if _, dup := seen[choice.ID]; dup {
				return fail("node %q has duplicate choice id %q", node.ID, choice.ID)
			}
			seen[choice.ID] = struct{}{}
			if g.Node(choice.TargetNodeID) == nil {
				return fail("node %q choice %q targets unknown node %q", node.ID, choice.ID, choice.TargetNodeID)
			}
		}
		if node.NextNodeID != "" && g.Node(node.NextNodeID) == nil {
			return fail("node %q continues to unknown node %q", node.ID, node.NextNodeID)
		}
	}

	reachable := reachableFrom(g, g.StartNodeID)
	canComplete := canReachCompletion(g)
	for id := range reachable {
		if _, ok := canComplete[id]; !ok {
			return fail("node %q is reachable but cannot reach any completion node", id)
		}
	}

	return nil
}

// reachableFrom walks choices and linear continuations from a node.
func reachableFrom(g *Graph, startID string) map[string]struct{} {
	reachable := make(map[string]struct{})
	stack := []string{startID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := reachable[id]; seen {
			continue
		}
		node := g.Node(id)
		if node == nil {
			continue
		}
		reachable[id] = struct{}{}
		for _, choice := range node.Choices {
			stack = append(stack, choice.TargetNodeID)
		}
		if node.NextNodeID != "" {
			stack = append(stack, node.NextNodeID)
		}
	}
	return reachable
}

// canReachCompletion walks the reversed edges from every completion node.
// A node can reach completion along a finite path exactly when the reverse
// walk touches it.
func canReachCompletion(g *Graph) map[string]struct{} {
	reverse := make(map[string][]string, len(g.Nodes))
	for _, node := range g.Nodes {
		for _, choice := range node.Choices {
			reverse[choice.TargetNodeID] = append(reverse[choice.TargetNodeID], node.ID)
		}
		if node.NextNodeID != "" {
			reverse[node.NextNodeID] = append(reverse[node.NextNodeID], node.ID)
		}
	}

	canComplete := make(map[string]struct{}, len(g.Nodes))
	stack := make([]string, 0, len(g.CompletionNodeIDs))
	for id := range g.CompletionNodeIDs {
		stack = append(stack, id)
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := canComplete[id]; seen {
			continue
		}
		canComplete[id] = struct{}{}
		stack = append(stack, reverse[id]...)
	}
	return canComplete
}
