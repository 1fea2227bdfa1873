// Package narrative implements the branching-dialogue engine: immutable
// graphs keyed by (chamber, character archetype), pure transition functions
// over a small state value, and the load-time content validator.
package narrative

// NodeType classifies a dialogue node.
type NodeType string

const (
	NodeDialogue   NodeType = "dialogue"
	NodeInsight    NodeType = "insight"
	NodeCompletion NodeType = "completion"
)

// ProgressEffect is the effect key every choice carries at minimum.
const ProgressEffect = "progress"

// Choice is a player option on a dialogue node.
type Choice struct {
	ID           string
	Text         string
	TargetNodeID string
	Effects      map[string]int // at minimum a "progress" delta
}

// Node is one beat of a dialogue tree.
type Node struct {
	ID         string
	Type       NodeType
	Content    string
	Choices    []Choice
	NextNodeID string // linear continuation for nodes without choices
	Metadata   map[string]interface{}
}

// Graph is a dialogue tree for one (chamber, archetype) pair.
// Loaded once, immutable thereafter, shared read-only across sessions.
type Graph struct {
	ChamberID         string
	Archetype         string
	StartNodeID       string
	Nodes             map[string]*Node
	CompletionNodeIDs map[string]struct{}
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	return g.Nodes[id]
}

// IsCompletionNode reports whether the id is a completion node.
func (g *Graph) IsCompletionNode(id string) bool {
	_, ok := g.CompletionNodeIDs[id]
	return ok
}
