// Package chamber implements the maze side of the engine: the shared room
// graph, fog-of-war visibility, and the per-session progression state machine.
package chamber

import "fmt"

// Default grid dimensions for a chamber. Content files may override them.
const (
	DefaultGridWidth  = 15
	DefaultGridHeight = 15
)

// Position is a cell on the chamber grid. Value type, equality by coordinates.
type Position struct {
	X int
	Y int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
