package chamber

import "fmt"

// Graph holds the fixed set of rooms and their adjacency for one chamber.
// Built once per chamber, immutable for the lifetime of every run.
type Graph struct {
	chamberID  string
	rooms      map[string]*Room
	startID    string
	exitID     string
	gridWidth  int
	gridHeight int
}

// NewGraph builds a chamber graph and runs the load-time integrity check.
// Every connected room id must resolve, exactly one room may be the exit,
// questions must be well-formed, and grid positions must be in bounds.
func NewGraph(chamberID string, rooms []*Room, startID string, gridWidth, gridHeight int) (*Graph, error) {
	if gridWidth <= 0 {
		gridWidth = DefaultGridWidth
	}
	if gridHeight <= 0 {
		gridHeight = DefaultGridHeight
	}

	g := &Graph{
		chamberID:  chamberID,
		rooms:      make(map[string]*Room, len(rooms)),
		startID:    startID,
		gridWidth:  gridWidth,
		gridHeight: gridHeight,
	}

	for _, room := range rooms {
		if room.ID == "" {
			return nil, &IntegrityError{ChamberID: chamberID, Detail: "room with empty id"}
		}
		if _, dup := g.rooms[room.ID]; dup {
			return nil, &IntegrityError{ChamberID: chamberID, Detail: fmt.Sprintf("duplicate room id %q", room.ID)}
		}
		g.rooms[room.ID] = room
	}

	if len(g.rooms) == 0 {
		return nil, &IntegrityError{ChamberID: chamberID, Detail: "no rooms"}
	}
	if _, ok := g.rooms[startID]; !ok {
		return nil, &IntegrityError{ChamberID: chamberID, Detail: fmt.Sprintf("start room %q does not exist", startID)}
	}

	for _, room := range rooms {
		if room.GridPosition.X < 0 || room.GridPosition.X >= gridWidth ||
			room.GridPosition.Y < 0 || room.GridPosition.Y >= gridHeight {
			return nil, &IntegrityError{
				ChamberID: chamberID,
				Detail:    fmt.Sprintf("room %q position %s outside %dx%d grid", room.ID, room.GridPosition, gridWidth, gridHeight),
			}
		}

		// Adjacency is directed; only the forward edge is checked.
		for _, target := range room.ConnectedRoomIDs {
			if _, ok := g.rooms[target]; !ok {
				return nil, &IntegrityError{
					ChamberID: chamberID,
					Detail:    fmt.Sprintf("room %q connects to unknown room %q", room.ID, target),
				}
			}
		}

		if room.IsExit() {
			if g.exitID != "" {
				return nil, &IntegrityError{
					ChamberID: chamberID,
					Detail:    fmt.Sprintf("multiple exit rooms: %q and %q", g.exitID, room.ID),
				}
			}
			g.exitID = room.ID
			continue
		}

		q := room.Question
		if q.CorrectIndex < 0 || q.CorrectIndex >= QuestionChoices {
			return nil, &IntegrityError{
				ChamberID: chamberID,
				Detail:    fmt.Sprintf("room %q question %q: correct index %d out of range", room.ID, q.ID, q.CorrectIndex),
			}
		}
		for i, choice := range q.Choices {
			if choice == "" {
				return nil, &IntegrityError{
					ChamberID: chamberID,
					Detail:    fmt.Sprintf("room %q question %q: empty choice %s", room.ID, q.ID, ChoiceLabel(i)),
				}
			}
		}
	}

	if g.exitID == "" {
		return nil, &IntegrityError{ChamberID: chamberID, Detail: "no exit room (every room has a question)"}
	}
	if g.exitID == startID {
		return nil, &IntegrityError{ChamberID: chamberID, Detail: "start room cannot be the exit"}
	}

	return g, nil
}

// ChamberID returns the chamber this graph belongs to.
func (g *Graph) ChamberID() string {
	return g.chamberID
}

// Room returns the room with the given id, or ErrRoomNotFound.
func (g *Graph) Room(id string) (*Room, error) {
	room, ok := g.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q in chamber %q", ErrRoomNotFound, id, g.chamberID)
	}
	return room, nil
}

// Neighbors returns the directed adjacency list of a room. Unknown rooms
// have no neighbors.
func (g *Graph) Neighbors(id string) []string {
	room, ok := g.rooms[id]
	if !ok {
		return nil
	}
	return room.ConnectedRoomIDs
}

// StartRoomID returns the room every session begins in.
func (g *Graph) StartRoomID() string {
	return g.startID
}

// ExitRoomID returns the terminal exit room.
func (g *Graph) ExitRoomID() string {
	return g.exitID
}

// GridSize returns the grid dimensions for this chamber.
func (g *Graph) GridSize() (width, height int) {
	return g.gridWidth, g.gridHeight
}

// RoomCount returns the number of rooms in the chamber.
func (g *Graph) RoomCount() int {
	return len(g.rooms)
}

// RoomIDs returns all room ids. Order is not defined.
func (g *Graph) RoomIDs() []string {
	ids := make([]string, 0, len(g.rooms))
	for id := range g.rooms {
		ids = append(ids, id)
	}
	return ids
}
