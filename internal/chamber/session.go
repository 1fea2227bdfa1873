package chamber

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/soulbios/chamber-engine/internal/events"
)

// CompletionThreshold is the number of distinct correct answers required
// before the exit room becomes reachable. Fixed policy.
const CompletionThreshold = 3

// RoomState is the per-room question lifecycle from the player's view.
type RoomState string

const (
	RoomLocked  RoomState = "locked"
	RoomActive  RoomState = "active"
	RoomCorrect RoomState = "correct"
)

// Phase is the chamber-wide progression state.
type Phase string

const (
	// PhaseOpen: the exit room is not yet reachable.
	PhaseOpen Phase = "open"
	// PhaseCompletable: enough correct answers; entering the exit ends the run.
	PhaseCompletable Phase = "completable"
	// PhaseEnded: the exit has been entered; no further transitions.
	PhaseEnded Phase = "ended"
)

const noSelection = -1

// AnswerResult is the user-facing outcome of SubmitAnswer. Incorrect answers
// always carry the correct choice and the explanation; they are never
// silently swallowed.
type AnswerResult struct {
	Correct       bool
	CorrectChoice string // label + text, e.g. "B: The gate of memory"
	Explanation   string
	Hint          string
}

// Session drives one play-through of a chamber. It owns all mutable run
// state; the Graph it holds is shared and read-only. Transitions are
// synchronous and must be issued in order from a single goroutine.
type Session struct {
	graph *Graph

	currentRoomID  string
	revealed       mapset.Set[Position]
	completed      mapset.Set[string]
	history        []string
	correctAnswers int

	roomStates     map[string]RoomState
	selectedChoice int
	questionActive bool
	ended          bool
}

// NewSession starts a run at the graph's start room. The start room's grid
// position is revealed from creation, and its question (if any) is active.
func NewSession(g *Graph) *Session {
	s := &Session{
		graph:          g,
		currentRoomID:  g.StartRoomID(),
		revealed:       mapset.New[Position](),
		completed:      mapset.New[string](),
		roomStates:     make(map[string]RoomState, g.RoomCount()),
		selectedChoice: noSelection,
	}

	for _, id := range g.RoomIDs() {
		s.roomStates[id] = RoomLocked
	}

	start, _ := g.Room(g.StartRoomID())
	s.revealed.Put(start.GridPosition)
	s.roomStates[start.ID] = RoomActive
	s.questionActive = start.Question != nil

	events.Emit("info", "session.started", g.ChamberID(), map[string]interface{}{
		"room_id": start.ID,
	})

	return s
}

// EnterRoom moves the player through a door. The target must be in the
// current room's adjacency list, except for the exit room: once the chamber
// is completable, entering the exit always succeeds and ends the session,
// bypassing the question flow.
func (s *Session) EnterRoom(roomID string) error {
	if s.ended {
		return fmt.Errorf("%w: session has ended", ErrInvalidTransition)
	}

	room, err := s.graph.Room(roomID)
	if err != nil {
		return err
	}

	if room.IsExit() {
		if s.correctAnswers < CompletionThreshold {
			return fmt.Errorf("%w: exit %q is locked until %d correct answers (have %d)",
				ErrInvalidTransition, roomID, CompletionThreshold, s.correctAnswers)
		}
		s.history = append(s.history, s.currentRoomID)
		s.currentRoomID = roomID
		s.questionActive = false
		s.selectedChoice = noSelection
		s.ended = true

		events.Emit("info", "chamber.completed", s.graph.ChamberID(), map[string]interface{}{
			"correct_answers": s.correctAnswers,
			"rooms_visited":   len(s.history) + 1,
		})
		events.Emit("info", "session.ended", s.graph.ChamberID(), nil)
		return nil
	}

	if !s.isAdjacent(roomID) {
		return fmt.Errorf("%w: room %q is not connected to %q",
			ErrInvalidTransition, roomID, s.currentRoomID)
	}

	s.history = append(s.history, s.currentRoomID)
	s.currentRoomID = roomID
	s.selectedChoice = noSelection

	if s.completed.Has(roomID) {
		// Re-visiting a solved room does not re-open its question.
		s.questionActive = false
	} else {
		s.roomStates[roomID] = RoomActive
		s.questionActive = room.Question != nil
	}

	events.Emit("info", "room.entered", s.graph.ChamberID(), map[string]interface{}{
		"room_id": roomID,
	})

	return nil
}

// SelectChoice records the player's pending answer choice.
func (s *Session) SelectChoice(index int) error {
	if !s.questionActive {
		return fmt.Errorf("%w: no active question in room %q", ErrInvalidTransition, s.currentRoomID)
	}
	if index < 0 || index >= QuestionChoices {
		return fmt.Errorf("%w: choice index %d out of range", ErrInvalidTransition, index)
	}
	s.selectedChoice = index
	return nil
}

// SubmitAnswer evaluates the previously selected choice against the current
// room's question. A correct answer completes the room and reveals the path
// to every neighbor at once. An incorrect answer changes nothing except the
// returned feedback; the player may retry indefinitely.
func (s *Session) SubmitAnswer() (AnswerResult, error) {
	if !s.questionActive {
		return AnswerResult{}, fmt.Errorf("%w: no active question in room %q", ErrInvalidTransition, s.currentRoomID)
	}
	if s.selectedChoice == noSelection {
		return AnswerResult{}, fmt.Errorf("%w: no choice selected", ErrInvalidTransition)
	}

	room, err := s.graph.Room(s.currentRoomID)
	if err != nil {
		return AnswerResult{}, err
	}
	q := room.Question

	if s.selectedChoice != q.CorrectIndex {
		// The selection survives a miss; nothing changes but the feedback.
		events.Emit("info", "answer.incorrect", s.graph.ChamberID(), map[string]interface{}{
			"room_id":     room.ID,
			"question_id": q.ID,
		})
		return AnswerResult{
			Correct:       false,
			CorrectChoice: fmt.Sprintf("%s: %s", ChoiceLabel(q.CorrectIndex), q.Choices[q.CorrectIndex]),
			Explanation:   q.Explanation,
			Hint:          q.Hint,
		}, nil
	}

	s.correctAnswers++
	s.completed.Put(room.ID)
	s.roomStates[room.ID] = RoomCorrect
	s.questionActive = false
	s.selectedChoice = noSelection

	// All neighbors become simultaneously visible, not just the door the
	// player takes next.
	for _, neighborID := range s.graph.Neighbors(room.ID) {
		neighbor, err := s.graph.Room(neighborID)
		if err != nil {
			continue
		}
		RevealPath(room.GridPosition, neighbor.GridPosition, s.revealed)
	}

	events.Emit("info", "answer.correct", s.graph.ChamberID(), map[string]interface{}{
		"room_id":         room.ID,
		"question_id":     q.ID,
		"correct_answers": s.correctAnswers,
	})
	if s.correctAnswers == CompletionThreshold {
		events.Emit("info", "chamber.completable", s.graph.ChamberID(), map[string]interface{}{
			"correct_answers": s.correctAnswers,
		})
	}

	return AnswerResult{Correct: true, Explanation: q.Explanation}, nil
}

func (s *Session) isAdjacent(roomID string) bool {
	for _, id := range s.graph.Neighbors(s.currentRoomID) {
		if id == roomID {
			return true
		}
	}
	return false
}

// Phase returns the chamber-wide progression state.
func (s *Session) Phase() Phase {
	switch {
	case s.ended:
		return PhaseEnded
	case s.correctAnswers >= CompletionThreshold:
		return PhaseCompletable
	default:
		return PhaseOpen
	}
}

// CurrentRoomID returns the room the player is in.
func (s *Session) CurrentRoomID() string {
	return s.currentRoomID
}

// CorrectAnswers returns the monotonically non-decreasing correct count.
func (s *Session) CorrectAnswers() int {
	return s.correctAnswers
}

// Revealed reports whether a grid cell has been uncovered.
func (s *Session) Revealed(pos Position) bool {
	return s.revealed.Has(pos)
}

// RevealedCount returns the number of uncovered grid cells.
func (s *Session) RevealedCount() int {
	return s.revealed.Size()
}

// RoomStateOf returns the lifecycle state of a room in this session.
func (s *Session) RoomStateOf(roomID string) RoomState {
	if st, ok := s.roomStates[roomID]; ok {
		return st
	}
	return RoomLocked
}

// QuestionActive reports whether the current room is showing its question.
func (s *Session) QuestionActive() bool {
	return s.questionActive
}

// Snapshot is an immutable copy of the run state for the presentation layer.
type Snapshot struct {
	ChamberID         string
	CurrentRoomID     string
	Phase             Phase
	RevealedPositions []Position
	CompletedRoomIDs  []string
	NavigationHistory []string
	CorrectAnswers    int
	QuestionActive    bool
}

// Snapshot copies the run state. Callers must treat the result as a value:
// mutating it has no effect on the session.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ChamberID:         s.graph.ChamberID(),
		CurrentRoomID:     s.currentRoomID,
		Phase:             s.Phase(),
		RevealedPositions: make([]Position, 0, s.revealed.Size()),
		CompletedRoomIDs:  make([]string, 0, s.completed.Size()),
		NavigationHistory: append([]string(nil), s.history...),
		CorrectAnswers:    s.correctAnswers,
		QuestionActive:    s.questionActive,
	}
	s.revealed.Each(func(pos Position) {
		snap.RevealedPositions = append(snap.RevealedPositions, pos)
	})
	s.completed.Each(func(id string) {
		snap.CompletedRoomIDs = append(snap.CompletedRoomIDs, id)
	})
	return snap
}
