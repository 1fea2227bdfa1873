package chamber

// QuestionChoices is the fixed number of answer choices per question.
const QuestionChoices = 4

// Question gates a room. CorrectIndex is fixed at creation and never mutated.
type Question struct {
	ID           string
	Text         string
	Choices      [QuestionChoices]string
	CorrectIndex int
	Hint         string
	Explanation  string
}

// ChoiceLabel returns the user-facing label (A-D) for a choice index.
func ChoiceLabel(index int) string {
	if index < 0 || index >= QuestionChoices {
		return "?"
	}
	return string(rune('A' + index))
}

// Room is a node in the chamber graph. Shared, read-only across sessions;
// per-session completion is tracked by the Session, not here.
type Room struct {
	ID               string
	Name             string
	GridPosition     Position
	Question         *Question // nil marks the terminal exit room
	Objects          []string
	ConnectedRoomIDs []string // directed adjacency; the reverse edge is not implied
}

// IsExit reports whether the room is the terminal exit (no question gate).
func (r *Room) IsExit() bool {
	return r.Question == nil
}
