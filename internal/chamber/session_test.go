package chamber

import (
	"errors"
	"testing"
)

func answerCorrectly(t *testing.T, s *Session, correct int) {
	t.Helper()
	if err := s.SelectChoice(correct); err != nil {
		t.Fatalf("failed to select choice: %v", err)
	}
	result, err := s.SubmitAnswer()
	if err != nil {
		t.Fatalf("failed to submit answer: %v", err)
	}
	if !result.Correct {
		t.Fatal("expected answer to be correct")
	}
}

func TestNewSessionRevealsStartRoom(t *testing.T) {
	g := mustGraph(t)
	s := NewSession(g)

	if s.CurrentRoomID() != "a" {
		t.Errorf("expected session to start in room a, got %s", s.CurrentRoomID())
	}
	if !s.Revealed(Position{X: 7, Y: 14}) {
		t.Error("expected start room position to be revealed from creation")
	}
	if !s.QuestionActive() {
		t.Error("expected start room question to be active")
	}
	if s.Phase() != PhaseOpen {
		t.Errorf("expected phase open, got %s", s.Phase())
	}
	if s.RoomStateOf("a") != RoomActive {
		t.Errorf("expected start room active, got %s", s.RoomStateOf("a"))
	}
	if s.RoomStateOf("d") != RoomLocked {
		t.Errorf("expected far room locked, got %s", s.RoomStateOf("d"))
	}
}

func TestEnterRoomRequiresAdjacency(t *testing.T) {
	g := mustGraph(t)
	s := NewSession(g)

	// d is not adjacent to a.
	if err := s.EnterRoom("d"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for non-adjacent room, got %v", err)
	}
	if s.CurrentRoomID() != "a" {
		t.Errorf("failed transition must not move the player, now in %s", s.CurrentRoomID())
	}

	if _, err := s.SubmitAnswer(); err != nil {
		// The question in a is still active after the failed navigation.
		t.Logf("submit without selection correctly failed: %v", err)
	}

	if err := s.EnterRoom("b"); err != nil {
		t.Fatalf("expected adjacent entry to succeed: %v", err)
	}
	if s.CurrentRoomID() != "b" {
		t.Errorf("expected to be in b, got %s", s.CurrentRoomID())
	}

	snap := s.Snapshot()
	if len(snap.NavigationHistory) != 1 || snap.NavigationHistory[0] != "a" {
		t.Errorf("expected history [a], got %v", snap.NavigationHistory)
	}
}

func TestEnterUnknownRoom(t *testing.T) {
	g := mustGraph(t)
	s := NewSession(g)

	if err := s.EnterRoom("ghost"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestSubmitAnswerContract(t *testing.T) {
	g := mustGraph(t)
	s := NewSession(g)

	// No selection yet.
	if _, err := s.SubmitAnswer(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition without a selection, got %v", err)
	}

	if err := s.SelectChoice(9); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for out-of-range choice, got %v", err)
	}

	answerCorrectly(t, s, 0)

	// Question is cleared after the correct answer.
	if s.QuestionActive() {
		t.Error("expected question to clear after correct answer")
	}
	if err := s.SelectChoice(0); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition with no active question, got %v", err)
	}
}

func TestIncorrectAnswerLeavesStateUnchanged(t *testing.T) {
	g := mustGraph(t)
	s := NewSession(g)

	revealedBefore := s.RevealedCount()

	// Correct index in room a is 0; submit 2.
	if err := s.SelectChoice(2); err != nil {
		t.Fatalf("failed to select: %v", err)
	}
	result, err := s.SubmitAnswer()
	if err != nil {
		t.Fatalf("incorrect answers are feedback, not errors: %v", err)
	}
	if result.Correct {
		t.Fatal("expected incorrect result")
	}
	if result.CorrectChoice != "A: north" {
		t.Errorf("expected correct choice feedback 'A: north', got %q", result.CorrectChoice)
	}
	if result.Explanation == "" {
		t.Error("expected explanation text in feedback")
	}

	if s.CorrectAnswers() != 0 {
		t.Errorf("incorrect answer must not change the count, got %d", s.CorrectAnswers())
	}
	if s.RevealedCount() != revealedBefore {
		t.Errorf("incorrect answer must not reveal cells: %d -> %d", revealedBefore, s.RevealedCount())
	}

	// The selection itself is untouched: a literal re-submit retries the
	// same choice and gets the same feedback.
	again, err := s.SubmitAnswer()
	if err != nil {
		t.Fatalf("re-submit after a miss must work: %v", err)
	}
	if again.Correct {
		t.Fatal("expected the retried choice to still be wrong")
	}

	answerCorrectly(t, s, 0)
	if s.CorrectAnswers() != 1 {
		t.Errorf("expected 1 correct answer after retry, got %d", s.CorrectAnswers())
	}
}

func TestCorrectAnswerRevealsEveryNeighbor(t *testing.T) {
	g := mustGraph(t)
	s := NewSession(g)

	answerCorrectly(t, s, 0)

	// Room a (7,14) connects to b (5,10) and c (9,10). Both paths reveal,
	// not just the door the player takes next.
	// Note the asymmetry: half-away-from-zero rounding hugs x=7/x=6 on the
	// way to b but x=8/x=9 on the way to c.
	pathToB := []Position{{7, 14}, {7, 13}, {6, 12}, {6, 11}, {5, 10}}
	pathToC := []Position{{7, 14}, {8, 13}, {8, 12}, {9, 11}, {9, 10}}
	for _, pos := range append(pathToB, pathToC...) {
		if !s.Revealed(pos) {
			t.Errorf("expected %s to be revealed after correct answer", pos)
		}
	}
	if s.RoomStateOf("a") != RoomCorrect {
		t.Errorf("expected room a correct, got %s", s.RoomStateOf("a"))
	}
}

func TestExitGatedByCompletionThreshold(t *testing.T) {
	g := mustGraph(t)
	s := NewSession(g)

	// Two correct answers are not enough.
	answerCorrectly(t, s, 0)
	if err := s.EnterRoom("b"); err != nil {
		t.Fatalf("failed to enter b: %v", err)
	}
	answerCorrectly(t, s, 1)

	if s.Phase() != PhaseOpen {
		t.Errorf("expected phase open at 2 answers, got %s", s.Phase())
	}
	if err := s.EnterRoom("exit"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected exit to be unreachable at 2 answers, got %v", err)
	}

	// Third correct answer unlocks the exit.
	if err := s.EnterRoom("d"); err != nil {
		t.Fatalf("failed to enter d: %v", err)
	}
	answerCorrectly(t, s, 3)

	if s.Phase() != PhaseCompletable {
		t.Errorf("expected phase completable at 3 answers, got %s", s.Phase())
	}

	// The exit bypasses the question flow entirely and ends the session.
	// Navigation never reveals cells; only correct answers do.
	revealedBefore := s.RevealedCount()
	if err := s.EnterRoom("exit"); err != nil {
		t.Fatalf("expected exit entry to succeed when completable: %v", err)
	}
	if s.RevealedCount() != revealedBefore {
		t.Errorf("entering the exit must not reveal cells: %d -> %d", revealedBefore, s.RevealedCount())
	}
	if s.Phase() != PhaseEnded {
		t.Errorf("expected phase ended, got %s", s.Phase())
	}
	if s.QuestionActive() {
		t.Error("exit room must not present a question")
	}

	// Nothing moves after the end.
	if err := s.EnterRoom("d"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected transitions after end to fail, got %v", err)
	}
}

func TestRevisitingCompletedRoom(t *testing.T) {
	g := mustGraph(t)
	s := NewSession(g)

	answerCorrectly(t, s, 0)
	if err := s.EnterRoom("b"); err != nil {
		t.Fatalf("failed to enter b: %v", err)
	}
	if err := s.EnterRoom("a"); err != nil {
		t.Fatalf("failed to re-enter a: %v", err)
	}

	if s.QuestionActive() {
		t.Error("re-visiting a solved room must not re-open its question")
	}
	if s.CorrectAnswers() != 1 {
		t.Errorf("re-visit must not change the correct count, got %d", s.CorrectAnswers())
	}

	snap := s.Snapshot()
	if len(snap.CompletedRoomIDs) != 1 || snap.CompletedRoomIDs[0] != "a" {
		t.Errorf("expected completed [a], got %v", snap.CompletedRoomIDs)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	g := mustGraph(t)
	s := NewSession(g)

	snap := s.Snapshot()
	snap.NavigationHistory = append(snap.NavigationHistory, "tampered")
	snap.CorrectAnswers = 99

	fresh := s.Snapshot()
	if len(fresh.NavigationHistory) != 0 {
		t.Errorf("mutating a snapshot must not affect the session, history %v", fresh.NavigationHistory)
	}
	if fresh.CorrectAnswers != 0 {
		t.Errorf("expected 0 correct answers, got %d", fresh.CorrectAnswers)
	}
}

func TestRevealedSetMonotonicAcrossTransitions(t *testing.T) {
	g := mustGraph(t)
	s := NewSession(g)

	seen := make(map[Position]bool)
	record := func() {
		for _, pos := range s.Snapshot().RevealedPositions {
			seen[pos] = true
		}
		for pos := range seen {
			if !s.Revealed(pos) {
				t.Fatalf("previously revealed %s was lost", pos)
			}
		}
	}

	record()
	answerCorrectly(t, s, 0)
	record()
	if err := s.EnterRoom("b"); err != nil {
		t.Fatal(err)
	}
	record()
	if err := s.SelectChoice(0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitAnswer(); err != nil {
		t.Fatal(err)
	}
	record()
	answerCorrectly(t, s, 1)
	record()
}
