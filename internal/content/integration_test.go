package content

import (
	"errors"
	"testing"

	"github.com/soulbios/chamber-engine/internal/chamber"
	"github.com/soulbios/chamber-engine/internal/narrative"
)

// The shipped content tree must stay playable end to end.

func TestShippedContentLoads(t *testing.T) {
	loader := NewLoader("../../content")

	chambers, err := loader.Chambers()
	if err != nil {
		t.Fatalf("failed to list chambers: %v", err)
	}
	if len(chambers) == 0 {
		t.Fatal("expected at least one shipped chamber")
	}

	for _, name := range chambers {
		if _, err := loader.RoomsForChamber(name); err != nil {
			t.Errorf("chamber %s failed to load: %v", name, err)
		}
	}

	narratives, err := loader.Narratives()
	if err != nil {
		t.Fatalf("failed to list narratives: %v", err)
	}
	if len(narratives) == 0 {
		t.Fatal("expected at least one shipped narrative")
	}
}

func TestFortressPlaythrough(t *testing.T) {
	loader := NewLoader("../../content")

	g, err := loader.RoomsForChamber("fortress")
	if err != nil {
		t.Fatalf("failed to load fortress: %v", err)
	}

	sess := chamber.NewSession(g)
	if sess.CurrentRoomID() != "gatehouse" {
		t.Fatalf("expected to start in gatehouse, got %s", sess.CurrentRoomID())
	}

	// The exit is locked until three rooms are solved.
	if err := sess.EnterRoom("threshold"); !errors.Is(err, chamber.ErrInvalidTransition) {
		t.Errorf("expected locked exit, got %v", err)
	}

	answer := func(roomID string, choice int) {
		t.Helper()
		if err := sess.SelectChoice(choice); err != nil {
			t.Fatalf("%s: failed to select choice: %v", roomID, err)
		}
		res, err := sess.SubmitAnswer()
		if err != nil {
			t.Fatalf("%s: failed to submit answer: %v", roomID, err)
		}
		if !res.Correct {
			t.Fatalf("%s: expected choice %d to be correct", roomID, choice)
		}
	}

	// Wrong answer first: the room stays open and a retry succeeds.
	if err := sess.SelectChoice(3); err != nil {
		t.Fatalf("failed to select choice: %v", err)
	}
	res, err := sess.SubmitAnswer()
	if err != nil {
		t.Fatalf("failed to submit answer: %v", err)
	}
	if res.Correct {
		t.Fatal("expected choice 3 to be wrong in gatehouse")
	}
	if res.Hint == "" || res.CorrectChoice == "" {
		t.Error("expected feedback with hint and correct choice")
	}

	answer("gatehouse", 0)
	if sess.Phase() != chamber.PhaseOpen {
		t.Errorf("expected open phase after one answer, got %s", sess.Phase())
	}

	if err := sess.EnterRoom("archive"); err != nil {
		t.Fatalf("failed to enter archive: %v", err)
	}
	answer("archive", 1)

	if err := sess.EnterRoom("watchtower"); err != nil {
		t.Fatalf("failed to enter watchtower: %v", err)
	}
	answer("watchtower", 1)

	if sess.Phase() != chamber.PhaseCompletable {
		t.Fatalf("expected completable phase after three answers, got %s", sess.Phase())
	}

	// Entering the exit ends the session, bypassing adjacency.
	if err := sess.EnterRoom("threshold"); err != nil {
		t.Fatalf("failed to enter threshold: %v", err)
	}
	if sess.Phase() != chamber.PhaseEnded {
		t.Errorf("expected ended phase, got %s", sess.Phase())
	}

	snap := sess.Snapshot()
	if snap.CurrentRoomID != "threshold" {
		t.Errorf("expected final room threshold, got %s", snap.CurrentRoomID)
	}
	if len(snap.CompletedRoomIDs) != 3 {
		t.Errorf("expected 3 completed rooms, got %d", len(snap.CompletedRoomIDs))
	}
}

func TestGuardianNarrativePlaythrough(t *testing.T) {
	loader := NewLoader("../../content")

	g, err := loader.NarrativeGraph("fortress", "guardian")
	if err != nil {
		t.Fatalf("failed to load guardian narrative: %v", err)
	}

	d := narrative.NewDialogue(g)
	if d.CurrentNode().ID != "intro" {
		t.Fatalf("expected to start at intro, got %s", d.CurrentNode().ID)
	}

	if err := d.Choose("c_listen"); err != nil {
		t.Fatalf("failed to choose c_listen: %v", err)
	}
	if d.CurrentNode().Type != narrative.NodeInsight {
		t.Errorf("expected an insight node, got %s", d.CurrentNode().Type)
	}

	d.Advance()
	if d.CurrentNode().ID != "offer" {
		t.Fatalf("expected to advance to offer, got %s", d.CurrentNode().ID)
	}

	if err := d.Choose("c_open"); err != nil {
		t.Fatalf("failed to choose c_open: %v", err)
	}
	d.Advance()

	if !d.Complete() {
		t.Fatal("expected dialogue to be complete at farewell")
	}
	if got := d.State().ProgressScore; got != 5 {
		t.Errorf("expected progress score 5, got %d", got)
	}

	// Choices on a completed dialogue are rejected.
	if err := d.Choose("c_open"); err == nil {
		t.Error("expected error choosing after completion")
	}
}

func TestGuardianNarrativeUnknownChoice(t *testing.T) {
	loader := NewLoader("../../content")

	g, err := loader.NarrativeGraph("fortress", "guardian")
	if err != nil {
		t.Fatalf("failed to load guardian narrative: %v", err)
	}

	d := narrative.NewDialogue(g)
	if err := d.Choose("c_nonsense"); !errors.Is(err, narrative.ErrUnknownChoice) {
		t.Errorf("expected ErrUnknownChoice, got %v", err)
	}
}
