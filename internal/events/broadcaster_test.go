package events

import (
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	initial := SubscriberCount()

	sub1 := Subscribe()
	if SubscriberCount() != initial+1 {
		t.Errorf("expected %d subscribers after first subscribe, got %d", initial+1, SubscriberCount())
	}

	sub2 := Subscribe()
	if SubscriberCount() != initial+2 {
		t.Errorf("expected %d subscribers after second subscribe, got %d", initial+2, SubscriberCount())
	}

	Unsubscribe(sub1)
	if SubscriberCount() != initial+1 {
		t.Errorf("expected %d subscribers after unsubscribe, got %d", initial+1, SubscriberCount())
	}

	Unsubscribe(sub2)
	if SubscriberCount() != initial {
		t.Errorf("expected %d subscribers after all unsubscribed, got %d", initial, SubscriberCount())
	}
}

func TestBroadcastToSubscribers(t *testing.T) {
	sub := Subscribe()
	defer Unsubscribe(sub)

	Emit("info", "room.entered", "fortress", map[string]interface{}{"room_id": "gatehouse"})

	select {
	case e := <-sub:
		if e.Name != "room.entered" {
			t.Errorf("expected event name 'room.entered', got '%s'", e.Name)
		}
		if e.ChamberID != "fortress" {
			t.Errorf("expected chamber 'fortress', got '%s'", e.ChamberID)
		}
		if e.Fields["room_id"] != "gatehouse" {
			t.Errorf("expected room_id 'gatehouse', got '%v'", e.Fields["room_id"])
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for broadcast event")
	}
}

func TestSlowSubscriberDoesNotBlockEmit(t *testing.T) {
	sub := Subscribe()
	defer Unsubscribe(sub)

	// Overflow the subscriber buffer without draining it. Emit must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			Emit("info", "answer.correct", "fortress", map[string]interface{}{"i": i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked on a slow subscriber")
	}
}

func TestRecentEvents(t *testing.T) {
	Clear()

	for i := 0; i < 10; i++ {
		Emit("info", "room.entered", "fortress", map[string]interface{}{"i": i})
	}

	recent := RecentEvents(3)
	if len(recent) != 3 {
		t.Fatalf("expected 3 recent events, got %d", len(recent))
	}
	if recent[2].Fields["i"] != 9 {
		t.Errorf("expected newest event last, got %v", recent[2].Fields["i"])
	}

	all := RecentEvents(0)
	if len(all) != 10 {
		t.Errorf("expected all 10 events, got %d", len(all))
	}
}
