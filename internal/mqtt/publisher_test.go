package mqtt

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/soulbios/chamber-engine/internal/events"
)

type mockPublisher struct {
	mu        sync.Mutex
	connected bool
	published []publishedMessage
}

type publishedMessage struct {
	Topic   string
	Payload []byte
}

func (m *mockPublisher) Publish(topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedMessage{Topic: topic, Payload: payload})
	return nil
}

func (m *mockPublisher) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockPublisher) messages() []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publishedMessage(nil), m.published...)
}

func waitForMessages(t *testing.T, m *mockPublisher, n int) []publishedMessage {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if msgs := m.messages(); len(msgs) >= n {
			return msgs
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d published messages, have %d", n, len(m.messages()))
	return nil
}

func TestPublisherForwardsEvents(t *testing.T) {
	mock := &mockPublisher{connected: true}
	pub := NewPublisher(mock)
	if err := pub.Start(); err != nil {
		t.Fatalf("failed to start publisher: %v", err)
	}
	defer pub.Stop()

	events.Emit("info", "room.entered", "fortress", map[string]interface{}{"room_id": "vault"})

	msgs := waitForMessages(t, mock, 1)
	if msgs[0].Topic != "soulbios/chamber/fortress/events" {
		t.Errorf("unexpected topic %s", msgs[0].Topic)
	}

	var e events.Event
	if err := json.Unmarshal(msgs[0].Payload, &e); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if e.Name != "room.entered" {
		t.Errorf("expected room.entered, got %s", e.Name)
	}
}

func TestPublisherDefaultsTopicForSystemEvents(t *testing.T) {
	mock := &mockPublisher{connected: true}
	pub := NewPublisher(mock)
	if err := pub.Start(); err != nil {
		t.Fatalf("failed to start publisher: %v", err)
	}
	defer pub.Stop()

	events.Emit("info", "system.startup", "", nil)

	msgs := waitForMessages(t, mock, 1)
	if msgs[0].Topic != "soulbios/chamber/engine/events" {
		t.Errorf("unexpected topic %s", msgs[0].Topic)
	}
}

func TestPublisherDropsWhileDisconnected(t *testing.T) {
	mock := &mockPublisher{connected: false}
	pub := NewPublisher(mock)
	if err := pub.Start(); err != nil {
		t.Fatalf("failed to start publisher: %v", err)
	}

	events.Emit("info", "room.entered", "fortress", nil)

	// Give the forwarding goroutine a moment, then stop and check nothing
	// was published.
	time.Sleep(50 * time.Millisecond)
	pub.Stop()

	if n := len(mock.messages()); n != 0 {
		t.Errorf("expected no publishes while disconnected, got %d", n)
	}
}

func TestPublisherStartTwice(t *testing.T) {
	mock := &mockPublisher{connected: true}
	pub := NewPublisher(mock)
	if err := pub.Start(); err != nil {
		t.Fatalf("failed to start publisher: %v", err)
	}
	defer pub.Stop()

	if err := pub.Start(); err == nil {
		t.Error("expected second Start to fail")
	}
}
