package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/soulbios/chamber-engine/internal/events"
)

// TopicPrefix is the root of the engine's event topics. The full topic is
// <prefix>/<chamber_id>/events; events with no chamber land under "engine".
const TopicPrefix = "soulbios/chamber"

// MessagePublisher is the transport the Publisher writes to.
// Satisfied by *Client; tests use a mock.
type MessagePublisher interface {
	Publish(topic string, payload []byte) error
	IsConnected() bool
}

// Publisher drains the events broadcaster and forwards each event to the
// broker. Delivery is best effort: events are dropped while disconnected and
// publish errors never propagate back into the engine.
type Publisher struct {
	client MessagePublisher
	sub    events.Subscriber

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
}

// NewPublisher creates a publisher over the given transport.
func NewPublisher(client MessagePublisher) *Publisher {
	return &Publisher{
		client: client,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start subscribes to the event stream and begins forwarding in a goroutine.
// Calling Start twice is an error.
func (p *Publisher) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("publisher already started")
	}
	p.started = true
	p.sub = events.Subscribe()

	go p.run()
	return nil
}

func (p *Publisher) run() {
	defer close(p.doneCh)
	for {
		select {
		case <-p.stopCh:
			return
		case e, ok := <-p.sub:
			if !ok {
				return
			}
			p.forward(e)
		}
	}
}

func (p *Publisher) forward(e events.Event) {
	if !p.client.IsConnected() {
		return
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return
	}

	chamber := e.ChamberID
	if chamber == "" {
		chamber = "engine"
	}
	topic := fmt.Sprintf("%s/%s/events", TopicPrefix, chamber)

	// Errors are deliberately dropped; the broker is a fire-and-forget sink.
	_ = p.client.Publish(topic, payload)
}

// Stop unsubscribes and waits for the forwarding goroutine to exit.
func (p *Publisher) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	sub := p.sub
	p.mu.Unlock()

	close(p.stopCh)
	<-p.doneCh
	events.Unsubscribe(sub)
}
