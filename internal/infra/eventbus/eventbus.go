// Package eventbus — in-memory publish/subscribe bus.
// The suggestion coordinator publishes suggestion-set replacements here; the
// SSE stream handler subscribes per connection.
//
// Design:
//   - Buffered Go channel per subscriber (buffer=100).
//   - Publish is non-blocking: drops the event silently if a buffer is full,
//     so a stalled SSE client can never back-pressure the coordinator.
//   - Subscriptions are cancellable; Cancel closes the channel.
//   - No persistence: events are fire-and-forget.
package eventbus

import "sync"

// Event is a single published message.
type Event struct {
	Topic   string
	Payload any
}

// EventBus is the interface for publishing and subscribing to topics.
type EventBus interface {
	Publish(topic string, payload any)
	Subscribe(topic string) *Subscription
}

const defaultBufferSize = 100

// Subscription is a handle to a single subscriber channel.
type Subscription struct {
	C     <-chan Event
	topic string
	ch    chan Event
	bus   *Bus

	mu     sync.Mutex
	closed bool
}

// Cancel removes the subscription from the bus and closes C.
// Safe to call more than once.
func (s *Subscription) Cancel() {
	s.bus.remove(s)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// send delivers evt unless the subscription is cancelled or its buffer is full.
func (s *Subscription) send(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- evt:
	default:
		// buffer full — drop event (fire-and-forget)
	}
}

// Bus is the in-memory implementation of EventBus.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]*Subscription
}

// New returns a new in-memory Bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[string][]*Subscription),
	}
}

// Subscribe registers a new subscriber for topic.
// The caller must either consume s.C or call s.Cancel; events published while
// the buffer is full are dropped.
func (b *Bus) Subscribe(topic string) *Subscription {
	ch := make(chan Event, defaultBufferSize)
	s := &Subscription{C: ch, ch: ch, topic: topic, bus: b}
	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], s)
	b.mu.Unlock()
	return s
}

// Publish sends an Event to all subscribers of topic.
// If a subscriber's buffer is full the event is dropped (non-blocking).
func (b *Bus) Publish(topic string, payload any) {
	evt := Event{Topic: topic, Payload: payload}
	b.mu.RLock()
	subs := make([]*Subscription, len(b.subscribers[topic]))
	copy(subs, b.subscribers[topic])
	b.mu.RUnlock()
	for _, s := range subs {
		s.send(evt)
	}
}

// remove detaches s from the topic's subscriber list.
func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subscribers[s.topic]
	for i, sub := range subs {
		if sub == s {
			b.subscribers[s.topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}
