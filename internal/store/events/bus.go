// Package events provides the in-process publish/subscribe bus used for
// cross-store invalidation: logout resets the data stores, prediction
// mutations invalidate the dashboard stats cache, and an unrecoverable auth
// failure signals session expiry.
package events

import "sync"

// Event is a topic plus an optional payload.
type Event struct {
	Topic   string
	Payload interface{}
}

// Handler consumes a published event. Handlers run synchronously in publish
// order on the publisher's goroutine, so a handler must not publish back to
// the same bus while holding its own store lock.
type Handler func(Event)

// Bus is a minimal topic-keyed fan-out. Subscriptions are append-only for the
// life of the process, which is all the stores need.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(topic string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], h)
}

// Publish delivers the event to every handler subscribed to its topic.
func (b *Bus) Publish(topic string, payload interface{}) {
	b.mu.RLock()
	subs := b.handlers[topic]
	b.mu.RUnlock()

	ev := Event{Topic: topic, Payload: payload}
	for _, h := range subs {
		h(ev)
	}
}
