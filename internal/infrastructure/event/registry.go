package event

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// HandlerRegistry maps event topics to their handlers
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
}

// NewHandlerRegistry creates an empty handler registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string][]shared.EventHandler),
	}
}

// Register adds a handler for the given topics
func (r *HandlerRegistry) Register(handler shared.EventHandler, topics ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, topic := range topics {
		r.handlers[topic] = append(r.handlers[topic], handler)
	}
}

// Unregister removes a handler from all topics
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for topic, handlers := range r.handlers {
		kept := handlers[:0]
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		r.handlers[topic] = kept
	}
}

// GetHandlers returns the handlers registered for a topic
func (r *HandlerRegistry) GetHandlers(topic string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[topic]
}

// Topics returns all topics with at least one registered handler
func (r *HandlerRegistry) Topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	topics := make([]string, 0, len(r.handlers))
	for topic, handlers := range r.handlers {
		if len(handlers) > 0 {
			topics = append(topics, topic)
		}
	}
	return topics
}

// EventFactory creates an empty event instance for decoding
type EventFactory func() shared.DomainEvent

// Codec decodes wire payloads back into concrete domain events by topic.
// Publishers marshal events directly; consumers need the factory to know
// which concrete type a topic's payload unmarshals into.
type Codec struct {
	mu        sync.RWMutex
	factories map[string]EventFactory
}

// NewCodec creates an empty codec
func NewCodec() *Codec {
	return &Codec{factories: make(map[string]EventFactory)}
}

// RegisterTopic registers the factory used to decode payloads for a topic
func (c *Codec) RegisterTopic(topic string, factory EventFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[topic] = factory
}

// Decode unmarshals a payload into the concrete event type for the topic
func (c *Codec) Decode(topic string, payload []byte) (shared.DomainEvent, error) {
	c.mu.RLock()
	factory, ok := c.factories[topic]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no event type registered for topic %q", topic)
	}
	event := factory()
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, fmt.Errorf("decode event for topic %q: %w", topic, err)
	}
	return event, nil
}

// Encode marshals an event to its wire payload
func (c *Codec) Encode(event shared.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event for topic %q: %w", event.Topic(), err)
	}
	return payload, nil
}
