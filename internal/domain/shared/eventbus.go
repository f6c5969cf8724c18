package shared

import "context"

// EventHandler handles domain events delivered by a consumer.
// Delivery is at-least-once: a handler must tolerate redelivery of the
// same event (idempotent side effects or dedup by event identity).
type EventHandler interface {
	// Handle processes a domain event. Returning an error causes the
	// message to be negatively acknowledged and redelivered.
	Handle(ctx context.Context, event DomainEvent) error
	// Topics returns the event topics this handler is interested in
	Topics() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	// Publish publishes one or more domain events. Publishing happens
	// after the mutation committed; failures are advisory to the caller.
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventConsumer delivers events to registered handlers
type EventConsumer interface {
	// Subscribe registers a handler for specific topics.
	// If no topics are provided, the handler's own Topics() are used.
	Subscribe(handler EventHandler, topics ...string)
	// Start starts the receive loop(s)
	Start(ctx context.Context) error
	// Stop gracefully stops the receive loop(s)
	Stop(ctx context.Context) error
}

// EventBus combines publisher and consumer capabilities
type EventBus interface {
	EventPublisher
	EventConsumer
}
