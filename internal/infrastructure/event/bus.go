package event

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// InMemoryEventBus implements EventBus with in-process pub/sub. Used in
// tests and single-node development; production services use JetStream.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	running  atomic.Bool
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

// Publish delivers events to all registered handlers synchronously
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.Topic()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				// One failing handler must not block the others
				b.logger.Error("handler failed to process event",
					zap.String("topic", event.Topic()),
					zap.String("event_id", event.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler for specific topics
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, topics ...string) {
	if len(topics) == 0 {
		topics = handler.Topics()
	}
	b.registry.Register(handler, topics...)
	b.logger.Debug("handler subscribed", zap.Strings("topics", topics))
}

// Start starts the event bus
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

// Stop stops the event bus
func (b *InMemoryEventBus) Stop(_ context.Context) error {
	b.running.Store(false)
	b.logger.Info("event bus stopped")
	return nil
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("topic", event.Topic()),
				zap.Any("panic", r),
			)
		}
	}()
	return handler.Handle(ctx, event)
}
