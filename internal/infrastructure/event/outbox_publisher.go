package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// OutboxPublisher implements shared.EventPublisher by writing events to the
// outbox table instead of the broker. The outbox processor relays them
// asynchronously, so a publish survives broker downtime once it is stored.
type OutboxPublisher struct {
	repo   shared.OutboxRepository
	codec  *Codec
	logger *zap.Logger
}

var _ shared.EventPublisher = (*OutboxPublisher)(nil)

// NewOutboxPublisher creates an outbox-backed event publisher
func NewOutboxPublisher(repo shared.OutboxRepository, codec *Codec, logger *zap.Logger) *OutboxPublisher {
	return &OutboxPublisher{repo: repo, codec: codec, logger: logger}
}

// Publish stores events as pending outbox entries
func (p *OutboxPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.codec.Encode(event)
		if err != nil {
			return err
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}
	if err := p.repo.Save(ctx, entries...); err != nil {
		return err
	}
	p.logger.Debug("events stored in outbox", zap.Int("count", len(entries)))
	return nil
}
