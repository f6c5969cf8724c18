package event

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// OutboxProcessorConfig configures the outbox relay
type OutboxProcessorConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// RetentionPeriod controls how long sent entries are kept before cleanup
	RetentionPeriod time.Duration
}

// DefaultOutboxProcessorConfig returns the default relay configuration
func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		PollInterval:    2 * time.Second,
		BatchSize:       100,
		RetentionPeriod: 24 * time.Hour,
	}
}

// Relay is the minimal publish surface the processor needs
type Relay interface {
	PublishRaw(ctx context.Context, topic string, eventID string, payload []byte) error
}

// OutboxProcessor relays committed-but-unsent events from the outbox table
// to the event bus. It polls for pending and retryable entries and marks
// each according to the relay outcome.
type OutboxProcessor struct {
	repo   shared.OutboxRepository
	relay  Relay
	config OutboxProcessorConfig
	logger *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOutboxProcessor creates a new outbox processor
func NewOutboxProcessor(repo shared.OutboxRepository, relay Relay, config OutboxProcessorConfig, logger *zap.Logger) *OutboxProcessor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultOutboxProcessorConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultOutboxProcessorConfig().BatchSize
	}
	return &OutboxProcessor{
		repo:   repo,
		relay:  relay,
		config: config,
		logger: logger,
	}
}

// Start begins the relay loop
func (p *OutboxProcessor) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.run(ctx)
	p.logger.Info("outbox processor started",
		zap.Duration("poll_interval", p.config.PollInterval),
		zap.Int("batch_size", p.config.BatchSize),
	)
}

// Stop stops the relay loop and waits for it to finish
func (p *OutboxProcessor) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info("outbox processor stopped")
}

func (p *OutboxProcessor) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	cleanup := time.NewTicker(time.Hour)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.processBatch(ctx)
		case <-cleanup.C:
			p.cleanupSent(ctx)
		}
	}
}

// ProcessOnce runs a single relay pass. Exposed for tests and for draining
// the outbox during shutdown.
func (p *OutboxProcessor) ProcessOnce(ctx context.Context) {
	p.processBatch(ctx)
}

func (p *OutboxProcessor) processBatch(ctx context.Context) {
	pending, err := p.repo.FindPending(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.Error("failed to load pending outbox entries", zap.Error(err))
		return
	}

	retryable, err := p.repo.FindRetryable(ctx, time.Now().UTC(), p.config.BatchSize)
	if err != nil {
		p.logger.Error("failed to load retryable outbox entries", zap.Error(err))
		return
	}

	for _, entry := range append(pending, retryable...) {
		p.relayEntry(ctx, entry)
	}
}

func (p *OutboxProcessor) relayEntry(ctx context.Context, entry *shared.OutboxEntry) {
	if err := entry.MarkProcessing(); err != nil {
		return
	}
	if err := p.repo.Update(ctx, entry); err != nil {
		p.logger.Error("failed to claim outbox entry",
			zap.String("entry_id", entry.ID.String()),
			zap.Error(err))
		return
	}

	if err := p.relay.PublishRaw(ctx, entry.Topic, entry.EventID.String(), entry.Payload); err != nil {
		entry.MarkFailed(err.Error())
		if entry.IsDead() {
			p.logger.Error("outbox entry exhausted retries",
				zap.String("entry_id", entry.ID.String()),
				zap.String("topic", entry.Topic),
				zap.String("last_error", entry.LastError))
		} else {
			p.logger.Warn("outbox relay failed, will retry",
				zap.String("entry_id", entry.ID.String()),
				zap.String("topic", entry.Topic),
				zap.Int("retry_count", entry.RetryCount),
				zap.Error(err))
		}
	} else {
		entry.MarkSent()
	}

	if err := p.repo.Update(ctx, entry); err != nil {
		p.logger.Error("failed to update outbox entry",
			zap.String("entry_id", entry.ID.String()),
			zap.Error(err))
	}
}

func (p *OutboxProcessor) cleanupSent(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-p.config.RetentionPeriod)
	deleted, err := p.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("outbox cleanup failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		p.logger.Debug("outbox cleanup removed sent entries", zap.Int64("deleted", deleted))
	}
}
