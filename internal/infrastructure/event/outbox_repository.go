package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// OutboxModel is the persistence model for outbox entries
type OutboxModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Topic       string    `gorm:"size:128;not null"`
	AggregateID uuid.UUID `gorm:"type:uuid;not null;index"`
	Payload     []byte    `gorm:"type:bytes;not null"`
	Status      string    `gorm:"size:32;not null;index"`
	RetryCount  int       `gorm:"not null;default:0"`
	MaxRetries  int       `gorm:"not null"`
	LastError   string    `gorm:"type:text"`
	NextRetryAt *time.Time
	ProcessedAt *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName specifies the table name for OutboxModel
func (OutboxModel) TableName() string {
	return "outbox_entries"
}

// GormOutboxRepository implements shared.OutboxRepository using GORM
type GormOutboxRepository struct {
	db *gorm.DB
}

var _ shared.OutboxRepository = (*GormOutboxRepository)(nil)

// NewGormOutboxRepository creates a new GORM-backed outbox repository
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// Save persists one or more outbox entries
func (r *GormOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	models := make([]OutboxModel, len(entries))
	for i, entry := range entries {
		models[i] = toOutboxModel(entry)
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return fmt.Errorf("save outbox entries: %w", err)
	}
	return nil
}

// FindPending retrieves pending entries up to the specified limit
func (r *GormOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	var models []OutboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(shared.OutboxStatusPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("find pending outbox entries: %w", err)
	}
	return toOutboxEntries(models), nil
}

// FindRetryable retrieves failed entries that are due for retry
func (r *GormOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	var models []OutboxModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at <= ?", string(shared.OutboxStatusFailed), before).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("find retryable outbox entries: %w", err)
	}
	return toOutboxEntries(models), nil
}

// Update updates an existing outbox entry
func (r *GormOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	model := toOutboxModel(entry)
	result := r.db.WithContext(ctx).Save(&model)
	if result.Error != nil {
		return fmt.Errorf("update outbox entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteOlderThan deletes sent entries older than the specified time
func (r *GormOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND processed_at < ?", string(shared.OutboxStatusSent), before).
		Delete(&OutboxModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete sent outbox entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func toOutboxModel(entry *shared.OutboxEntry) OutboxModel {
	return OutboxModel{
		ID:          entry.ID,
		EventID:     entry.EventID,
		Topic:       entry.Topic,
		AggregateID: entry.AggregateID,
		Payload:     entry.Payload,
		Status:      string(entry.Status),
		RetryCount:  entry.RetryCount,
		MaxRetries:  entry.MaxRetries,
		LastError:   entry.LastError,
		NextRetryAt: entry.NextRetryAt,
		ProcessedAt: entry.ProcessedAt,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}
}

func toOutboxEntries(models []OutboxModel) []*shared.OutboxEntry {
	entries := make([]*shared.OutboxEntry, len(models))
	for i, m := range models {
		entries[i] = &shared.OutboxEntry{
			ID:          m.ID,
			EventID:     m.EventID,
			Topic:       m.Topic,
			AggregateID: m.AggregateID,
			Payload:     m.Payload,
			Status:      shared.OutboxStatus(m.Status),
			RetryCount:  m.RetryCount,
			MaxRetries:  m.MaxRetries,
			LastError:   m.LastError,
			NextRetryAt: m.NextRetryAt,
			ProcessedAt: m.ProcessedAt,
			CreatedAt:   m.CreatedAt,
			UpdatedAt:   m.UpdatedAt,
		}
	}
	return entries
}
