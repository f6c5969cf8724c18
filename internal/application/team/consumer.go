package team

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskfabric/backend/internal/domain/project"
	"github.com/taskfabric/backend/internal/domain/shared"
	"github.com/taskfabric/backend/internal/domain/task"
	"github.com/taskfabric/backend/internal/infrastructure/cache"
)

// CacheInvalidator keeps team views fresh when other services change data
// the views were computed from. Delivery is at-least-once; invalidation is
// naturally idempotent, removing an absent key is a no-op.
type CacheInvalidator struct {
	cache  cache.Store
	logger *zap.Logger
}

var _ shared.EventHandler = (*CacheInvalidator)(nil)

// NewCacheInvalidator creates a cache invalidation handler for team views
func NewCacheInvalidator(cacheStore cache.Store, logger *zap.Logger) *CacheInvalidator {
	return &CacheInvalidator{cache: cacheStore, logger: logger}
}

// Topics returns the cross-service topics that can stale team views
func (c *CacheInvalidator) Topics() []string {
	return []string{
		project.TopicProjectTeamAdded,
		task.TopicTaskCreated,
	}
}

// Handle invalidates the team view keys affected by the event
func (c *CacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *project.ProjectTeamAddedEvent:
		return c.remove(ctx,
			cache.TeamKey(e.TeamID),
			cache.TeamsAllKey(),
		)
	case *task.TaskCreatedEvent:
		if e.AssigneeID == nil {
			return nil
		}
		return c.remove(ctx, cache.TeamsByUserKey(*e.AssigneeID))
	default:
		c.logger.Warn("ignoring event with unexpected type",
			zap.String("topic", event.Topic()),
			zap.String("event_id", event.EventID().String()))
		return nil
	}
}

func (c *CacheInvalidator) remove(ctx context.Context, keys ...string) error {
	if err := c.cache.Remove(ctx, keys...); err != nil {
		c.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
		return err
	}
	c.logger.Debug("invalidated team view keys", zap.Strings("keys", keys))
	return nil
}
