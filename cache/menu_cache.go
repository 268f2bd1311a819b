package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"littlelemon/entity"
	"littlelemon/logger"
	"littlelemon/pkg/apperr"
	"littlelemon/repository"

	"github.com/redis/go-redis/v9"
)

const (
	notFoundMarker = "notfound"
	notFoundTTL    = time.Minute
)

// CachedMenuRepository is a read-through cache in front of a
// MenuItemRepository. Single items are cached by id; listings always hit the
// database. Writes go to the database first and then drop the cached item.
type CachedMenuRepository struct {
	real  repository.MenuItemRepository
	redis *redis.Client
	ttl   time.Duration
	log   *slog.Logger
}

var _ repository.MenuItemRepository = (*CachedMenuRepository)(nil)

func NewCachedMenuRepository(real repository.MenuItemRepository, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *CachedMenuRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedMenuRepository{real: real, redis: rdb, ttl: ttl, log: log}
}

func menuItemKey(id uint) string {
	return fmt.Sprintf("menuitem:%d", id)
}

func (c *CachedMenuRepository) FindByID(ctx context.Context, id uint) (*entity.MenuItem, error) {
	key := menuItemKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, fmt.Errorf("%w: menu item %d", apperr.ErrNotFound, id)
		}
		var item entity.MenuItem
		if err := json.Unmarshal(data, &item); err != nil {
			c.log.Warn("bad cached menu item, reading database", "key", key, logger.Err(err))
			break
		}
		return &item, nil
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("redis get failed, reading database", "key", key, logger.Err(err))
	}

	item, err := c.real.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundMarker, notFoundTTL).Err(); setErr != nil {
				c.log.Warn("redis set failed", "key", key, logger.Err(setErr))
			}
		}
		return nil, err
	}

	data, err = json.Marshal(item)
	if err != nil {
		c.log.Warn("marshal menu item", "id", id, logger.Err(err))
		return item, nil
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("redis set failed", "key", key, logger.Err(err))
	}
	return item, nil
}

func (c *CachedMenuRepository) List(ctx context.Context, q repository.MenuQuery) ([]entity.MenuItem, int64, error) {
	return c.real.List(ctx, q)
}

func (c *CachedMenuRepository) Create(ctx context.Context, item *entity.MenuItem) error {
	if err := c.real.Create(ctx, item); err != nil {
		return err
	}
	// a notfound marker may be sitting on the new id
	c.invalidate(ctx, item.ID)
	return nil
}

func (c *CachedMenuRepository) Update(ctx context.Context, item *entity.MenuItem) error {
	err := c.real.Update(ctx, item)
	c.invalidate(ctx, item.ID)
	return err
}

func (c *CachedMenuRepository) Delete(ctx context.Context, id uint) error {
	err := c.real.Delete(ctx, id)
	c.invalidate(ctx, id)
	return err
}

func (c *CachedMenuRepository) invalidate(ctx context.Context, id uint) {
	key := menuItemKey(id)
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		c.log.Warn("redis del failed", "key", key, logger.Err(err))
	}
}
