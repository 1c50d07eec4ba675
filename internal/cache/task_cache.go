package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	dom "taskcli/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tasks:user:"

// TaskCache caches each user's unfiltered task list in Redis.
// Filtered queries always go to the store; the dashboard list is the hot path.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

func userKey(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

// GetList returns the cached list for userID or nil on miss.
func (c *TaskCache) GetList(ctx context.Context, userID int64) ([]dom.Task, error) {
	b, err := c.rdb.Get(ctx, userKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Task
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the user's list in cache.
func (c *TaskCache) SetList(ctx context.Context, userID int64, list []dom.Task) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, userKey(userID), b, c.ttl).Err()
}

// Invalidate drops the user's cached list (called on every write).
func (c *TaskCache) Invalidate(ctx context.Context, userID int64) error {
	return c.rdb.Del(ctx, userKey(userID)).Err()
}
