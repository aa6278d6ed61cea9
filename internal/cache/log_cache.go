package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"email-assistant/internal/model"
)

// LogCache keeps a short-lived copy of a user's email log listing in
// Redis. A dirty marker set while a new draft is in flight keeps a
// concurrent read from repopulating the cache with a stale listing.
type LogCache struct {
	client         *redisv9.Client
	logTTL         time.Duration
	dirtyMarkerTTL time.Duration
}

func NewLogCache(client *redisv9.Client, logTTL, dirtyMarkerTTL time.Duration) *LogCache {
	if logTTL <= 0 {
		logTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &LogCache{
		client:         client,
		logTTL:         logTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *LogCache) GetLogs(ctx context.Context, userID uint) ([]model.EmailLog, bool, error) {
	key := c.logKey(userID)
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get logs failed: %w", err)
	}

	var logs []model.EmailLog
	if err := json.Unmarshal([]byte(raw), &logs); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached logs failed: %w", err)
	}
	return logs, true, nil
}

func (c *LogCache) SetLogs(ctx context.Context, userID uint, logs []model.EmailLog) error {
	key := c.logKey(userID)
	payload, err := json.Marshal(logs)
	if err != nil {
		return fmt.Errorf("marshal log cache failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.logTTL).Err(); err != nil {
		return fmt.Errorf("redis set logs failed: %w", err)
	}
	return nil
}

func (c *LogCache) DeleteLogs(ctx context.Context, userID uint) error {
	key := c.logKey(userID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete logs failed: %w", err)
	}
	return nil
}

func (c *LogCache) MarkDirty(ctx context.Context, userID uint) error {
	key := c.dirtyKey(userID)
	if err := c.client.Set(ctx, key, "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	return nil
}

func (c *LogCache) IsDirty(ctx context.Context, userID uint) (bool, error) {
	key := c.dirtyKey(userID)
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *LogCache) logKey(userID uint) string {
	return fmt.Sprintf("email:logs:%d", userID)
}

func (c *LogCache) dirtyKey(userID uint) string {
	return fmt.Sprintf("email:logs:dirty:%d", userID)
}
