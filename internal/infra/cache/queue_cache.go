package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueueCache кэш проекций Queue View в Redis.
//
// Проекция информационная и никогда не используется для решений о
// вместимости, поэтому допускает явное устаревание: записи живут TTL
// и пересчитываются по промаху.
type QueueCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQueueCache создает кэш с заданным допустимым устареванием
func NewQueueCache(client *redis.Client, ttl time.Duration) *QueueCache {
	return &QueueCache{client: client, ttl: ttl}
}

// Get читает закэшированную проекцию в dest.
// Возвращает false при промахе; ошибки Redis не фатальны для вызывающей
// стороны и трактуются как промах с ошибкой для логирования.
func (c *QueueCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache: unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Set сохраняет проекцию с настроенным TTL
func (c *QueueCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// NoopCache заглушка кэша для деплоя без Redis: каждый запрос
// пересчитывает проекцию заново
type NoopCache struct{}

// Get всегда возвращает промах
func (NoopCache) Get(_ context.Context, _ string, _ interface{}) (bool, error) {
	return false, nil
}

// Set ничего не сохраняет
func (NoopCache) Set(_ context.Context, _ string, _ interface{}) error {
	return nil
}
