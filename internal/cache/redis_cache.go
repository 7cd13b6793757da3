package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"teaops/backend/internal/domain"
)

type RedisInsightCache struct {
	client *redis.Client
}

func NewRedisInsightCache(addr string, password string, db int) *RedisInsightCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisInsightCache{client: client}
}

func (c *RedisInsightCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisInsightCache) Close() error {
	return c.client.Close()
}

func (c *RedisInsightCache) Get(ctx context.Context, key string) (*domain.DashboardInsights, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var insights domain.DashboardInsights
	if err := json.Unmarshal([]byte(val), &insights); err != nil {
		return nil, false, err
	}
	return &insights, true, nil
}

func (c *RedisInsightCache) Set(ctx context.Context, key string, value *domain.DashboardInsights, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}
