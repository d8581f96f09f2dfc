// Package cache stores finished trip plans keyed on the query, so
// repeated identical requests skip the whole source fan-out. Plans are
// kept as raw JSON; callers serve the bytes directly.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/awidjaja/tripplanner/internal/models"
)

type Cache interface {
	Get(ctx context.Context, q models.TripQuery) ([]byte, bool)
	Set(ctx context.Context, q models.TripQuery, plan []byte) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host: "localhost",
		Port: "6379",
		TTL:  10 * time.Minute,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, q models.TripQuery) ([]byte, bool) {
	data, err := c.client.Get(ctx, generateKey(q)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, q models.TripQuery, plan []byte) error {
	return c.client.Set(ctx, generateKey(q), plan, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache { return &NoOpCache{} }

func (c *NoOpCache) Get(ctx context.Context, q models.TripQuery) ([]byte, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, q models.TripQuery, plan []byte) error {
	return nil
}

func (c *NoOpCache) Close() error { return nil }

func generateKey(q models.TripQuery) string {
	data, _ := json.Marshal(q)
	hash := sha256.Sum256(data)
	return "tripplan:" + hex.EncodeToString(hash[:])
}
