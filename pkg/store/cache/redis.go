package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pitchscope/pitchscope/pkg/models"
)

// Redis is a Store backed by a Redis server, used when CACHE_URL is set.
type Redis struct {
	client *redis.Client
}

// NewRedis parses url (a redis:// connection string) and constructs a Store.
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: parsing CACHE_URL: %w", err)
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) (*models.Narrative, bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get: %w", err)
	}

	var n models.Narrative
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, false, fmt.Errorf("cache: decoding cached narrative: %w", err)
	}
	return &n, true, nil
}

// Set implements Store.
func (r *Redis) Set(ctx context.Context, key string, value *models.Narrative, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encoding narrative: %w", err)
	}
	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}

// Delete implements Store.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache: redis del: %w", err)
	}
	return nil
}

// Close implements Store.
func (r *Redis) Close() error {
	return r.client.Close()
}
