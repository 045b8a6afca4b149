package kvstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by a shared Redis instance, for federation
// servers that run more than one process behind the same inbox endpoints.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key Key) (bool, error) {
	val, err := r.client.Get(ctx, key.String()).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "1", nil
}

func (r *Redis) Set(ctx context.Context, key Key, value bool, ttl time.Duration) error {
	encoded := "0"
	if value {
		encoded = "1"
	}
	return r.client.Set(ctx, key.String(), encoded, ttl).Err()
}
