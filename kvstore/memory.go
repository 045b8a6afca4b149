package kvstore

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Memory is the default Store: an in-process TTL cache, adequate for a
// single-instance server. Cross-process deployments should use Redis
// instead, since Memory's at-most-once guarantee doesn't survive a
// restart or extend across instances.
type Memory struct {
	cache *cache.Cache
}

// NewMemory builds a Memory store. cleanupInterval controls how often the
// underlying cache sweeps expired entries; pass zero to use a sane default.
func NewMemory(cleanupInterval time.Duration) *Memory {
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	return &Memory{cache: cache.New(cache.NoExpiration, cleanupInterval)}
}

func (m *Memory) Get(ctx context.Context, key Key) (bool, error) {
	v, found := m.cache.Get(key.String())
	if !found {
		return false, nil
	}
	b, _ := v.(bool)
	return b, nil
}

func (m *Memory) Set(ctx context.Context, key Key, value bool, ttl time.Duration) error {
	m.cache.Set(key.String(), value, ttl)
	return nil
}
