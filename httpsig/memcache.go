package httpsig

import (
	"crypto"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryCache is a KeyCache backed by an in-process TTL cache, the same
// library kvstore.Memory uses for the inbox idempotency store. A resolved
// key expires after ttl, so a remote actor's key rotation is eventually
// picked up without an explicit invalidation path.
type MemoryCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryCache{cache: cache.New(ttl, ttl), ttl: ttl}
}

func (m *MemoryCache) GetKey(keyID string) (crypto.PublicKey, error) {
	v, found := m.cache.Get(keyID)
	if !found {
		return nil, errNotCached
	}
	key, ok := v.(crypto.PublicKey)
	if !ok {
		return nil, errNotCached
	}
	return key, nil
}

func (m *MemoryCache) SaveKey(keyID, owner string, pemBytes []byte) error {
	key, err := parsePublicKeyPEM(pemBytes)
	if err != nil {
		return err
	}
	m.cache.Set(keyID, key, m.ttl)
	return nil
}
