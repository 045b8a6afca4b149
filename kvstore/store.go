package kvstore

import (
	"context"
	"strings"
	"time"
)

// Key is the key-value store's key shape: an array of strings. The inbox
// pipeline builds one from a configured prefix plus an activity's id.
type Key []string

// String joins the key parts with a separator that can't appear in an IRI
// prefix or an activity id, so two different keys never collide.
func (k Key) String() string {
	return strings.Join(k, "\x1f")
}

// Store is the idempotency store the inbox pipeline reads before dispatch
// and writes after a successful listener return. Implementations must
// provide read-after-write for the same key; fedcore itself takes no
// lock around it.
type Store interface {
	Get(ctx context.Context, key Key) (bool, error)
	Set(ctx context.Context, key Key, value bool, ttl time.Duration) error
}
