package httpsig

import "crypto"

// KeyCache stores public keys resolved from a keyId URL so repeated
// deliveries from the same remote actor don't re-fetch and re-parse the PEM
// every time. GetKey returning an error means "not cached"; it is not a
// hard failure -- callers fall back to fetching.
type KeyCache interface {
	GetKey(keyID string) (crypto.PublicKey, error)
	SaveKey(keyID, owner string, pemBytes []byte) error
}

// NopCache is a KeyCache that caches nothing, for callers (tests, one-shot
// tools) that don't want the bookkeeping.
type NopCache struct{}

func (NopCache) GetKey(keyID string) (crypto.PublicKey, error) {
	return nil, errNotCached
}

func (NopCache) SaveKey(keyID, owner string, pemBytes []byte) error {
	return nil
}

var errNotCached = errCachedMiss{}

type errCachedMiss struct{}

func (errCachedMiss) Error() string { return "httpsig: key not cached" }
