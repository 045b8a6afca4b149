package fedcore

import (
	"context"
	"crypto"
	"net/http"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/driusan/fedcore/vocab"
)

// signatureResolver is bound once per Context by Server.NewContext; it runs
// the configured SignatureVerifier and then resolves the verified key's
// owner. Kept private so the memoization in Context.Key is the only way to
// observe it: a request-scoped computation, not global state.
type signatureResolver func(ctx *Context) (crypto.PublicKey, vocab.Object, error)

// Context is the per-request value every responder and the inbox pipeline
// receive. It borrows a Go context.Context for cancellation/deadlines,
// carries the absolute request URL (used to build collection pagination
// links), the document loader for JSON-LD compaction, a request-scoped
// logger, and opaque caller data threaded through every callback.
//
// The verified HTTP-signature key and its owning actor are resolved lazily
// and at most once per request via Key, regardless of how many callbacks
// ask for them.
type Context struct {
	Ctx     context.Context
	Request *http.Request
	URL     *url.URL
	Loader  DocumentLoader
	Logger  zerolog.Logger
	Data    interface{}

	resolve signatureResolver

	keyOnce  sync.Once
	key      crypto.PublicKey
	keyOwner vocab.Object
	keyErr   error
}

// Key returns the public key that signed the current request and the actor
// that owns it. Both are nil, with a nil error, for an unsigned request or
// when no SignatureVerifier is configured. The resolver Server.NewContext
// binds never returns an error: a signature that fails verification also
// yields a nil key and owner, and an owner lookup that fails yields the key
// with a nil owner. A non-nil error is passed through only from a resolver
// that returns one.
// The underlying verification runs at most once per request no matter how
// many callbacks call Key.
func (c *Context) Key() (crypto.PublicKey, vocab.Object, error) {
	c.keyOnce.Do(func() {
		if c.resolve == nil {
			return
		}
		c.key, c.keyOwner, c.keyErr = c.resolve(c)
	})
	return c.key, c.keyOwner, c.keyErr
}
