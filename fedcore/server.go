package fedcore

import (
	"crypto"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/driusan/fedcore/vocab"
)

// KeyOwnerResolver resolves a verified signing key to the actor that owns
// it, for Context.Key's memoized lookup. A dispatcher backed by an actor
// store typically implements this by looking up the actor whose publicKey
// matches key.
type KeyOwnerResolver func(ctx *Context, key crypto.PublicKey) (vocab.Object, error)

// Server is an immutable registration record, constructed once at server
// build and then borrowed by each request. It holds the collaborators
// every Context needs to resolve its own per-request signature state,
// plus the defaults NewContext stamps onto each request.
//
// Server itself does not route HTTP requests; the demo command wires its
// handlers directly to RespondActor, RespondObject, RespondCollection and
// RespondInbox, passing the Context this produces.
type Server struct {
	Logger            zerolog.Logger
	Loader            DocumentLoader
	SignatureVerifier SignatureVerifier
	SignatureWindow   time.Duration
	KeyOwnerResolver  KeyOwnerResolver
}

// NewContext builds the per-request Context for r, binding its lazy
// signature resolution to this Server's SignatureVerifier and
// KeyOwnerResolver. data is threaded through untouched as Context.Data.
func (s *Server) NewContext(r *http.Request, data interface{}) *Context {
	loader := s.Loader
	if loader == nil {
		loader = JSONDocumentLoader{}
	}

	ctx := &Context{
		Ctx:     r.Context(),
		Request: r,
		URL:     absoluteURL(r),
		Loader:  loader,
		Logger:  s.Logger,
		Data:    data,
	}
	ctx.resolve = func(c *Context) (crypto.PublicKey, vocab.Object, error) {
		if s.SignatureVerifier == nil {
			return nil, nil, nil
		}
		key, err := s.SignatureVerifier(c.Request, s.SignatureWindow)
		if err != nil || key == nil {
			return nil, nil, nil
		}
		if s.KeyOwnerResolver == nil {
			return key, nil, nil
		}
		owner, err := s.KeyOwnerResolver(c, key)
		if err != nil {
			return key, nil, nil
		}
		return key, owner, nil
	}
	return ctx
}

// absoluteURL reconstructs the absolute URL a request was made to,
// preferring the Go standard library's TLS hint over X-Forwarded-Proto
// since the demo command sits behind no reverse proxy by default.
func absoluteURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Scheme = "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		u.Scheme = proto
	}
	if r.TLS != nil {
		u.Scheme = "https"
	}
	u.Host = r.Host
	return &u
}
