package fedcore

import (
	"crypto"
	"net/http"
	"time"

	"github.com/driusan/fedcore/vocab"
)

// Fallback writes a complete response for a precedence failure (404, 406,
// 401) the caller wants full control over -- the core never invents body
// content for these itself.
type Fallback func(ctx *Context, w http.ResponseWriter)

// ActorDispatcher resolves a bare handle to the actor it names. A nil
// result (with a nil error) and a non-nil error are both treated as "no
// such actor" by the Actor Responder and the Inbox Pipeline's
// configuration-sanity check of its Handle.
type ActorDispatcher func(ctx *Context, handle string) (vocab.Object, error)

// ObjectDispatcher resolves a route-parameter map to the object it names.
type ObjectDispatcher func(ctx *Context, params map[string]string) (vocab.Object, error)

// Page is one page of a collection: the raw items before projection, plus
// the cursors the dispatcher wants to expose on either side of it.
type Page struct {
	Items      []interface{}
	PrevCursor *string
	NextCursor *string
}

// CollectionDispatcher produces a page of a handle-scoped collection. cursor
// is nil for the unpaged/first call; filter is an opaque value passed
// through from the caller (e.g. an activity-type filter) that the
// dispatcher may use for native filtering. A nil Page means "no such
// collection".
type CollectionDispatcher func(ctx *Context, handle string, cursor *string, filter string) (*Page, error)

// CursorFunc produces the first or last cursor of a handle's collection, or
// a nil string when the collection doesn't support cursoring at all.
type CursorFunc func(ctx *Context, handle string) (*string, error)

// CounterFunc produces the total item count of a handle's collection, or
// nil when the count isn't known -- a nil counter must surface as an
// omitted totalItems, never a literal null or zero.
type CounterFunc func(ctx *Context, handle string) (*int64, error)

// ActorAuthorizer decides whether the resolved signing key (both key and
// owner may be nil for an unsigned request) may access the actor named by
// handle.
type ActorAuthorizer func(ctx *Context, key crypto.PublicKey, keyOwner vocab.Object, handle string) (bool, error)

// ObjectAuthorizer is ActorAuthorizer's analogue for the Object Responder:
// the resource is named by a parameter map rather than a bare handle.
type ObjectAuthorizer func(ctx *Context, key crypto.PublicKey, keyOwner vocab.Object, params map[string]string) (bool, error)

// CollectionCallbacks bundles everything the Collection Responder needs for
// one named collection. Dispatch is required; everything else is optional
// and its absence degrades gracefully (no cursoring, no total, no auth
// check).
type CollectionCallbacks struct {
	Dispatch    CollectionDispatcher
	FirstCursor CursorFunc
	LastCursor  CursorFunc
	Counter     CounterFunc
	Authorize   ActorAuthorizer
}

// InboxListener handles one verified, deduplicated activity. A returned
// error (or a panic, which the pipeline recovers and converts to an error)
// is reported to the configured ErrorHandler and produces a 500.
type InboxListener func(ctx *Context, activity vocab.Activity) error

// ErrorHandler is notified of every error the Inbox Pipeline handles
// internally. It must not itself panic; the pipeline recovers defensively
// if it does, but the recovered value is discarded, not re-reported, to
// avoid an infinite loop.
type ErrorHandler func(ctx *Context, err error)

// SignatureVerifier authenticates an inbound request's HTTP signature,
// returning the signing key, or a non-nil error if none is present or
// valid. httpsig.Verifier.Verify implements this.
type SignatureVerifier func(r *http.Request, window time.Duration) (crypto.PublicKey, error)

// ProofVerifier attempts the embedded linked-data-signature path: given the
// class PeekType named and the raw request body, it returns a verified
// activity, or (nil, nil) when the document carries no embedded proof at
// all. A non-nil error means the embedded proof was present but invalid.
type ProofVerifier func(ctx *Context, class vocab.ClassName, raw []byte) (vocab.Activity, error)

// KeyOwnershipPredicate checks that key -- the key that signed the
// request -- belongs to the actor activity declares itself to be from.
// Skipped for activities that arrived via a verified embedded proof, since
// the proof already binds signer to actor.
type KeyOwnershipPredicate func(activity vocab.Activity, key crypto.PublicKey, ctx *Context) (bool, error)

// DocumentLoader performs JSON-LD compaction for outgoing responses. The
// default implementation (see respond.go) just marshals with encoding/json;
// a real JSON-LD document loader is an external collaborator a caller can
// swap in.
type DocumentLoader interface {
	Compact(ctx *Context, v interface{}) ([]byte, error)
}
