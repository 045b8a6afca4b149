package fedcore

import (
	"bytes"
	"crypto"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/driusan/fedcore/fcerrors"
	"github.com/driusan/fedcore/kvstore"
	"github.com/driusan/fedcore/vocab"
)

// defaultIdempotencyTTL is how long a processed activity's id is
// remembered before it can be replayed and processed again.
const defaultIdempotencyTTL = 24 * time.Hour

// InboxOptions bundles one inbox endpoint's collaborators. Handle is nil
// for the shared inbox. KeyPrefix namespaces the idempotency store
// between a per-actor inbox and the shared one, and between deployments
// sharing a store.
type InboxOptions struct {
	Handle            *string
	ActorDispatch     ActorDispatcher
	Store             kvstore.Store
	KeyPrefix         string
	IdempotencyTTL    time.Duration
	Listeners         map[vocab.ClassName]InboxListener
	ErrorHandler      ErrorHandler
	OnNotFound        Fallback
	SignatureVerifier SignatureVerifier
	SignatureWindow   time.Duration
	ProofVerifier     ProofVerifier
	KeyOwnership      KeyOwnershipPredicate
}

// RespondInbox runs an inbox POST through verification, parsing,
// deduplication, and dispatch. Each stage terminates the request on
// failure with the appropriate status and body.
func RespondInbox(ctx *Context, w http.ResponseWriter, opts InboxOptions) {
	// Stage 1: configuration sanity.
	if opts.ActorDispatch == nil {
		ctx.Logger.Warn().Err(fcerrors.ErrNotConfigured).Msg("inbox: no actor dispatcher configured")
		opts.OnNotFound(ctx, w)
		return
	}
	if opts.Handle != nil {
		actor, err := opts.ActorDispatch(ctx, *opts.Handle)
		if err != nil && !errors.Is(err, fcerrors.ErrNotFound) {
			ctx.Logger.Error().Err(err).Str("handle", *opts.Handle).Msg("inbox: actor dispatcher failed")
		}
		if err != nil || actor == nil {
			ctx.Logger.Warn().Str("handle", *opts.Handle).Msg("inbox: unknown actor")
			opts.OnNotFound(ctx, w)
			return
		}
	}

	// The pipeline needs the raw body twice: once to parse/verify, and
	// again inside SignatureVerifier for the HTTP signature's Digest
	// header. Capture it in a re-readable form up front so stage 4 can
	// still read ctx.Request.Body.
	rawBody, readErr := io.ReadAll(ctx.Request.Body)
	ctx.Request.Body.Close()
	ctx.Request.Body = io.NopCloser(bytes.NewReader(rawBody))

	// Stage 2: body parse.
	if readErr != nil || !json.Valid(rawBody) {
		var err error = readErr
		if err == nil {
			err = fmt.Errorf("inbox: request body is not valid JSON")
		}
		reportError(ctx, opts.ErrorHandler, err)
		writePlain(w, http.StatusBadRequest, "Invalid JSON.")
		return
	}

	class, peekErr := vocab.PeekType(rawBody)

	// Stage 3: embedded-proof path.
	var activity vocab.Activity
	var viaProof bool
	if opts.ProofVerifier != nil && peekErr == nil {
		proved, err := callProofVerifier(opts.ProofVerifier, ctx, class, rawBody)
		if err != nil {
			reportError(ctx, opts.ErrorHandler, err)
			writePlain(w, http.StatusBadRequest, "Invalid activity.")
			return
		}
		if proved != nil {
			activity = proved
			viaProof = true
		}
	}

	// Stage 4: HTTP-signature fallback.
	var signingKey crypto.PublicKey
	if activity == nil {
		if opts.SignatureVerifier == nil {
			ctx.Logger.Warn().Err(fcerrors.ErrNotConfigured).Msg("inbox: no signature verifier configured")
			writePlain(w, http.StatusUnauthorized, "Failed to verify the request signature.")
			return
		}
		key, err := opts.SignatureVerifier(ctx.Request, opts.SignatureWindow)
		if err != nil || key == nil {
			writePlain(w, http.StatusUnauthorized, "Failed to verify the request signature.")
			return
		}
		signingKey = key

		decoded, err := vocab.Decode(rawBody)
		if err != nil {
			reportError(ctx, opts.ErrorHandler, err)
			writePlain(w, http.StatusBadRequest, "Invalid activity.")
			return
		}
		activity = decoded
	}

	// Stage 5: idempotency check.
	var idKey kvstore.Key
	hasID := false
	if id := activity.GetID(); id != nil {
		hasID = true
		idKey = kvstore.Key{opts.KeyPrefix, id.String()}
		if opts.Store != nil {
			seen, err := opts.Store.Get(ctx.Ctx, idKey)
			if err != nil {
				reportError(ctx, opts.ErrorHandler, err)
			} else if seen {
				writePlain(w, http.StatusAccepted, fmt.Sprintf("Activity %s has already been processed.", id.String()))
				return
			}
		}
	}

	// Stage 6: actor presence.
	actorID := activity.GetActorID()
	if actorID == nil {
		writePlain(w, http.StatusBadRequest, "Missing actor.")
		return
	}

	// Stage 7: key-actor binding. Activities that arrived via embedded
	// proof skip this -- the proof already binds signer to actor.
	if !viaProof {
		if opts.KeyOwnership == nil {
			ctx.Logger.Warn().Err(fcerrors.ErrNotConfigured).Msg("inbox: no key ownership predicate configured")
			writePlain(w, http.StatusUnauthorized, "The signer and the actor do not match.")
			return
		}
		ok, err := opts.KeyOwnership(activity, signingKey, ctx)
		if err != nil || !ok {
			writePlain(w, http.StatusUnauthorized, "The signer and the actor do not match.")
			return
		}
	}

	// Stage 8: listener resolution.
	listener, ok := resolveListener(opts.Listeners, activity)
	if !ok {
		ctx.Logger.Info().Str("type", string(activity.TypeName())).Msg("inbox: unsupported activity type, accepting without dispatch")
		w.WriteHeader(http.StatusAccepted)
		return
	}

	// Stage 9: dispatch.
	if err := runListener(listener, ctx, activity); err != nil {
		reportError(ctx, opts.ErrorHandler, err)
		writePlain(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	// Stage 10: commit. Only on listener success, so an abandoned or
	// failed request never leaves a commit behind.
	if hasID && opts.Store != nil {
		ttl := opts.IdempotencyTTL
		if ttl <= 0 {
			ttl = defaultIdempotencyTTL
		}
		if err := opts.Store.Set(ctx.Ctx, idKey, true, ttl); err != nil {
			ctx.Logger.Error().Err(err).Str("key", idKey.String()).Msg("inbox: failed to record idempotency key")
		}
	}
	ctx.Logger.Info().Str("type", string(activity.TypeName())).Str("actor", actorID.String()).Msg("inbox: dispatched")
	w.WriteHeader(http.StatusAccepted)
}

// resolveListener walks activity's ancestor chain, nearest first, for the
// first registered listener -- a tagged-variant dispatch rather than a
// prototype-chain walk, so a listener registered against "Activity" also
// catches "Follow", "Undo", and so on.
func resolveListener(listeners map[vocab.ClassName]InboxListener, activity vocab.Activity) (InboxListener, bool) {
	if listeners == nil {
		return nil, false
	}
	if l, ok := listeners[activity.TypeName()]; ok {
		return l, true
	}
	for _, ancestor := range activity.Ancestors() {
		if l, ok := listeners[ancestor]; ok {
			return l, true
		}
	}
	return nil, false
}

// runListener recovers a listener panic into an error so dispatch failure
// is handled uniformly whether the listener returns an error or panics.
func runListener(listener InboxListener, ctx *Context, activity vocab.Activity) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("inbox: listener panicked: %v", r)
		}
	}()
	return listener(ctx, activity)
}

// callProofVerifier is runListener's analogue for the embedded-proof
// stage: the proof verifier is an external collaborator and a panic in it
// must not crash the pipeline.
func callProofVerifier(verify ProofVerifier, ctx *Context, class vocab.ClassName, raw []byte) (activity vocab.Activity, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("inbox: proof verifier panicked: %v", r)
		}
	}()
	return verify(ctx, class, raw)
}

// reportError notifies the configured error handler, best-effort: a
// panicking handler must not be allowed to crash the pipeline or mask
// the original error.
func reportError(ctx *Context, handler ErrorHandler, err error) {
	if handler == nil {
		return
	}
	defer func() { recover() }()
	handler(ctx, err)
}

func writePlain(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}
