package fedcore

import (
	"errors"
	"net/http"

	"github.com/driusan/fedcore/fcerrors"
)

// ActorOptions bundles an actor endpoint's collaborators. Dispatch is
// required for a non-404 response; Authorize and the three fallbacks are
// optional -- a nil fallback is only safe to omit if the corresponding
// precedence step can never be reached in the caller's configuration, so
// in practice all three should be set.
type ActorOptions struct {
	Dispatch        ActorDispatcher
	Authorize       ActorAuthorizer
	OnNotFound      Fallback
	OnNotAcceptable Fallback
	OnUnauthorized  Fallback
}

// RespondActor resolves handle to an actor and writes it out, negotiated
// and authorized. The precedence among the three failure modes -- no
// dispatcher or unknown handle, then content negotiation, then
// authorization -- is load-bearing and must not be reordered: an
// unauthorized request to a handle that doesn't exist should 404, not
// 401, and a request that doesn't accept JSON-LD should get a fallback
// before authorization is even checked.
func RespondActor(ctx *Context, w http.ResponseWriter, handle string, opts ActorOptions) {
	if opts.Dispatch == nil {
		ctx.Logger.Warn().Err(fcerrors.ErrNotConfigured).Msg("actor responder: no dispatcher configured")
		opts.OnNotFound(ctx, w)
		return
	}
	actor, err := opts.Dispatch(ctx, handle)
	if err != nil && !errors.Is(err, fcerrors.ErrNotFound) {
		ctx.Logger.Error().Err(err).Str("handle", handle).Msg("actor responder: dispatcher failed")
	}
	if err != nil || actor == nil {
		opts.OnNotFound(ctx, w)
		return
	}
	if !AcceptsJSONLD(ctx.Request) {
		opts.OnNotAcceptable(ctx, w)
		return
	}
	if opts.Authorize != nil {
		key, owner, err := ctx.Key()
		if err != nil {
			opts.OnUnauthorized(ctx, w)
			return
		}
		ok, err := opts.Authorize(ctx, key, owner, handle)
		if err != nil || !ok {
			opts.OnUnauthorized(ctx, w)
			return
		}
	}
	w.Header().Set("Vary", "Accept")
	if err := RespondWithObject(ctx, w, actor); err != nil {
		ctx.Logger.Error().Err(err).Str("handle", handle).Msg("actor responder: failed to serialize actor")
	}
}
