package fedcore

import (
	"errors"
	"net/http"

	"github.com/driusan/fedcore/fcerrors"
)

// ObjectOptions is ActorOptions' analogue for arbitrary objects: the
// resource is named by a parameter map rather than a bare handle.
type ObjectOptions struct {
	Dispatch        ObjectDispatcher
	Authorize       ObjectAuthorizer
	OnNotFound      Fallback
	OnNotAcceptable Fallback
	OnUnauthorized  Fallback
}

// RespondObject is identical to RespondActor in precedence, negotiation
// and response shape, keyed by an arbitrary route-parameter map instead
// of a handle.
func RespondObject(ctx *Context, w http.ResponseWriter, params map[string]string, opts ObjectOptions) {
	if opts.Dispatch == nil {
		ctx.Logger.Warn().Err(fcerrors.ErrNotConfigured).Msg("object responder: no dispatcher configured")
		opts.OnNotFound(ctx, w)
		return
	}
	obj, err := opts.Dispatch(ctx, params)
	if err != nil && !errors.Is(err, fcerrors.ErrNotFound) {
		ctx.Logger.Error().Err(err).Msg("object responder: dispatcher failed")
	}
	if err != nil || obj == nil {
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
		ok, err := opts.Authorize(ctx, key, owner, params)
		if err != nil || !ok {
			opts.OnUnauthorized(ctx, w)
			return
		}
	}
	w.Header().Set("Vary", "Accept")
	if err := RespondWithObject(ctx, w, obj); err != nil {
		ctx.Logger.Error().Err(err).Msg("object responder: failed to serialize object")
	}
}
