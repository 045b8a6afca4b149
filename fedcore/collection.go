package fedcore

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/driusan/fedcore/fcerrors"
	"github.com/driusan/fedcore/vocab"
)

// OrderedCollection is either the degenerate inline form (items embedded
// directly, no cursoring offered) or the cursoring summary form (totals and
// first/last links, no items) returned for a cursor-less request.
type OrderedCollection struct {
	Context    vocab.JSONLDContext `json:"@context,omitempty"`
	Type       string              `json:"type"`
	TotalItems *int64              `json:"totalItems,omitempty"`
	Items      []interface{}       `json:"items,omitempty"`
	First      string              `json:"first,omitempty"`
	Last       string              `json:"last,omitempty"`
}

// OrderedCollectionPage is a specific page of a collection.
type OrderedCollectionPage struct {
	Context vocab.JSONLDContext `json:"@context,omitempty"`
	Type    string              `json:"type"`
	Items   []interface{}       `json:"items"`
	Prev    string              `json:"prev,omitempty"`
	Next    string              `json:"next,omitempty"`
	PartOf  string              `json:"partOf"`
}

// CollectionOptions bundles a collection endpoint's collaborators. Name
// identifies the collection in diagnostics (the item-projector's one-shot
// filtering warning).
type CollectionOptions struct {
	Name            string
	Callbacks       *CollectionCallbacks
	Filter          string
	FilterPredicate func(item interface{}) bool
	OnNotFound      Fallback
	OnNotAcceptable Fallback
	OnUnauthorized  Fallback
}

// RespondCollection serves either a summary (totals + navigation cursors)
// or a concrete page, built from the request's cursor query parameter,
// content-negotiated and authorized the same way RespondActor and
// RespondObject are.
func RespondCollection(ctx *Context, w http.ResponseWriter, handle string, opts CollectionOptions) {
	if opts.Callbacks == nil || opts.Callbacks.Dispatch == nil {
		ctx.Logger.Warn().Err(fcerrors.ErrNotConfigured).Str("collection", opts.Name).Msg("collection responder: no dispatcher configured")
		opts.OnNotFound(ctx, w)
		return
	}

	cursor := ctx.Request.URL.Query().Get("cursor")

	var body interface{}
	if cursor == "" {
		b, ok := respondCollectionSummary(ctx, handle, opts)
		if !ok {
			opts.OnNotFound(ctx, w)
			return
		}
		body = b
	} else {
		page, err := opts.Callbacks.Dispatch(ctx, handle, &cursor, opts.Filter)
		if err != nil && !errors.Is(err, fcerrors.ErrNotFound) {
			ctx.Logger.Error().Err(err).Str("collection", opts.Name).Msg("collection responder: dispatcher failed")
		}
		if err != nil || page == nil {
			opts.OnNotFound(ctx, w)
			return
		}
		items := projectItems(ctx.Logger, opts.Name, page.Items, opts.FilterPredicate)
		p := &OrderedCollectionPage{
			Context: vocab.JSONLDContext{vocab.ActivityStreamsContext},
			Type:    "OrderedCollectionPage",
			Items:   items,
			PartOf:  withoutCursor(ctx.URL),
		}
		if page.PrevCursor != nil {
			p.Prev = withCursor(ctx.URL, *page.PrevCursor)
		}
		if page.NextCursor != nil {
			p.Next = withCursor(ctx.URL, *page.NextCursor)
		}
		body = p
	}

	if !AcceptsJSONLD(ctx.Request) {
		opts.OnNotAcceptable(ctx, w)
		return
	}
	if opts.Callbacks.Authorize != nil {
		key, owner, err := ctx.Key()
		if err != nil {
			opts.OnUnauthorized(ctx, w)
			return
		}
		ok, err := opts.Callbacks.Authorize(ctx, key, owner, handle)
		if err != nil || !ok {
			opts.OnUnauthorized(ctx, w)
			return
		}
	}

	w.Header().Set("Vary", "Accept")
	if err := RespondWithObject(ctx, w, body); err != nil {
		ctx.Logger.Error().Err(err).Str("collection", opts.Name).Msg("collection responder: failed to serialize collection")
	}
}

// respondCollectionSummary handles the cursor-less request. ok is false
// only when the dispatcher itself reported "no such collection" on the
// uncursored (cursoring-not-offered) path.
func respondCollectionSummary(ctx *Context, handle string, opts CollectionOptions) (interface{}, bool) {
	callbacks := opts.Callbacks

	var firstCursor *string
	if callbacks.FirstCursor != nil {
		fc, err := callbacks.FirstCursor(ctx, handle)
		if err == nil {
			firstCursor = fc
		}
	}

	var totalItems *int64
	if callbacks.Counter != nil {
		if n, err := callbacks.Counter(ctx, handle); err == nil {
			totalItems = n
		}
	}

	if firstCursor == nil {
		page, err := callbacks.Dispatch(ctx, handle, nil, opts.Filter)
		if err != nil && !errors.Is(err, fcerrors.ErrNotFound) {
			ctx.Logger.Error().Err(err).Str("collection", opts.Name).Msg("collection responder: dispatcher failed")
		}
		if err != nil || page == nil {
			return nil, false
		}
		items := projectItems(ctx.Logger, opts.Name, page.Items, opts.FilterPredicate)
		return &OrderedCollection{
			Context:    vocab.JSONLDContext{vocab.ActivityStreamsContext},
			Type:       "OrderedCollection",
			TotalItems: totalItems,
			Items:      items,
		}, true
	}

	summary := &OrderedCollection{
		Context:    vocab.JSONLDContext{vocab.ActivityStreamsContext},
		Type:       "OrderedCollection",
		TotalItems: totalItems,
		First:      withCursor(ctx.URL, *firstCursor),
	}
	if callbacks.LastCursor != nil {
		if lc, err := callbacks.LastCursor(ctx, handle); err == nil && lc != nil {
			summary.Last = withCursor(ctx.URL, *lc)
		}
	}
	return summary, true
}

// withCursor clones u with its cursor query parameter set to cursor.
func withCursor(u *url.URL, cursor string) string {
	clone := *u
	q := clone.Query()
	q.Set("cursor", cursor)
	clone.RawQuery = q.Encode()
	return clone.String()
}

// withoutCursor clones u with its cursor query parameter removed -- the
// partOf link of an OrderedCollectionPage.
func withoutCursor(u *url.URL) string {
	clone := *u
	q := clone.Query()
	q.Del("cursor")
	clone.RawQuery = q.Encode()
	return clone.String()
}
