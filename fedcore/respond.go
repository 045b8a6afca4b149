package fedcore

import (
	"encoding/json"
	"net/http"
)

// JSONDocumentLoader is the stdlib-only DocumentLoader used whenever a
// Server isn't given one: it performs no real JSON-LD compaction, just
// encoding/json marshaling. No example repo in the retrieval pack imports a
// JSON-LD library (no piprate/json-gold or equivalent) -- see DESIGN.md for
// the standard-library justification this otherwise requires.
type JSONDocumentLoader struct{}

func (JSONDocumentLoader) Compact(_ *Context, v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func marshalJSONLD(ctx *Context, v interface{}) ([]byte, error) {
	if ctx != nil && ctx.Loader != nil {
		return ctx.Loader.Compact(ctx, v)
	}
	return json.Marshal(v)
}

// RespondWithObject serializes obj to JSON-LD via ctx's document loader and
// emits 200 with Content-Type: application/activity+json. It does not set
// Vary -- callers that need content negotiation first should use
// RespondWithObjectIfAcceptable instead.
func RespondWithObject(ctx *Context, w http.ResponseWriter, obj interface{}) error {
	data, err := marshalJSONLD(ctx, obj)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", ActivityJSONContentType)
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(data)
	return err
}

// RespondWithObjectIfAcceptable is RespondWithObject gated by content
// negotiation: if ctx.Request doesn't accept JSON-LD it writes nothing and
// returns false, leaving the caller free to fall back to an HTML
// rendering. On the accepted path it also sets Vary: Accept.
func RespondWithObjectIfAcceptable(ctx *Context, w http.ResponseWriter, obj interface{}) (bool, error) {
	if !AcceptsJSONLD(ctx.Request) {
		return false, nil
	}
	w.Header().Set("Vary", "Accept")
	return true, RespondWithObject(ctx, w, obj)
}
