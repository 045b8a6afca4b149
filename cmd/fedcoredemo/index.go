package main

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/driusan/fedcore/fedcore"
	"github.com/driusan/fedcore/vocab"
)

// indexHandler serves a minimal instance descriptor at "/", negotiated
// directly with RespondWithObjectIfAcceptable rather than the full
// Actor/Object Responder machinery: there's no dispatcher failure mode to
// precede content negotiation here, the root always "exists".
func indexHandler(srv *fedcore.Server, domain string, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		ctx := srv.NewContext(r, nil)
		descriptor := map[string]interface{}{
			"@context": vocab.JSONLDContext{vocab.ActivityStreamsContext},
			"type":     "Service",
			"name":     domain,
		}
		ok, err := fedcore.RespondWithObjectIfAcceptable(ctx, w, descriptor)
		if err != nil {
			logger.Error().Err(err).Msg("index: failed to serialize service descriptor")
			return
		}
		if !ok {
			htmlFallback(domain, renderNote("This is a fedcore demo instance."))(ctx, w)
		}
	}
}
