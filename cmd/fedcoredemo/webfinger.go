package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/driusan/fedcore/store"
)

// webFingerResponse is the minimal JRD RespondActor's discovery path
// needs: a subject, and a single "self" link naming the actor's IRI.
type webFingerResponse struct {
	Subject string         `json:"subject"`
	Aliases []string       `json:"aliases"`
	Links   []webFingerLnk `json:"links"`
}

type webFingerLnk struct {
	Rel  string `json:"rel"`
	Type string `json:"type"`
	Href string `json:"href"`
}

func webFingerHandler(db *store.FileStore, domain string, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resource := r.URL.Query().Get("resource")
		if resource == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Missing resource"))
			return
		}
		if !strings.HasPrefix(resource, "acct:") {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid resource"))
			return
		}
		acct := strings.TrimPrefix(resource, "acct:")
		if !strings.HasSuffix(acct, "@"+domain) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		handle := strings.TrimSuffix(acct, "@"+domain)

		actor, err := db.GetActor(handle)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		body, err := json.Marshal(webFingerResponse{
			Subject: resource,
			Aliases: []string{actor.ID},
			Links: []webFingerLnk{
				{Rel: "self", Type: "application/activity+json", Href: actor.ID},
			},
		})
		if err != nil {
			logger.Error().Err(err).Str("handle", handle).Msg("webfinger: failed to marshal response")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/jrd+json")
		w.Write(body)
	}
}
