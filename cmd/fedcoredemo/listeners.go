package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/driusan/fedcore/fedcore"
	"github.com/driusan/fedcore/httpsig"
	"github.com/driusan/fedcore/store"
	"github.com/driusan/fedcore/vocab"
)

// followListener records the follower and signs+delivers an Accept back
// to it, using google/uuid for the Accept's id and the httpsig package's
// Sign to produce the signature.
func followListener(db *store.FileStore, domain string, logger zerolog.Logger) fedcore.InboxListener {
	return func(ctx *fedcore.Context, activity vocab.Activity) error {
		follow, ok := activity.(*vocab.Follow)
		if !ok {
			return fmt.Errorf("listeners: expected *vocab.Follow, got %T", activity)
		}

		handle, err := handleFromActorID(follow.Object, domain)
		if err != nil {
			return err
		}
		if err := db.AddFollower(handle, follow.Actor, follow.ID); err != nil {
			return err
		}

		acceptID := fmt.Sprintf("https://%s/users/%s#accept-%s", domain, handle, uuid.NewString())
		acceptObj, err := json.Marshal(follow)
		if err != nil {
			return err
		}
		accept := &vocab.Accept{
			BaseActivity: vocab.BaseActivity{
				Context: vocab.JSONLDContext{vocab.ActivityStreamsContext},
				ID:      acceptID,
				Type:    "Accept",
				Actor:   follow.Object,
			},
			Object: json.RawMessage(acceptObj),
		}

		return deliver(db, handle, follow.Actor, accept, logger)
	}
}

// undoListener implements the Undo-of-Follow half of the demo's follower
// ledger (inbox/process.go's HandleUndo): only Undo(Follow) is understood,
// everything else is accepted and ignored since the Inbox Pipeline only
// dispatches here once a listener has already claimed the activity type.
func undoListener(db *store.FileStore, domain string) fedcore.InboxListener {
	return func(ctx *fedcore.Context, activity vocab.Activity) error {
		undo, ok := activity.(*vocab.Undo)
		if !ok {
			return fmt.Errorf("listeners: expected *vocab.Undo, got %T", activity)
		}
		var inner vocab.Follow
		if err := json.Unmarshal(undo.Object, &inner); err != nil || inner.Type != "Follow" {
			return nil
		}
		handle, err := handleFromActorID(inner.Object, domain)
		if err != nil {
			return err
		}
		return db.RemoveFollower(handle, undo.Actor)
	}
}

// createListener caches an inbound Create(Note) so RespondObject has
// something real to serve at GET /notes/{id}, caching it rather than
// threading it onto anything, since fedcoredemo has no wiki pages to
// thread a note onto.
func createListener(db *store.FileStore, logger zerolog.Logger) fedcore.InboxListener {
	return func(ctx *fedcore.Context, activity vocab.Activity) error {
		create, ok := activity.(*vocab.Create)
		if !ok {
			return fmt.Errorf("listeners: expected *vocab.Create, got %T", activity)
		}
		var note vocab.Note
		if err := json.Unmarshal(create.Object, &note); err != nil {
			return err
		}
		if note.Type != "Note" {
			logger.Info().Str("type", note.Type).Msg("listeners: ignoring non-Note Create")
			return nil
		}
		id, err := db.SaveNote(&note)
		if err != nil {
			return err
		}
		logger.Info().Str("id", id).Msg("listeners: cached inbound note")
		return nil
	}
}

// deliver signs obj with handle's private key and POSTs it to the actor
// named by actorID's inbox, mirroring outbox/send.go's Send/makeRequest.
func deliver(db *store.FileStore, handle, actorID string, obj vocab.Activity, logger zerolog.Logger) error {
	privkey, err := db.GetPrivateKey(handle)
	if err != nil {
		return err
	}
	actor, err := db.GetActor(handle)
	if err != nil {
		return err
	}
	remote, err := fetchRemoteActor(actorID)
	if err != nil {
		return err
	}

	body, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, remote.Inbox, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpsig.PrepareRequest(req, `application/ld+json; profile="https://www.w3.org/ns/activitystreams"`, time.Now())
	if err := httpsig.Sign(privkey, actor.PublicKey.ID, req, body); err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		logger.Warn().Int("status", resp.StatusCode).Str("to", remote.Inbox).Msg("listeners: delivery rejected")
	}
	return nil
}

func fetchRemoteActor(actorID string) (*vocab.Actor, error) {
	req, err := http.NewRequest(http.MethodGet, actorID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", fedcore.ActivityJSONContentType)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var actor vocab.Actor
	if err := json.NewDecoder(resp.Body).Decode(&actor); err != nil {
		return nil, err
	}
	return &actor, nil
}
