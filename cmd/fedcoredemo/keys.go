package main

import (
	"crypto"
	"fmt"
	"net/http"
	"strings"

	"github.com/driusan/fedcore/fedcore"
	"github.com/driusan/fedcore/vocab"
)

// fetchActorKey implements httpsig.KeyFetcher: it fetches the actor
// document at keyID (ignoring the "#main-key"-style fragment) and
// returns its declared public key PEM and owner IRI.
func fetchActorKey(keyID string) ([]byte, string, error) {
	actor, err := fetchRemoteActor(keyID)
	if err != nil {
		return nil, "", err
	}
	if actor.PublicKey.ID != keyID {
		return nil, "", fmt.Errorf("keys: fetched %s, got key id %s", keyID, actor.PublicKey.ID)
	}
	return []byte(actor.PublicKey.PublicKeyPem), actor.PublicKey.Owner, nil
}

// resolveKeyOwner implements fedcore.KeyOwnerResolver: given the key that
// signed the current request, it re-resolves the owning actor document by
// reading the keyId the request's Signature header names, the same
// document fetchActorKey already parsed the key out of.
func resolveKeyOwner(ctx *fedcore.Context, key crypto.PublicKey) (vocab.Object, error) {
	keyID, err := signatureKeyID(ctx.Request)
	if err != nil {
		return nil, err
	}
	actor, err := fetchRemoteActor(keyID)
	if err != nil {
		return nil, err
	}
	return actor, nil
}

func signatureKeyID(r *http.Request) (string, error) {
	header := r.Header.Get("Signature")
	for _, piece := range strings.Split(header, ",") {
		piece = strings.TrimSpace(piece)
		if !strings.HasPrefix(piece, "keyId=") {
			continue
		}
		return strings.Trim(strings.TrimPrefix(piece, "keyId="), `"`), nil
	}
	return "", fmt.Errorf("keys: no keyId in Signature header")
}
