package store

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/driusan/fedcore/fcerrors"
	"github.com/driusan/fedcore/vocab"
)

// ErrNotFound means a lookup found nothing, as opposed to failing
// outright. It is fcerrors.ErrNotFound itself, not just a look-alike, so
// fedcore's responders and inbox pipeline recognize a FileStore miss via
// errors.Is(err, fcerrors.ErrNotFound) without FileStore having to wrap
// anything.
var ErrNotFound = fcerrors.ErrNotFound

// FileStore is the flat-file actor/follower/session/OAuth-client store
// backing cmd/fedcoredemo.
type FileStore struct {
	Root string
}

// handleDir validates handle against path traversal and returns the
// actor's directory.
func (s *FileStore) handleDir(handle string) (string, error) {
	if handle == "" || strings.ContainsAny(handle, "/\\") {
		return "", fmt.Errorf("store: invalid handle %q", handle)
	}
	dir := filepath.Join(s.Root, "actors", handle)
	if !strings.HasPrefix(dir, filepath.Join(s.Root, "actors")+string(filepath.Separator)) {
		return "", fmt.Errorf("store: invalid handle %q", handle)
	}
	return dir, nil
}

// CreateActor generates a fresh RSA keypair and writes a Person actor
// for handle under domain.
func (s *FileStore) CreateActor(handle, domain string) (*vocab.Actor, error) {
	dir, err := s.handleDir(handle)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	keyBytes, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, err
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyBytes})
	if err := os.WriteFile(filepath.Join(dir, "private.pem"), keyPEM, 0600); err != nil {
		return nil, err
	}

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, err
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})

	id := fmt.Sprintf("https://%s/users/%s", domain, handle)
	actor := &vocab.Actor{
		Context:           vocab.JSONLDContext{vocab.ActivityStreamsContext, "https://w3id.org/security/v1"},
		ID:                id,
		Type:              "Person",
		PreferredUsername: handle,
		Inbox:             id + "/inbox",
		Outbox:            id + "/outbox",
		Following:         id + "/following",
		Followers:         id + "/followers",
		PublicKey: vocab.PublicKey{
			ID:           id + "#main-key",
			Owner:        id,
			PublicKeyPem: string(pubPEM),
		},
	}
	actorBytes, err := json.Marshal(actor)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, "actor.json"), actorBytes, 0644); err != nil {
		return nil, err
	}
	return actor, nil
}

// GetActor implements the fedcore.ActorDispatcher contract.
func (s *FileStore) GetActor(handle string) (*vocab.Actor, error) {
	dir, err := s.handleDir(handle)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "actor.json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var actor vocab.Actor
	if err := json.Unmarshal(data, &actor); err != nil {
		return nil, err
	}
	return &actor, nil
}

// GetPrivateKey returns the RSA private key generated for handle by
// CreateActor, for signing outbound deliveries (the demo's Follow→Accept
// reply).
func (s *FileStore) GetPrivateKey(handle string) (*rsa.PrivateKey, error) {
	dir, err := s.handleDir(handle)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "private.pem"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("store: no PEM block in private key for %q", handle)
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("store: private key for %q is not RSA", handle)
	}
	return rsaKey, nil
}
