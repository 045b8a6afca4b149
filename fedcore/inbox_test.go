package fedcore

import (
	"bytes"
	"context"
	"crypto"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/driusan/fedcore/kvstore"
	"github.com/driusan/fedcore/vocab"
)

func inboxContext(t *testing.T, body string) (*Context, *httptest.ResponseRecorder) {
	t.Helper()
	r, err := http.NewRequest("POST", "https://e/inbox", bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	ctx := &Context{Ctx: context.Background(), Request: r, URL: r.URL, Logger: zerolog.New(io.Discard)}
	return ctx, httptest.NewRecorder()
}

func alwaysKnownActor(_ *Context, handle string) (vocab.Object, error) {
	return &vocab.Actor{ID: "https://e/@" + handle, Type: "Person"}, nil
}

var anyKey crypto.PublicKey = "test-key"

func acceptingVerifier(_ *http.Request, _ time.Duration) (crypto.PublicKey, error) {
	return anyKey, nil
}

func acceptingOwnership(_ vocab.Activity, _ crypto.PublicKey, _ *Context) (bool, error) {
	return true, nil
}

// TestRespondInboxReplay asserts that a replayed activity id short
// circuits to 202 without dispatching the listener.
func TestRespondInboxReplay(t *testing.T) {
	body := `{"type":"Create","id":"https://e/a/1","actor":"https://e/@bob"}`
	ctx, w := inboxContext(t, body)
	store := kvstore.NewMemory(time.Minute)
	if err := store.Set(ctx.Ctx, kvstore.Key{"inbox:", "https://e/a/1"}, true, time.Hour); err != nil {
		t.Fatal(err)
	}

	dispatched := false
	RespondInbox(ctx, w, InboxOptions{
		ActorDispatch:     alwaysKnownActor,
		Store:             store,
		KeyPrefix:         "inbox:",
		SignatureVerifier: acceptingVerifier,
		KeyOwnership:      acceptingOwnership,
		Listeners: map[vocab.ClassName]InboxListener{
			"Create": func(_ *Context, _ vocab.Activity) error {
				dispatched = true
				return nil
			},
		},
		OnNotFound: fallbackWriter(http.StatusNotFound),
	})

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	if got := w.Body.String(); got != "Activity https://e/a/1 has already been processed." {
		t.Errorf("body = %q", got)
	}
	if dispatched {
		t.Error("listener must not run on a replayed activity")
	}
}

// TestRespondInboxHappyPath asserts that a valid signed Create runs the
// listener exactly once and commits the idempotency record. The record's
// TTL (defaultIdempotencyTTL) is not inspected here.
func TestRespondInboxHappyPath(t *testing.T) {
	body := `{"type":"Create","id":"https://e/a/2","actor":"https://e/@bob"}`
	ctx, w := inboxContext(t, body)
	store := kvstore.NewMemory(time.Minute)

	calls := 0
	RespondInbox(ctx, w, InboxOptions{
		ActorDispatch:     alwaysKnownActor,
		Store:             store,
		KeyPrefix:         "inbox:",
		SignatureVerifier: acceptingVerifier,
		KeyOwnership:      acceptingOwnership,
		Listeners: map[vocab.ClassName]InboxListener{
			"Create": func(_ *Context, a vocab.Activity) error {
				calls++
				if a.GetID().String() != "https://e/a/2" {
					t.Errorf("activity id = %v", a.GetID())
				}
				return nil
			},
		},
		OnNotFound: fallbackWriter(http.StatusNotFound),
	})

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
	if calls != 1 {
		t.Fatalf("listener called %d times, want exactly 1", calls)
	}
	seen, err := store.Get(ctx.Ctx, kvstore.Key{"inbox:", "https://e/a/2"})
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Error("idempotency record was not committed")
	}
}

// TestRespondInboxTypeFallback asserts that an Announce with no listener
// registered for it, but one registered on Activity, resolves via the
// ancestor chain.
func TestRespondInboxTypeFallback(t *testing.T) {
	body := `{"type":"Announce","id":"https://e/a/3","actor":"https://e/@bob","object":"https://e/note/1"}`
	ctx, w := inboxContext(t, body)

	calls := 0
	RespondInbox(ctx, w, InboxOptions{
		ActorDispatch:     alwaysKnownActor,
		Store:             kvstore.NewMemory(time.Minute),
		KeyPrefix:         "inbox:",
		SignatureVerifier: acceptingVerifier,
		KeyOwnership:      acceptingOwnership,
		Listeners: map[vocab.ClassName]InboxListener{
			vocab.ActivityRoot: func(_ *Context, _ vocab.Activity) error {
				calls++
				return nil
			},
		},
		OnNotFound: fallbackWriter(http.StatusNotFound),
	})

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	if calls != 1 {
		t.Errorf("Activity-root listener called %d times, want exactly 1", calls)
	}
}

// TestRespondInboxTypeFallbackNoListener: if no listener is registered
// anywhere along the chain, still 202 empty, but nothing is dispatched.
func TestRespondInboxTypeFallbackNoListener(t *testing.T) {
	body := `{"type":"Announce","id":"https://e/a/4","actor":"https://e/@bob","object":"https://e/note/1"}`
	ctx, w := inboxContext(t, body)

	RespondInbox(ctx, w, InboxOptions{
		ActorDispatch:     alwaysKnownActor,
		Store:             kvstore.NewMemory(time.Minute),
		KeyPrefix:         "inbox:",
		SignatureVerifier: acceptingVerifier,
		KeyOwnership:      acceptingOwnership,
		Listeners:         map[vocab.ClassName]InboxListener{},
		OnNotFound:        fallbackWriter(http.StatusNotFound),
	})

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
}

func TestRespondInboxMalformedJSON(t *testing.T) {
	ctx, w := inboxContext(t, "{not json")
	RespondInbox(ctx, w, InboxOptions{
		ActorDispatch: alwaysKnownActor,
		OnNotFound:    fallbackWriter(http.StatusNotFound),
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if w.Body.String() != "Invalid JSON." {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestRespondInboxMissingActor(t *testing.T) {
	body := `{"type":"Create","id":"https://e/a/5"}`
	ctx, w := inboxContext(t, body)
	RespondInbox(ctx, w, InboxOptions{
		ActorDispatch:     alwaysKnownActor,
		Store:             kvstore.NewMemory(time.Minute),
		KeyPrefix:         "inbox:",
		SignatureVerifier: acceptingVerifier,
		OnNotFound:        fallbackWriter(http.StatusNotFound),
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if w.Body.String() != "Missing actor." {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestRespondInboxNoSignature(t *testing.T) {
	body := `{"type":"Create","id":"https://e/a/6","actor":"https://e/@bob"}`
	ctx, w := inboxContext(t, body)
	RespondInbox(ctx, w, InboxOptions{
		ActorDispatch: alwaysKnownActor,
		OnNotFound:    fallbackWriter(http.StatusNotFound),
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if w.Body.String() != "Failed to verify the request signature." {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestRespondInboxKeyActorMismatch(t *testing.T) {
	body := `{"type":"Create","id":"https://e/a/7","actor":"https://e/@bob"}`
	ctx, w := inboxContext(t, body)
	RespondInbox(ctx, w, InboxOptions{
		ActorDispatch:     alwaysKnownActor,
		Store:             kvstore.NewMemory(time.Minute),
		KeyPrefix:         "inbox:",
		SignatureVerifier: acceptingVerifier,
		KeyOwnership: func(_ vocab.Activity, _ crypto.PublicKey, _ *Context) (bool, error) {
			return false, nil
		},
		OnNotFound: fallbackWriter(http.StatusNotFound),
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if w.Body.String() != "The signer and the actor do not match." {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestRespondInboxListenerError(t *testing.T) {
	body := `{"type":"Create","id":"https://e/a/8","actor":"https://e/@bob"}`
	ctx, w := inboxContext(t, body)
	var reported error
	RespondInbox(ctx, w, InboxOptions{
		ActorDispatch:     alwaysKnownActor,
		Store:             kvstore.NewMemory(time.Minute),
		KeyPrefix:         "inbox:",
		SignatureVerifier: acceptingVerifier,
		KeyOwnership:      acceptingOwnership,
		ErrorHandler: func(_ *Context, err error) {
			reported = err
		},
		Listeners: map[vocab.ClassName]InboxListener{
			"Create": func(_ *Context, _ vocab.Activity) error {
				panic("boom")
			},
		},
		OnNotFound: fallbackWriter(http.StatusNotFound),
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if reported == nil {
		t.Error("error handler was not called for a panicking listener")
	}
}

func TestRespondInboxUnknownHandle(t *testing.T) {
	body := `{"type":"Create","id":"https://e/a/9","actor":"https://e/@bob"}`
	ctx, w := inboxContext(t, body)
	handle := "ghost"
	RespondInbox(ctx, w, InboxOptions{
		Handle: &handle,
		ActorDispatch: func(_ *Context, _ string) (vocab.Object, error) {
			return nil, nil
		},
		OnNotFound: fallbackWriter(http.StatusNotFound),
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
