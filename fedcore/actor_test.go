package fedcore

import (
	"crypto"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/driusan/fedcore/vocab"
)

func testContext(t *testing.T, method, target string) (*Context, *httptest.ResponseRecorder) {
	t.Helper()
	r, err := http.NewRequest(method, target, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := &Context{Ctx: r.Context(), Request: r, URL: r.URL, Logger: zerolog.New(io.Discard)}
	return ctx, httptest.NewRecorder()
}

func fallbackWriter(status int) Fallback {
	return func(_ *Context, w http.ResponseWriter) {
		w.WriteHeader(status)
	}
}

func TestRespondActorNotFound(t *testing.T) {
	ctx, w := testContext(t, "GET", "https://example.com/users/alice")
	RespondActor(ctx, w, "alice", ActorOptions{
		Dispatch: func(_ *Context, handle string) (vocab.Object, error) {
			return nil, nil
		},
		OnNotFound:      fallbackWriter(http.StatusNotFound),
		OnNotAcceptable: fallbackWriter(http.StatusNotAcceptable),
		OnUnauthorized:  fallbackWriter(http.StatusUnauthorized),
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRespondActorHTMLRequestNotAcceptable(t *testing.T) {
	ctx, w := testContext(t, "GET", "https://example.com/users/alice")
	ctx.Request.Header.Set("Accept", "text/html")
	actor := &vocab.Actor{ID: "https://example.com/users/alice", Type: "Person"}
	RespondActor(ctx, w, "alice", ActorOptions{
		Dispatch: func(_ *Context, handle string) (vocab.Object, error) {
			return actor, nil
		},
		OnNotFound:      fallbackWriter(http.StatusNotFound),
		OnNotAcceptable: fallbackWriter(http.StatusNotAcceptable),
		OnUnauthorized:  fallbackWriter(http.StatusUnauthorized),
	})
	if w.Code != http.StatusNotAcceptable {
		t.Errorf("status = %d, want 406", w.Code)
	}
}

func TestRespondActorSuccess(t *testing.T) {
	ctx, w := testContext(t, "GET", "https://example.com/users/alice")
	actor := &vocab.Actor{ID: "https://example.com/users/alice", Type: "Person", PreferredUsername: "alice"}
	RespondActor(ctx, w, "alice", ActorOptions{
		Dispatch: func(_ *Context, handle string) (vocab.Object, error) {
			return actor, nil
		},
		OnNotFound:      fallbackWriter(http.StatusNotFound),
		OnNotAcceptable: fallbackWriter(http.StatusNotAcceptable),
		OnUnauthorized:  fallbackWriter(http.StatusUnauthorized),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != ActivityJSONContentType {
		t.Errorf("Content-Type = %q, want %q", ct, ActivityJSONContentType)
	}
	if vary := w.Header().Get("Vary"); vary != "Accept" {
		t.Errorf("Vary = %q, want Accept", vary)
	}
}

// TestRespondActorPrecedenceNotFoundBeforeNegotiation asserts that an
// unknown actor takes precedence over content negotiation, even for a
// request that wouldn't have been acceptable anyway.
func TestRespondActorPrecedenceNotFoundBeforeNegotiation(t *testing.T) {
	ctx, w := testContext(t, "GET", "https://example.com/users/ghost")
	ctx.Request.Header.Set("Accept", "text/html")
	RespondActor(ctx, w, "ghost", ActorOptions{
		Dispatch: func(_ *Context, handle string) (vocab.Object, error) {
			return nil, nil
		},
		OnNotFound:      fallbackWriter(http.StatusNotFound),
		OnNotAcceptable: fallbackWriter(http.StatusNotAcceptable),
		OnUnauthorized:  fallbackWriter(http.StatusUnauthorized),
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 (not-found must precede negotiation)", w.Code)
	}
}

func TestRespondActorAuthorizationDenied(t *testing.T) {
	ctx, w := testContext(t, "GET", "https://example.com/users/alice")
	actor := &vocab.Actor{ID: "https://example.com/users/alice", Type: "Person"}
	RespondActor(ctx, w, "alice", ActorOptions{
		Dispatch: func(_ *Context, handle string) (vocab.Object, error) {
			return actor, nil
		},
		Authorize: func(_ *Context, key crypto.PublicKey, owner vocab.Object, handle string) (bool, error) {
			return false, nil
		},
		OnNotFound:      fallbackWriter(http.StatusNotFound),
		OnNotAcceptable: fallbackWriter(http.StatusNotAcceptable),
		OnUnauthorized:  fallbackWriter(http.StatusUnauthorized),
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
