package fedcore

import (
	"crypto"
	"net/http"
	"testing"

	"github.com/driusan/fedcore/vocab"
)

// TestContextKeyMemoized asserts the signature resolver runs at most
// once per request no matter how many callbacks call Key.
func TestContextKeyMemoized(t *testing.T) {
	r, err := http.NewRequest("POST", "https://example.com/inbox", nil)
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	owner := &vocab.Actor{ID: "https://example.com/@bob"}
	ctx := &Context{
		Ctx:     r.Context(),
		Request: r,
		resolve: func(c *Context) (crypto.PublicKey, vocab.Object, error) {
			calls++
			return "some-key", owner, nil
		},
	}

	for i := 0; i < 3; i++ {
		key, got, err := ctx.Key()
		if err != nil {
			t.Fatal(err)
		}
		if key != "some-key" {
			t.Errorf("key = %v", key)
		}
		if got != owner {
			t.Errorf("owner = %v, want %v", got, owner)
		}
	}
	if calls != 1 {
		t.Errorf("resolver called %d times, want exactly 1", calls)
	}
}

func TestContextKeyNilResolver(t *testing.T) {
	r, err := http.NewRequest("GET", "https://example.com/x", nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := &Context{Ctx: r.Context(), Request: r}
	key, owner, err := ctx.Key()
	if key != nil || owner != nil || err != nil {
		t.Errorf("Key() = %v, %v, %v; want all nil", key, owner, err)
	}
}
