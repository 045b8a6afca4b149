package kvstore

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetMiss(t *testing.T) {
	m := NewMemory(time.Minute)
	found, err := m.Get(context.Background(), Key{"prefix", "https://e/a/1"})
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("expected miss on empty store")
	}
}

func TestMemorySetThenGet(t *testing.T) {
	m := NewMemory(time.Minute)
	ctx := context.Background()
	key := Key{"prefix", "https://e/a/2"}

	if err := m.Set(ctx, key, true, 24*time.Hour); err != nil {
		t.Fatal(err)
	}
	found, err := m.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Error("expected hit after set")
	}

	other := Key{"prefix", "https://e/a/3"}
	found, err = m.Get(ctx, other)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("unrelated key should not be found")
	}
}

func TestMemoryExpires(t *testing.T) {
	m := NewMemory(time.Minute)
	ctx := context.Background()
	key := Key{"prefix", "https://e/a/4"}

	if err := m.Set(ctx, key, true, time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	found, err := m.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("expected entry to have expired")
	}
}
