package httpsig

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatal(err)
	}
	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})

	cache := NewMemoryCache(time.Minute)

	if _, err := cache.GetKey("https://example.com/actor#main-key"); err == nil {
		t.Error("expected a cache miss before SaveKey")
	}
	if err := cache.SaveKey("https://example.com/actor#main-key", "https://example.com/actor", pemBytes); err != nil {
		t.Fatalf("SaveKey: %v", err)
	}
	got, err := cache.GetKey("https://example.com/actor#main-key")
	if err != nil {
		t.Fatalf("GetKey after SaveKey: %v", err)
	}
	rsaKey, ok := got.(*rsa.PublicKey)
	if !ok {
		t.Fatalf("GetKey returned %T, want *rsa.PublicKey", got)
	}
	if rsaKey.N.Cmp(key.PublicKey.N) != 0 {
		t.Error("cached key does not match the key that was saved")
	}
}

func TestMemoryCacheDefaultTTL(t *testing.T) {
	cache := NewMemoryCache(0)
	if cache.ttl != 24*time.Hour {
		t.Errorf("expected default ttl of 24h, got %v", cache.ttl)
	}
}
