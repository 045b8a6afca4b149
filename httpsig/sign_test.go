package httpsig

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"testing"
	"time"
)

func TestPrepareAndSignRequest(t *testing.T) {
	req, err := http.NewRequest("POST", "https://example.com/foo", bytes.NewBuffer([]byte("ab")))
	if err != nil {
		t.Fatal(err)
	}
	PrepareRequest(req, `application/ld+json; profile="https://www.w3.org/ns/activitystreams"`, time.Now())

	if req.URL.Path != "/foo" {
		t.Errorf("unexpected path: want /foo got %v", req.URL.Path)
	}
	if host := req.Header.Get("Host"); host != "example.com" {
		t.Errorf("unexpected Host header: got %v", host)
	}
	if req.Header.Get("Date") == "" {
		t.Error("expected Date header to be set")
	}

	key, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if err := Sign(key, "https://example.com/actor#main-key", req, []byte("ab")); err != nil {
		t.Errorf("Sign returned error: %v", err)
	}
	if req.Header.Get("Signature") == "" {
		t.Error("expected Signature header to be set after signing")
	}
}

func TestCheckDateWindow(t *testing.T) {
	now := time.Now()
	fresh := now.Format(http.TimeFormat)
	stale := now.Add(-time.Hour).Format(http.TimeFormat)

	if err := checkDateWindow(fresh, time.Minute); err != nil {
		t.Errorf("fresh date should pass: %v", err)
	}
	if err := checkDateWindow(stale, time.Minute); err == nil {
		t.Error("stale date should fail the window check")
	}
	if err := checkDateWindow("", time.Minute); err == nil {
		t.Error("missing date should fail")
	}
	if err := checkDateWindow(fresh, 0); err != nil {
		t.Errorf("window of zero disables the check: %v", err)
	}
}

func TestAlgorithmFromHeader(t *testing.T) {
	tests := []struct {
		Header string
		Want   string
	}{
		{`keyId="k",algorithm="rsa-sha256",headers="(request-target)",signature="s"`, "rsa-sha256"},
		{`keyId="k",algorithm="hs2019",headers="(request-target)",signature="s"`, "rsa-sha256"},
	}
	for _, tc := range tests {
		got, err := algorithmFromHeader(tc.Header)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != tc.Want {
			t.Errorf("algorithmFromHeader(%q) = %q, want %q", tc.Header, got, tc.Want)
		}
	}
	if _, err := algorithmFromHeader("no algorithm here"); err == nil {
		t.Error("expected error when algorithm is absent")
	}
}
