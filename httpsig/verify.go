package httpsig

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"strings"
	"time"

	gofedhttpsig "github.com/go-fed/httpsig"
)

// KeyFetcher resolves a keyId URL to the owning actor's public key PEM
// and the IRI of the actor that owns it. fedcore's core package never
// calls it directly -- only this package does, on the core's behalf, as
// the default SignatureVerifier implementation.
type KeyFetcher func(keyID string) (pemBytes []byte, owner string, err error)

// Verifier authenticates inbound HTTP signatures: it resolves the signing
// key (via Cache, falling back to Fetch), checks the request's Date header
// against a tolerance window, and verifies the signature itself.
type Verifier struct {
	Cache KeyCache
	Fetch KeyFetcher
}

// Verify implements the fedcore SignatureVerifier collaborator contract:
// given a request and a time window, return the key that signed it, or a
// non-nil error if no valid signature is present.
func (v *Verifier) Verify(r *http.Request, window time.Duration) (crypto.PublicKey, error) {
	if err := checkDateWindow(r.Header.Get("Date"), window); err != nil {
		return nil, err
	}

	verifier, err := gofedhttpsig.NewVerifier(r)
	if err != nil {
		return nil, err
	}
	algorithm, err := algorithmFromHeader(r.Header.Get("Signature"))
	if err != nil {
		return nil, err
	}

	pubkey, owner, err := v.resolveKey(verifier.KeyId())
	if err != nil {
		return nil, err
	}
	if err := verifier.Verify(pubkey, algorithm); err != nil {
		return nil, err
	}
	_ = owner
	return pubkey, nil
}

func (v *Verifier) resolveKey(keyID string) (crypto.PublicKey, string, error) {
	if v.Cache != nil {
		if key, err := v.Cache.GetKey(keyID); err == nil {
			return key, "", nil
		}
	}
	if v.Fetch == nil {
		return nil, "", fmt.Errorf("httpsig: no cached key for %s and no fetcher configured", keyID)
	}
	pemBytes, owner, err := v.Fetch(keyID)
	if err != nil {
		return nil, "", err
	}
	key, err := parsePublicKeyPEM(pemBytes)
	if err != nil {
		return nil, "", err
	}
	if v.Cache != nil {
		if err := v.Cache.SaveKey(keyID, owner, pemBytes); err != nil {
			return nil, "", err
		}
	}
	return key, owner, nil
}

func checkDateWindow(dateHeader string, window time.Duration) error {
	if dateHeader == "" {
		return fmt.Errorf("httpsig: missing Date header")
	}
	sent, err := http.ParseTime(dateHeader)
	if err != nil {
		return fmt.Errorf("httpsig: invalid Date header: %w", err)
	}
	if window <= 0 {
		return nil
	}
	delta := time.Since(sent)
	if delta < 0 {
		delta = -delta
	}
	if delta > window {
		return fmt.Errorf("httpsig: Date %s is outside the %s verification window", dateHeader, window)
	}
	return nil
}

// algorithmFromHeader exists because go-fed/httpsig rejects the
// "hs2019" algorithm token many Mastodon-compatible servers still send,
// so we translate it to rsa-sha256 ourselves.
func algorithmFromHeader(header string) (gofedhttpsig.Algorithm, error) {
	for _, piece := range strings.Split(header, ",") {
		if !strings.HasPrefix(piece, "algorithm=") {
			continue
		}
		val := strings.TrimPrefix(piece, "algorithm=")
		val = strings.Trim(val, `"`)
		if val == "hs2019" {
			return gofedhttpsig.RSA_SHA256, nil
		}
		return gofedhttpsig.Algorithm(val), nil
	}
	return "", fmt.Errorf("httpsig: could not determine signature algorithm")
}

func parsePublicKeyPEM(pemBytes []byte) (crypto.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("httpsig: no PEM block in key")
	}
	switch block.Type {
	case "PUBLIC KEY":
		return x509.ParsePKIXPublicKey(block.Bytes)
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	default:
		return nil, fmt.Errorf("httpsig: unsupported PEM block type %q", block.Type)
	}
}
