package httpsig

import (
	"crypto"
	"net/http"
	"time"

	gofedhttpsig "github.com/go-fed/httpsig"
)

// Sign signs an outbound request with RSA-SHA256 over the
// request-target, date, digest, host, and content-type headers. The
// caller must have already set Date and Content-Type; Sign computes the
// Digest header itself from body.
func Sign(privateKey crypto.PrivateKey, publicKeyID string, r *http.Request, body []byte) error {
	prefs := []gofedhttpsig.Algorithm{gofedhttpsig.RSA_SHA256}
	headersToSign := []string{gofedhttpsig.RequestTarget, "date", "digest", "host", "content-type"}
	signer, _, err := gofedhttpsig.NewSigner(prefs, gofedhttpsig.DigestSha256, headersToSign, gofedhttpsig.Signature, 60*60*24*30)
	if err != nil {
		return err
	}
	return signer.SignRequest(privateKey, publicKeyID, r, body)
}

// PrepareRequest fills in the headers Sign needs before signing: Host from
// the URL, and a Date timestamp in the format HTTP signatures expect.
func PrepareRequest(r *http.Request, contentType string, now time.Time) {
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Host", r.URL.Hostname())
	r.Header.Set("Date", now.In(time.UTC).Format(http.TimeFormat))
}
