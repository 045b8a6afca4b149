package main

import (
	"crypto"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/driusan/fedcore/fedcore"
	"github.com/driusan/fedcore/store"
	"github.com/driusan/fedcore/vocab"
)

// followersAuthorize is the followers endpoint's authorization
// predicate: only the operator who logged in via loginHandler's OAuth2
// flow as the account matching handle may view it. The signed-request
// key/keyOwner pair fedcore resolves via ctx.Key() identifies a
// federated peer making an HTTP-signed request and is irrelevant here;
// this predicate instead authenticates the browser's session cookie,
// reading back the two session values handleOAuthCallback writes on a
// successful token exchange.
func followersAuthorize(db *store.FileStore) fedcore.ActorAuthorizer {
	return func(ctx *fedcore.Context, key crypto.PublicKey, keyOwner vocab.Object, handle string) (bool, error) {
		cookie, err := ctx.Request.Cookie("SessionID")
		if err != nil {
			return false, nil
		}
		sess, err := db.GetSession(cookie.Value)
		if err != nil {
			return false, nil
		}
		host := sess.Get("OAuthHost")
		token := sess.Get("OAuthBearerToken")
		claimed := sess.Get("OAuthAuthenticatedUsername")
		if host == "" || token == "" || claimed == "" {
			return false, nil
		}
		if localPart(claimed) != handle {
			return false, nil
		}
		return verifyBearerToken(host, token, handle)
	}
}

// localPart strips the leading "@" and trailing "@host" off a WebFinger
// "@user@host" handle, leaving the bare username.
func localPart(acct string) string {
	local := strings.TrimPrefix(acct, "@")
	if idx := strings.Index(local, "@"); idx >= 0 {
		local = local[:idx]
	}
	return local
}

// verifyBearerToken confirms token is still accepted by host and names
// username, via the same Mastodon accounts API registerApp's app
// registration call already assumes.
func verifyBearerToken(host, token, username string) (bool, error) {
	req, err := http.NewRequest(http.MethodGet, "https://"+host+"/api/v1/accounts/verify_credentials", nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	var account struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return false, err
	}
	return strings.EqualFold(account.Username, username), nil
}
