package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/driusan/fedcore/oauth"
	"github.com/driusan/fedcore/session"
	"github.com/driusan/fedcore/store"
)

// loginHandler implements the operator's OAuth2-against-a-remote-instance
// login flow: resolve a "@user@host" handle via WebFinger, register (or
// reuse) an OAuth2 app with that host, and redirect through its
// authorization endpoint. The resulting bearer token identifies the
// session as the demo's authenticated operator.
func loginHandler(db *store.FileStore, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session.Start(db, w, r)
		if err != nil {
			logger.Warn().Err(err).Msg("login: could not start session")
		}
		switch r.Method {
		case http.MethodGet:
			if code := r.URL.Query().Get("code"); code != "" {
				handleOAuthCallback(db, sess, w, r, logger)
				return
			}
			w.WriteHeader(http.StatusOK)
			io.WriteString(w, loginForm)
		case http.MethodPost:
			handleLoginSubmit(db, sess, w, r, logger)
		default:
			w.Header().Set("Allow", "GET,POST")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

const loginForm = `<form method="post">
<fieldset>
Username: <input name="username" placeholder="@example@example.com" />
<input type="submit" value="Login" />
</fieldset>
</form>`

func handleOAuthCallback(db *store.FileStore, sess *session.Session, w http.ResponseWriter, r *http.Request, logger zerolog.Logger) {
	if sess.Get("OAuthState") != r.URL.Query().Get("state") {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "Bad request state")
		return
	}
	host := sess.Get("OAuthHost")
	if host == "" {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	client, err := db.GetClient(host)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	conf := oauthConfigFor(client, host)
	tok, err := conf.Exchange(context.Background(), r.URL.Query().Get("code"))
	if err != nil {
		logger.Warn().Err(err).Str("host", host).Msg("login: token exchange failed")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "Invalid code")
		return
	}
	sess.Set("OAuthBearerToken", tok.AccessToken)
	sess.Set("OAuthAuthenticatedUsername", sess.Get("ClaimedUsername"))
	if err := db.SaveSession(sess); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

var userAtHostRe = regexp.MustCompile(`@(.+)@(.+)`)

func handleLoginSubmit(db *store.FileStore, sess *session.Session, w http.ResponseWriter, r *http.Request, logger zerolog.Logger) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "Invalid form data")
		return
	}
	username := r.Form.Get("username")
	sess.Set("ClaimedUsername", username)

	pieces := userAtHostRe.FindStringSubmatch(username)
	if pieces == nil {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "Bad username")
		return
	}
	user, host := pieces[1], pieces[2]

	actorID, err := resolveWebFingerActor(user, host)
	if err != nil {
		logger.Warn().Err(err).Str("username", username).Msg("login: webfinger lookup failed")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "Bad username")
		return
	}
	parsed, err := url.Parse(actorID)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "Bad username")
		return
	}

	client, err := db.GetClient(parsed.Hostname())
	if err != nil {
		c, err := registerApp(db, parsed.Hostname())
		if err != nil {
			logger.Warn().Err(err).Str("host", parsed.Hostname()).Msg("login: app registration failed")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, "Could not register app with %s", parsed.Hostname())
			return
		}
		client = c
	}

	conf := oauthConfigFor(client, parsed.Hostname())

	var stateRand [60]byte
	if _, err := rand.Read(stateRand[:]); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	state := base64.URLEncoding.EncodeToString(stateRand[:])
	sess.Set("OAuthState", state)
	sess.Set("OAuthHost", parsed.Hostname())
	if err := db.SaveSession(sess); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, conf.AuthCodeURL(state), http.StatusSeeOther)
}

func oauthConfigFor(client oauth.Client, host string) oauth2.Config {
	return oauth2.Config{
		ClientID:     client.ClientId,
		ClientSecret: client.ClientSecret,
		Scopes:       []string{"read:accounts"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://" + host + "/oauth/authorize",
			TokenURL: "https://" + host + "/oauth/token",
		},
		RedirectURL: client.RedirectURI,
	}
}

func resolveWebFingerActor(user, host string) (string, error) {
	uri := fmt.Sprintf("https://%s/.well-known/webfinger?resource=%s@%s", host, user, host)
	resp, err := http.Get(uri)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var wf webFingerResponse
	if err := json.Unmarshal(body, &wf); err != nil {
		return "", err
	}
	for _, link := range wf.Links {
		if link.Rel == "self" && link.Type == "application/activity+json" {
			return link.Href, nil
		}
	}
	return "", fmt.Errorf("login: no self link in webfinger response for %s@%s", user, host)
}

// registerApp registers an OAuth2 app with hostname via the Mastodon apps
// API. A generic ActivityPub server may not speak it; this is a
// Mastodon-specific assumption, made explicitly rather than hidden.
func registerApp(db *store.FileStore, hostname string, redirectURI ...string) (oauth.Client, error) {
	redirect := "https://" + hostname + "/login/"
	if len(redirectURI) > 0 && redirectURI[0] != "" {
		redirect = redirectURI[0]
	}
	registerURL := "https://" + hostname + "/api/v1/apps"
	values := url.Values{}
	values.Set("client_name", "fedcoredemo")
	values.Set("redirect_uris", redirect)
	values.Set("scopes", "read read:accounts")

	resp, err := http.PostForm(registerURL, values)
	if err != nil {
		return oauth.Client{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return oauth.Client{}, err
	}

	var client oauth.Client
	if err := json.Unmarshal(body, &client); err != nil {
		return oauth.Client{}, err
	}
	if err := db.StoreClient(hostname, client); err != nil {
		return client, err
	}
	return client, nil
}

func logoutHandler(db *store.FileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session.Start(db, w, r)
		if err != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		if err := db.DestroySession(sess); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
