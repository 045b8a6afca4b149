package session

import (
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
	"time"

	"encoding/base64"
)

type Store interface {
	GetSession(id string) (*Session, error)
	SaveSession(*Session) error
	DestroySession(*Session) error
}

type Session struct {
	ID     string
	Values map[string]string
}

func Start(store Store, w http.ResponseWriter, r *http.Request) (*Session, error) {
	if store == nil {
		return nil, fmt.Errorf("no session store configured")
	}
	for _, cookie := range r.Cookies() {
		if cookie.Name == "SessionID" {
			sess, err := store.GetSession(cookie.Value)
			if err != nil {
				log.Println("invalid SessionID, starting new session")
				return newSession(store, w, r)
			}
			return sess, nil
		}
	}
	log.Println("no session cookie, starting new session")
	return newSession(store, w, r)
}

func newSession(store Store, w http.ResponseWriter, r *http.Request) (*Session, error) {
	var id [30]byte
	_, err := rand.Read(id[:])
	if err != nil {
		return nil, err
	}
	idStr := base64.URLEncoding.EncodeToString(id[:])
	sess := Session{
		ID:     idStr,
		Values: make(map[string]string),
	}

	// Expire the session after a week
	maxAge := 60 * 60 * 24 * 7

	cookie := http.Cookie{
		Name:     "SessionID",
		Value:    idStr,
		Expires:  time.Now().Add(time.Second * time.Duration(maxAge)),
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		MaxAge:   maxAge,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, &cookie)
	if err := store.SaveSession(&sess); err != nil {
		return nil, err
	}

	return &sess, nil
}

func (s *Session) Set(key, value string) {
	if s.Values == nil {
		s.Values = make(map[string]string)
	}
	s.Values[key] = value
}

func (s *Session) Get(key string) string {
	if s.Values == nil {
		return ""
	}
	return s.Values[key]
}
