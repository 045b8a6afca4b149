package vocab

import (
	"encoding/json"
	"net/url"
)

// Identifiable is satisfied by any vocabulary entity that exposes an IRI.
// fedcore's collection item projector uses it to reduce a generic entity
// down to its id when the entity isn't an Object or Link.
type Identifiable interface {
	GetID() *url.URL
}

// Object marks a vocabulary entity that should be embedded directly (rather
// than reduced to its id) when it shows up as a raw collection item.
type Object interface {
	Identifiable
	json.Marshaler
}

// Link marks an ActivityStreams Link, or a subtype of it, embedded directly
// when it shows up as a raw collection item.
type Link interface {
	Identifiable
	json.Marshaler
}

// PublicKey is the security vocabulary extension every actor carries so its
// HTTP signatures can be verified.
type PublicKey struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	PublicKeyPem string `json:"publicKeyPem"`
}

// Actor is the opaque identity dispatchers resolve a handle to. It is
// deliberately thin: fedcore only ever reads its id and public key, and
// serializes it whole for the Actor Responder.
type Actor struct {
	Context           JSONLDContext `json:"@context"`
	ID                string        `json:"id"`
	Type              string        `json:"type"`
	PreferredUsername string        `json:"preferredUsername"`
	Name              string        `json:"name,omitempty"`
	Summary           string        `json:"summary,omitempty"`
	Inbox             string        `json:"inbox"`
	Outbox            string        `json:"outbox,omitempty"`
	Following         string        `json:"following,omitempty"`
	Followers         string        `json:"followers,omitempty"`
	PublicKey         PublicKey     `json:"publicKey"`
}

func (a *Actor) GetID() *url.URL {
	u, err := url.Parse(a.ID)
	if err != nil {
		return nil
	}
	return u
}

func (a *Actor) MarshalJSON() ([]byte, error) {
	type wire Actor
	return json.Marshal((*wire)(a))
}

// MentionName renders the actor as an @user@host handle for display,
// falling back to the bare id when the id isn't a parseable URL.
func (a *Actor) MentionName() string {
	u, err := url.Parse(a.ID)
	if err != nil || a.PreferredUsername == "" {
		return a.ID
	}
	return "@" + a.PreferredUsername + "@" + u.Hostname()
}

// Note is a concrete Object: the entity fedcore's demo command caches from
// inbound Creates and serves through RespondObject.
type Note struct {
	Context      JSONLDContext `json:"@context,omitempty"`
	ID           string        `json:"id"`
	Type         string        `json:"type"`
	Summary      *string       `json:"summary,omitempty"`
	InReplyTo    *string       `json:"inReplyTo,omitempty"`
	To           []string      `json:"to,omitempty"`
	Cc           []string      `json:"cc,omitempty"`
	AttributedTo string        `json:"attributedTo,omitempty"`
	MediaType    string        `json:"mediaType,omitempty"`
	Content      string        `json:"content,omitempty"`
}

func (n *Note) GetID() *url.URL {
	u, err := url.Parse(n.ID)
	if err != nil {
		return nil
	}
	return u
}

func (n *Note) MarshalJSON() ([]byte, error) {
	type wire Note
	return json.Marshal((*wire)(n))
}

// SimpleLink is a concrete Link: href plus an optional media type, the
// shape almost every ActivityStreams Link subtype reduces to on the wire.
type SimpleLink struct {
	Type      string `json:"type"`
	Href      string `json:"href"`
	MediaType string `json:"mediaType,omitempty"`
}

func (l *SimpleLink) GetID() *url.URL {
	u, err := url.Parse(l.Href)
	if err != nil {
		return nil
	}
	return u
}

func (l *SimpleLink) MarshalJSON() ([]byte, error) {
	type wire SimpleLink
	return json.Marshal((*wire)(l))
}
