package vocab

import (
	"encoding/json"
	"net/url"
)

// ClassName identifies an activity's concrete ActivityStreams type, e.g.
// "Follow" or "Announce".
type ClassName string

// ActivityRoot is the class every activity's ancestor chain terminates at.
// The inbox pipeline's listener walk treats reaching it without a match
// as an unsupported-but-accepted activity.
const ActivityRoot ClassName = "Activity"

// Activity is the subset of the ActivityStreams vocabulary the Inbox
// Pipeline needs: an optional id, the actor performing it, and a declared
// ancestor chain walked for listener dispatch.
//
// Ancestors returns the activity's superclasses nearest-first, always
// ending in ActivityRoot. This is a tagged-variant alternative to
// prototype-chain walking: rather than reflecting on a runtime class
// hierarchy, each concrete type simply declares the chain it was
// generated from.
type Activity interface {
	json.Marshaler
	TypeName() ClassName
	Ancestors() []ClassName
	GetID() *url.URL
	GetActorID() *url.URL
}

// BaseActivity carries the three properties every activity has: a type tag,
// an optional id, and the actor performing it. Concrete activity types
// embed it and add their own Ancestors() and Object-bearing fields.
type BaseActivity struct {
	Context JSONLDContext `json:"@context,omitempty"`
	ID      string        `json:"id,omitempty"`
	Type    ClassName     `json:"type"`
	Actor   string        `json:"actor"`
}

func (b BaseActivity) TypeName() ClassName { return b.Type }

func (b BaseActivity) GetID() *url.URL {
	if b.ID == "" {
		return nil
	}
	u, err := url.Parse(b.ID)
	if err != nil {
		return nil
	}
	return u
}

func (b BaseActivity) GetActorID() *url.URL {
	if b.Actor == "" {
		return nil
	}
	u, err := url.Parse(b.Actor)
	if err != nil {
		return nil
	}
	return u
}

// Follow requests that Actor be notified of Object's activity.
type Follow struct {
	BaseActivity
	Object string `json:"object"`
}

func (f *Follow) Ancestors() []ClassName { return []ClassName{ActivityRoot} }
func (f *Follow) MarshalJSON() ([]byte, error) {
	type wire Follow
	return json.Marshal((*wire)(f))
}

// Accept is sent in reply to a Follow (or Offer) to approve it.
type Accept struct {
	BaseActivity
	Object json.RawMessage `json:"object"`
}

func (a *Accept) Ancestors() []ClassName { return []ClassName{ActivityRoot} }
func (a *Accept) MarshalJSON() ([]byte, error) {
	type wire Accept
	return json.Marshal((*wire)(a))
}

// Reject is the negative counterpart to Accept.
type Reject struct {
	BaseActivity
	Object json.RawMessage `json:"object"`
}

func (r *Reject) Ancestors() []ClassName { return []ClassName{ActivityRoot} }
func (r *Reject) MarshalJSON() ([]byte, error) {
	type wire Reject
	return json.Marshal((*wire)(r))
}

// Undo reverses the effect of a previously delivered activity.
type Undo struct {
	BaseActivity
	Object json.RawMessage `json:"object"`
}

func (u *Undo) Ancestors() []ClassName { return []ClassName{ActivityRoot} }
func (u *Undo) MarshalJSON() ([]byte, error) {
	type wire Undo
	return json.Marshal((*wire)(u))
}

// Create wraps a newly published object, typically a Note.
type Create struct {
	BaseActivity
	Object json.RawMessage `json:"object"`
}

func (c *Create) Ancestors() []ClassName { return []ClassName{ActivityRoot} }
func (c *Create) MarshalJSON() ([]byte, error) {
	type wire Create
	return json.Marshal((*wire)(c))
}

// Announce (a boost/share) republishes an object to the actor's followers.
type Announce struct {
	BaseActivity
	Object string `json:"object"`
}

func (a *Announce) Ancestors() []ClassName { return []ClassName{ActivityRoot} }
func (a *Announce) MarshalJSON() ([]byte, error) {
	type wire Announce
	return json.Marshal((*wire)(a))
}

// Offer proposes Object to the target actor; Invite is its subtype used
// for event invitations. Kept distinct from Follow/Create to exercise a
// two-level ancestor chain in the listener walk.
type Offer struct {
	BaseActivity
	Object json.RawMessage `json:"object"`
}

func (o *Offer) Ancestors() []ClassName { return []ClassName{ActivityRoot} }
func (o *Offer) MarshalJSON() ([]byte, error) {
	type wire Offer
	return json.Marshal((*wire)(o))
}

type Invite struct {
	BaseActivity
	Object json.RawMessage `json:"object"`
}

func (i *Invite) Ancestors() []ClassName { return []ClassName{"Offer", ActivityRoot} }
func (i *Invite) MarshalJSON() ([]byte, error) {
	type wire Invite
	return json.Marshal((*wire)(i))
}
