package vocab

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// PeekType reads an activity's "type" field without fully unmarshaling the
// document, letting the inbox pipeline choose a concrete Go type before
// paying for a full decode.
func PeekType(raw []byte) (ClassName, error) {
	result := gjson.GetBytes(raw, "type")
	if !result.Exists() || result.Type != gjson.String {
		return "", fmt.Errorf("vocab: activity has no string \"type\"")
	}
	return ClassName(result.String()), nil
}

// GenericActivity is what Decode produces for a type it doesn't have a
// concrete Go struct for. It still satisfies Activity, so the Inbox
// Pipeline's listener walk runs normally and falls through to the
// unsupported-type 202 unless a listener is registered against
// ActivityRoot itself.
type GenericActivity struct {
	BaseActivity
	Object json.RawMessage `json:"object,omitempty"`
}

func (g *GenericActivity) Ancestors() []ClassName { return []ClassName{ActivityRoot} }
func (g *GenericActivity) MarshalJSON() ([]byte, error) {
	type wire GenericActivity
	return json.Marshal((*wire)(g))
}

// Decode unmarshals raw into the concrete Activity type PeekType names,
// falling back to GenericActivity for anything unrecognized.
func Decode(raw []byte) (Activity, error) {
	typ, err := PeekType(raw)
	if err != nil {
		return nil, err
	}

	var act Activity
	switch typ {
	case "Follow":
		act = &Follow{}
	case "Accept":
		act = &Accept{}
	case "Reject":
		act = &Reject{}
	case "Undo":
		act = &Undo{}
	case "Create":
		act = &Create{}
	case "Announce":
		act = &Announce{}
	case "Offer":
		act = &Offer{}
	case "Invite":
		act = &Invite{}
	default:
		act = &GenericActivity{}
	}
	if err := json.Unmarshal(raw, act); err != nil {
		return nil, err
	}
	return act, nil
}
