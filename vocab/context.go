package vocab

import "encoding/json"

// JSONLDContext is the "@context" property shared by every vocabulary
// entity. It marshals a single value bare and more than one as an array,
// matching the compaction rules ActivityPub implementations expect.
type JSONLDContext []interface{}

func (c JSONLDContext) MarshalJSON() ([]byte, error) {
	switch len(c) {
	case 0:
		return []byte("null"), nil
	case 1:
		return json.Marshal(c[0])
	default:
		return json.Marshal([]interface{}(c))
	}
}

func (c *JSONLDContext) UnmarshalJSON(b []byte) error {
	var single interface{}
	if err := json.Unmarshal(b, &single); err != nil {
		return err
	}
	switch v := single.(type) {
	case nil:
		*c = nil
	case []interface{}:
		*c = JSONLDContext(v)
	default:
		*c = JSONLDContext{v}
	}
	return nil
}

// ActivityStreamsContext is the canonical context IRI most activities carry.
const ActivityStreamsContext = "https://www.w3.org/ns/activitystreams"
