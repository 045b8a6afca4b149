package fedcore

import (
	"net/url"

	"github.com/rs/zerolog"

	"github.com/driusan/fedcore/vocab"
)

// projectItem reduces one raw collection item to the shape it's served
// as: a vocab.Object or vocab.Link is kept as itself, a *url.URL is kept
// as itself, anything else that exposes a non-nil id via
// vocab.Identifiable is reduced to that id, and anything else is
// dropped.
func projectItem(raw interface{}) (interface{}, bool) {
	switch v := raw.(type) {
	case vocab.Object:
		return v, true
	case vocab.Link:
		return v, true
	case *url.URL:
		return v, true
	case vocab.Identifiable:
		id := v.GetID()
		if id == nil {
			return nil, false
		}
		return id, true
	default:
		return nil, false
	}
}

// projectItems reduces each item in raw via projectItem, applying filter
// (if any) to the un-projected item first and logging at most one
// warning per call when filter drops something, so a collection that
// never actually filters server-side doesn't spam the log per item.
func projectItems(logger zerolog.Logger, collection string, raw []interface{}, filter func(interface{}) bool) []interface{} {
	items := make([]interface{}, 0, len(raw))
	warned := false
	for _, item := range raw {
		if filter != nil && !filter(item) {
			if !warned {
				logger.Warn().Str("collection", collection).Msg("collection apparently does not implement filtering; may result in large payload")
				warned = true
			}
			continue
		}
		projected, ok := projectItem(item)
		if !ok {
			continue
		}
		items = append(items, projected)
	}
	return items
}
