package fedcore

import (
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// ActivityJSONContentType is the content type every successful negotiation
// response from the core carries.
const ActivityJSONContentType = "application/activity+json"

var jsonLDMediaTypes = map[string]bool{
	"application/activity+json": true,
	"application/ld+json":       true,
	"application/json":          true,
}

type acceptEntry struct {
	mediaType string
	q         float64
}

// parseAccept parses an Accept header into its accepted media types in
// preference order (highest q first; ties keep header order, since
// sort.SliceStable is used). Entries it can't parse are skipped rather
// than rejecting the whole header.
func parseAccept(header string) []acceptEntry {
	if header == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	entries := make([]acceptEntry, 0, len(parts))
	for _, part := range parts {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if raw, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
				q = parsed
			}
		}
		entries = append(entries, acceptEntry{mediaType: mediaType, q: q})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].q > entries[j].q })
	return entries
}

// AcceptsJSONLD reports whether r prefers ActivityStreams JSON-LD over
// HTML.
func AcceptsJSONLD(r *http.Request) bool {
	entries := parseAccept(r.Header.Get("Accept"))
	if len(entries) == 0 {
		return true
	}
	switch entries[0].mediaType {
	case "text/html", "application/xhtml+xml":
		return false
	}
	for _, e := range entries {
		if jsonLDMediaTypes[e.mediaType] {
			return true
		}
	}
	return false
}
