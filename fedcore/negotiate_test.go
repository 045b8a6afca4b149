package fedcore

import (
	"net/http"
	"testing"
)

func TestAcceptsJSONLD(t *testing.T) {
	tests := []struct {
		name   string
		accept string
		want   bool
	}{
		{"absent header", "", true},
		{"bare html", "text/html", false},
		{"xhtml", "application/xhtml+xml", false},
		{"activity json", "application/activity+json", true},
		{"ld json", "application/ld+json", true},
		{"plain json", "application/json", true},
		{"html preferred over json-ld", "text/html, application/activity+json;q=0.9", false},
		{"json-ld preferred over html", "application/activity+json, text/html;q=0.5", true},
		{"unrelated type only", "text/plain", false},
		{"browser-style accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := http.NewRequest("GET", "https://example.com/x", nil)
			if err != nil {
				t.Fatal(err)
			}
			if tc.accept != "" {
				r.Header.Set("Accept", tc.accept)
			}
			if got := AcceptsJSONLD(r); got != tc.want {
				t.Errorf("AcceptsJSONLD(%q) = %v, want %v", tc.accept, got, tc.want)
			}
		})
	}
}
