package main

import (
	"fmt"
	"net/url"
	"strings"
)

// handleFromActorID extracts the bare handle from one of this server's
// own actor IRIs (https://domain/users/handle), the inverse of
// store.FileStore.CreateActor's id construction.
func handleFromActorID(actorID, domain string) (string, error) {
	u, err := url.Parse(actorID)
	if err != nil {
		return "", err
	}
	if u.Hostname() != domain {
		return "", fmt.Errorf("handle: %s is not a local actor", actorID)
	}
	const prefix = "/users/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", fmt.Errorf("handle: %s is not a local actor", actorID)
	}
	handle := strings.TrimPrefix(u.Path, prefix)
	if handle == "" || strings.Contains(handle, "/") {
		return "", fmt.Errorf("handle: %s is not a local actor", actorID)
	}
	return handle, nil
}
