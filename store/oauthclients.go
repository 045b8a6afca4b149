package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mischief/ndb"

	"github.com/driusan/fedcore/oauth"
)

// GetClient and StoreClient implement oauth.ClientStore: one append-only
// ndb record per remote instance fedcore has registered an OAuth2 app
// with.
func (s *FileStore) GetClient(hostname string) (oauth.Client, error) {
	db, err := ndb.Open(filepath.Join(s.Root, "oauthclients.db"))
	if err != nil {
		return oauth.Client{}, fmt.Errorf("store: no OAuth clients registered")
	}
	records := db.Search("hostname", hostname)
	if len(records) == 0 {
		return oauth.Client{}, fmt.Errorf("store: no OAuth client registered for %s", hostname)
	}
	var client oauth.Client
	for _, tuple := range records[0] {
		switch tuple.Attr {
		case "remoteid":
			client.Id = tuple.Val
		case "remotename":
			client.Name = tuple.Val
		case "website":
			client.Website = tuple.Val
		case "redirect_uri":
			client.RedirectURI = tuple.Val
		case "client_id":
			client.ClientId = tuple.Val
		case "client_secret":
			client.ClientSecret = tuple.Val
		}
	}
	return client, nil
}

func (s *FileStore) StoreClient(hostname string, c oauth.Client) error {
	if _, err := s.GetClient(hostname); err == nil {
		return fmt.Errorf("store: %s already registered", hostname)
	}
	filename := filepath.Join(s.Root, "oauthclients.db")
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "hostname=%s remoteid=%s remotename=%s website=%s redirect_uri=%s client_id=%s client_secret=%s\n",
		hostname, c.Id, c.Name, c.Website, c.RedirectURI, c.ClientId, c.ClientSecret)
	return err
}
