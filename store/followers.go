package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mischief/ndb"
)

// followersPath is an append-only ndb record file, one record per
// accepted follower.
func (s *FileStore) followersPath(handle string) (string, error) {
	dir, err := s.handleDir(handle)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "followers.db"), nil
}

func (s *FileStore) unfollowsPath(handle string) (string, error) {
	dir, err := s.handleDir(handle)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "unfollowed.db"), nil
}

// AddFollower records followerIRI as an accepted follower of handle,
// keyed by the id of the Follow activity that granted it (so a replayed
// Follow doesn't produce a duplicate record). Adapted from
// filesystemdb.AddFollower.
func (s *FileStore) AddFollower(handle, followerIRI, followActivityID string) error {
	filename, err := s.followersPath(handle)
	if err != nil {
		return err
	}
	if db, err := ndb.Open(filename); err == nil {
		if records := db.Search("acceptedFrom", followActivityID); len(records) != 0 {
			return nil
		}
	}
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "\nid=%s accepted=true acceptedFrom=%s\n", followerIRI, followActivityID)
	return err
}

// RemoveFollower records that followerIRI has unfollowed handle, in a
// separate ndb file rather than editing the append-only followers.db.
func (s *FileStore) RemoveFollower(handle, followerIRI string) error {
	filename, err := s.unfollowsPath(handle)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "\nid=%s\n", followerIRI)
	return err
}

func (s *FileStore) hasUnfollowed(handle, followerIRI string) bool {
	filename, err := s.unfollowsPath(handle)
	if err != nil {
		return false
	}
	db, err := ndb.Open(filename)
	if err != nil {
		return false
	}
	return len(db.Search("id", followerIRI)) != 0
}

// ListFollowers returns the handle's currently-accepted followers that
// haven't since unfollowed.
func (s *FileStore) ListFollowers(handle string) ([]string, error) {
	filename, err := s.followersPath(handle)
	if err != nil {
		return nil, err
	}
	// ndb.Open does not wrap the underlying *PathError, so check for a
	// missing file before opening it.
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, nil
	}
	db, err := ndb.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	records := db.Search("accepted", "true")
	seen := make(map[string]bool, len(records))
	followers := make([]string, 0, len(records))
	for _, r := range records {
		var id string
		for _, tuple := range r {
			if tuple.Attr == "id" {
				id = tuple.Val
			}
		}
		if id == "" || seen[id] || s.hasUnfollowed(handle, id) {
			continue
		}
		seen[id] = true
		followers = append(followers, id)
	}
	return followers, nil
}

// FollowerCount is ListFollowers' length, for the Collection Responder's
// Counter callback. It builds the full list via ListFollowers and counts
// it.
func (s *FileStore) FollowerCount(handle string) (int64, error) {
	followers, err := s.ListFollowers(handle)
	if err != nil {
		return 0, err
	}
	return int64(len(followers)), nil
}
