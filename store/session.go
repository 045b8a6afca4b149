package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/driusan/fedcore/session"
)

// GetSession implements session.Store: one file per value, under a
// directory named by the session id.
func (s *FileStore) GetSession(id string) (*session.Session, error) {
	dir := filepath.Join(s.Root, "sessions", id)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	sess := &session.Session{ID: id, Values: make(map[string]string)}
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, err
		}
		sess.Values[file.Name()] = string(data)
	}
	return sess, nil
}

func (s *FileStore) SaveSession(sess *session.Session) error {
	if sess == nil {
		return errors.New("store: no session")
	}
	dir := filepath.Join(s.Root, "sessions", sess.ID)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	for key, value := range sess.Values {
		if err := os.WriteFile(filepath.Join(dir, key), []byte(value), 0600); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) DestroySession(sess *session.Session) error {
	dir := filepath.Join(s.Root, "sessions", sess.ID)
	sessionsRoot := filepath.Join(s.Root, "sessions")
	if !strings.HasPrefix(dir, sessionsRoot+string(filepath.Separator)) {
		return errors.New("store: invalid session id")
	}
	return os.RemoveAll(dir)
}
