package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/driusan/fedcore/vocab"
)

// notesDir is where inbound Notes (federated Create activities this
// server received) are cached, so RespondObject has something real to
// serve back at GET /notes/{id} instead of only test doubles.
func (s *FileStore) notesDir() string {
	return filepath.Join(s.Root, "notes")
}

// SaveNote persists note under a generated local id, returning that id.
func (s *FileStore) SaveNote(note *vocab.Note) (string, error) {
	if err := os.MkdirAll(s.notesDir(), 0700); err != nil {
		return "", err
	}
	id := uuid.NewString()
	data, err := json.Marshal(note)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.notesDir(), id+".json"), data, 0600); err != nil {
		return "", err
	}
	return id, nil
}

// GetNote implements the fedcore.ObjectDispatcher contract, keyed by the
// "id" route parameter RespondObject is called with.
func (s *FileStore) GetNote(id string) (*vocab.Note, error) {
	if id == "" || strings.ContainsAny(id, "/\\") {
		return nil, errors.New("store: invalid note id")
	}
	data, err := os.ReadFile(filepath.Join(s.notesDir(), id+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var note vocab.Note
	if err := json.Unmarshal(data, &note); err != nil {
		return nil, err
	}
	return &note, nil
}
