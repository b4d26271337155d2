package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Storage mirrors the in-memory identity to a persistent medium, the way a
// browser app mirrors it to local storage.
type Storage interface {
	Load() (*Identity, error)
	Save(id *Identity) error
	Clear() error
}

// FileStorage persists the identity as a JSON file.
type FileStorage struct {
	Path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{Path: path}
}

// Load returns the persisted identity, or nil when none is stored.
func (s *FileStorage) Load() (*Identity, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		// corrupt state is treated as signed out
		return nil, nil
	}
	return &id, nil
}

func (s *FileStorage) Save(id *Identity) error {
	if id == nil {
		return s.Clear()
	}
	data, err := json.Marshal(id)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(s.Path, data, 0o600)
}

func (s *FileStorage) Clear() error {
	err := os.Remove(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
