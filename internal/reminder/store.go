package reminder

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var ErrEmptyUserID = errors.New("reminder: user id is required")

// Store persists the per-user stored reminder set between syncs.
type Store interface {
	Load(userID string) (map[string]Record, error)
	Save(userID string, records map[string]Record) error
}

// FileStore keeps one JSON file per user. Saves replace the whole set
// atomically; a corrupt file reads as empty so the next sync rebuilds from
// scratch instead of crashing.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("reminder: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Load(userID string) (map[string]Record, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	out := make(map[string]Record)
	raw, err := os.ReadFile(s.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return make(map[string]Record), nil
	}
	return out, nil
}

func (s *FileStore) Save(userID string, records map[string]Record) error {
	if strings.TrimSpace(userID) == "" {
		return ErrEmptyUserID
	}
	if records == nil {
		records = make(map[string]Record)
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	path := s.path(userID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *FileStore) path(userID string) string {
	return filepath.Join(s.dir, sanitize(userID)+".reminders.json")
}

func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, id)
}
