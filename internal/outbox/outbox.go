package outbox

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrEmptyUserID = errors.New("outbox: user id is required")

// PendingWrite is a completion toggle whose remote write has not been
// acknowledged yet. UpdatesDueDate records whether the replayed payload may
// touch the due date at all; manual-schedule tasks never allow it.
type PendingWrite struct {
	TaskID         string     `json:"task_id"`
	IsCompleted    bool       `json:"is_completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	UpdatesDueDate bool       `json:"updates_due_date"`
}

// Store is a durable per-user map of pending writes keyed by task id.
type Store interface {
	Load(userID string) (map[string]PendingWrite, error)
	Save(userID string, writes map[string]PendingWrite) error
}

// FileStore keeps one JSON file per user under a base directory. Saves are
// atomic (write temp, rename); a corrupt file is treated as an empty outbox
// rather than failing the read path.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("outbox: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Load(userID string) (map[string]PendingWrite, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	out := make(map[string]PendingWrite)
	raw, err := os.ReadFile(s.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return make(map[string]PendingWrite), nil
	}
	return out, nil
}

func (s *FileStore) Save(userID string, writes map[string]PendingWrite) error {
	if strings.TrimSpace(userID) == "" {
		return ErrEmptyUserID
	}
	if writes == nil {
		writes = make(map[string]PendingWrite)
	}
	payload, err := json.MarshalIndent(writes, "", "  ")
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
	return filepath.Join(s.dir, sanitize(userID)+".outbox.json")
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
