package ledger

import (
	"encoding/json"
	"fmt"
	"os"

	"fallvision-alarm/internal/models"
)

// Store persists the full ledger. Every mutating ledger call rewrites the
// complete entry list (write-through, no batching), so implementations
// only need whole-document load/save.
type Store interface {
	Load() ([]models.Notification, error)
	Save(entries []models.Notification) error
}

// FileStore keeps the ledger as a single JSON document on disk. A missing
// file is an empty ledger, not an error.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the full notification history.
func (s *FileStore) Load() ([]models.Notification, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Notification{}, nil
		}
		return nil, fmt.Errorf("failed to read notification log: %w", err)
	}

	var entries []models.Notification
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse notification log: %w", err)
	}
	return entries, nil
}

// Save rewrites the full notification history.
func (s *FileStore) Save(entries []models.Notification) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal notification log: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write notification log: %w", err)
	}
	return nil
}
