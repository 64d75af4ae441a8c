// Package store keeps a local JSON snapshot of the current board.
//
// The server renders boards as HTML pages only, so the IDs of notes and
// lists created from this machine are remembered here. Single file,
// human-readable, no locking. Callers keep one file per board.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"boardctl/internal/service"
)

// Snapshot is the stored state of one board.
type Snapshot struct {
	BoardID   string             `json:"board_id"`
	Notes     []service.Note     `json:"notes"`
	Lists     []service.TodoList `json:"lists"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Load reads the snapshot at path. A missing file, or a snapshot of a
// different board, yields an empty snapshot for boardID.
func Load(path, boardID string) (Snapshot, error) {
	empty := Snapshot{BoardID: boardID}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return empty, nil
		}
		return empty, fmt.Errorf("read snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return empty, fmt.Errorf("json unmarshal: %w", err)
	}
	if s.BoardID != boardID {
		return empty, nil
	}
	return s, nil
}

// Save writes the snapshot to path with mode 0600, replacing the old file
// in one rename.
func Save(path string, s Snapshot) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// FindList returns the list with the given ID.
func (s *Snapshot) FindList(id service.ID) (*service.TodoList, bool) {
	for i := range s.Lists {
		if s.Lists[i].ID == id {
			return &s.Lists[i], true
		}
	}
	return nil, false
}
