package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONStore handles JSON file persistence of the history
type JSONStore struct {
	filePath string
}

// NewJSONStore creates a new store for the given file path
func NewJSONStore(filePath string) *JSONStore {
	return &JSONStore{filePath: filePath}
}

// Path returns the backing file.
func (s *JSONStore) Path() string {
	return s.filePath
}

// Save writes snap as an indented {"summary", "actions"} document.
func (s *JSONStore) Save(snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if snap.Actions == nil {
		snap.Actions = []Entry{}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	// Write then rename so a crash never leaves a truncated file
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}

	return nil
}

// Load reads the history file. Both the wrapped layout and a legacy bare
// array of entries are accepted.
func (s *JSONStore) Load() ([]Entry, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []Entry{}, nil
	}

	if trimmed[0] == '[' {
		var entries []Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history: %w", err)
		}
		return entries, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	if snap.Actions == nil {
		return []Entry{}, nil
	}
	return snap.Actions, nil
}

// Close is a no-op.
func (s *JSONStore) Close() error {
	return nil
}
