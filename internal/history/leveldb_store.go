package history

import (
	"encoding/json"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const prefixAction = "action/"

// LevelDBStore persists one key per entry. Keys are zero-padded sequence
// numbers, so iteration order is history order.
type LevelDBStore struct {
	db *leveldb.DB
}

// NewLevelDBStore opens (or creates) the database directory at dbPath.
func NewLevelDBStore(dbPath string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot open leveldb %s: %w", dbPath, err)
	}
	return &LevelDBStore{db: db}, nil
}

func actionKey(seq int) []byte {
	return []byte(fmt.Sprintf("%s%08d", prefixAction, seq))
}

// Save replaces every stored entry with snap.Actions in one batch.
func (s *LevelDBStore) Save(snap Snapshot) error {
	batch := new(leveldb.Batch)

	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefixAction)), nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return fmt.Errorf("failed to scan actions: %w", err)
	}

	for i, e := range snap.Actions {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal entry %s: %w", e.ID, err)
		}
		batch.Put(actionKey(i), data)
	}

	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to write actions: %w", err)
	}
	return nil
}

// Load returns the stored entries in key order.
func (s *LevelDBStore) Load() ([]Entry, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefixAction)), nil)
	defer iter.Release()

	entries := []Entry{}
	for iter.Next() {
		var e Entry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal action %s: %w", iter.Key(), err)
		}
		entries = append(entries, e)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate actions: %w", err)
	}

	return entries, nil
}

// Close closes the database.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
