package history

import (
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendJSON    = "json"
	BackendSQLite  = "sqlite"
	BackendLevelDB = "leveldb"
)

// Open returns the store for backend at path. An empty backend means JSON.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendJSON:
		return NewJSONStore(path), nil
	case BackendSQLite:
		return NewSQLiteStore(path)
	case BackendLevelDB:
		return NewLevelDBStore(path)
	default:
		return nil, fmt.Errorf("unknown history backend: %s", backend)
	}
}
