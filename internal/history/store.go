package history

// Snapshot is the persisted form of a history. Summary is derived and
// recomputed on every save; Actions is authoritative.
type Snapshot struct {
	Summary Summary `json:"summary"`
	Actions []Entry `json:"actions"`
}

// Store persists history snapshots.
type Store interface {
	Save(snap Snapshot) error
	// Load returns the persisted entries in order. A store that was never
	// written returns no entries and no error.
	Load() ([]Entry, error)
	Close() error
}
