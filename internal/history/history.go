// Package history keeps the bounded audit log of every attempted action.
package history

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
	"github.com/Lin-Jiong-HDU/gate/internal/logging"
)

// DefaultMaxItems is the default retained entry count.
const DefaultMaxItems = 100

// Summary aggregates the retained entries.
type Summary struct {
	TotalActions         int        `json:"total_actions"`
	SuccessCount         int        `json:"success_count"`
	ErrorCount           int        `json:"error_count"`
	TotalExecutionTime   float64    `json:"total_execution_time"`
	AverageExecutionTime float64    `json:"average_execution_time"`
	FirstAction          *time.Time `json:"first_action"`
	LastAction           *time.Time `json:"last_action"`
}

// History is an append-only log bounded to maxItems entries. Once full, each
// Record evicts the oldest entry.
type History struct {
	mu       sync.RWMutex
	entries  []Entry
	maxItems int
	logger   *slog.Logger
}

// New creates a history retaining at most maxItems entries.
func New(maxItems int, logger *slog.Logger) *History {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &History{
		maxItems: maxItems,
		logger:   logger,
	}
}

// MaxItems returns the retention cap.
func (h *History) MaxItems() int {
	return h.maxItems
}

// Record appends e and evicts the oldest entries beyond the cap.
func (h *History) Record(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, e)
	if over := len(h.entries) - h.maxItems; over > 0 {
		// Copy so the evicted prefix can be collected
		h.entries = append([]Entry(nil), h.entries[over:]...)
	}

	h.logger.Debug("action recorded", "action", e.Action, "status", e.Status, "execution_time", e.ExecutionTime)
}

// Recent returns the last n entries, most recent last.
func (h *History) Recent(n int) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 {
		return []Entry{}
	}
	if n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]Entry, n)
	copy(out, h.entries[len(h.entries)-n:])
	return out
}

// Entries returns a copy of all retained entries in order.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Summary computes statistics over the retained entries.
func (h *History) Summary() Summary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return summarize(h.entries)
}

// Clear drops every entry.
func (h *History) Clear() {
	h.mu.Lock()
	h.entries = nil
	h.mu.Unlock()

	h.logger.Info("history cleared")
}

// Persist writes the full ordered sequence to store.
func (h *History) Persist(store Store) error {
	h.mu.RLock()
	snap := Snapshot{
		Summary: summarize(h.entries),
		Actions: append([]Entry{}, h.entries...),
	}
	h.mu.RUnlock()

	if err := store.Save(snap); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}

	h.logger.Debug("history persisted", "actions", len(snap.Actions))
	return nil
}

// Load replaces the retained entries with those in store. Only the newest
// maxItems entries are kept.
func (h *History) Load(store Store) error {
	entries, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if over := len(entries) - h.maxItems; over > 0 {
		entries = entries[over:]
	}

	h.mu.Lock()
	h.entries = append([]Entry(nil), entries...)
	h.mu.Unlock()

	h.logger.Info("history loaded", "actions", len(entries))
	return nil
}

func summarize(entries []Entry) Summary {
	s := Summary{TotalActions: len(entries)}
	if len(entries) == 0 {
		return s
	}

	for _, e := range entries {
		switch e.Status {
		case action.StatusSuccess:
			s.SuccessCount++
		case action.StatusError:
			s.ErrorCount++
		}
		s.TotalExecutionTime += e.ExecutionTime
	}
	s.AverageExecutionTime = s.TotalExecutionTime / float64(len(entries))

	first := entries[0].Timestamp
	last := entries[len(entries)-1].Timestamp
	s.FirstAction = &first
	s.LastAction = &last

	return s
}
