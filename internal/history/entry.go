package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
)

// Entry is one attempted action. Entries are never mutated after Record.
type Entry struct {
	ID            string        `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	Action        action.Kind   `json:"action"`
	Parameters    action.Params `json:"parameters"`
	Result        action.Result `json:"result"`
	Reasoning     string        `json:"reasoning"`
	ExecutionTime float64       `json:"execution_time"` // seconds
	Status        action.Status `json:"status"`
}

// NewEntry builds an entry stamped with the current UTC time. The status
// follows the result.
func NewEntry(kind action.Kind, params action.Params, result action.Result, reasoning string, elapsed time.Duration) Entry {
	return Entry{
		ID:            uuid.New().String(),
		Timestamp:     time.Now().UTC().Round(0),
		Action:        kind,
		Parameters:    params.Clone(),
		Result:        result,
		Reasoning:     reasoning,
		ExecutionTime: elapsed.Seconds(),
		Status:        result.Status(),
	}
}
