package ai

import (
	"context"
	"time"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// Proposal is the structured action the oracle proposes for an instruction.
type Proposal struct {
	Reasoning   string        `json:"reasoning"`
	Action      action.Kind   `json:"action"`
	Parameters  action.Params `json:"parameters"`
	SafetyCheck string        `json:"safety_check"`

	// RawAction keeps the action name as the oracle wrote it.
	RawAction string `json:"-"`
}

// Turn summarises one earlier action for the oracle's context.
type Turn struct {
	Action        action.Kind
	Status        action.Status
	ExecutionTime float64
	Content       string
	Message       string
	Error         string
}

// Proposer turns an instruction into a proposal. recent holds earlier
// turns, most recent last.
type Proposer interface {
	Propose(ctx context.Context, instruction string, recent []Turn) (*Proposal, error)
}

// Fallback is the proposal substituted when the oracle fails or its reply
// cannot be parsed.
func Fallback(reason string) *Proposal {
	return &Proposal{
		Reasoning:   "The assistant could not produce a usable action",
		Action:      action.Error,
		RawAction:   string(action.Error),
		Parameters:  action.Params{},
		SafetyCheck: reason,
	}
}

// Options tunes an oracle client.
type Options struct {
	// Timeout bounds one HTTP round trip.
	Timeout time.Duration
	// MaxTokens caps the reply length.
	MaxTokens int
	// IncludeHistory appends the recent-turns block to each instruction.
	IncludeHistory bool
}

const (
	DefaultTimeout   = 30 * time.Second
	DefaultMaxTokens = 1024
)

// WithDefaults fills zero fields.
func (o Options) WithDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	return o
}
