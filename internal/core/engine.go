package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
	"github.com/Lin-Jiong-HDU/gate/internal/ai"
	"github.com/Lin-Jiong-HDU/gate/internal/history"
	"github.com/Lin-Jiong-HDU/gate/internal/logging"
)

// DefaultContextSize is how many earlier entries the oracle sees.
const DefaultContextSize = ai.MaxContextTurns

// Outcome is the result of processing one instruction.
type Outcome struct {
	Instruction   string
	Reasoning     string
	Action        action.Kind
	RawAction     string
	Parameters    action.Params
	SafetyCheck   string
	Result        action.Result
	ExecutionTime float64 // seconds
	Status        action.Status
}

// Engine orchestrates oracle, router and history for one instruction at a time
type Engine struct {
	proposer    ai.Proposer
	router      *Router
	history     *history.History
	store       history.Store
	contextSize int
	logger      *slog.Logger

	mu sync.Mutex
}

// NewEngine creates a new engine. store may be nil to keep history in memory.
func NewEngine(proposer ai.Proposer, router *Router, hist *history.History, store history.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		proposer:    proposer,
		router:      router,
		history:     hist,
		store:       store,
		contextSize: DefaultContextSize,
		logger:      logger,
	}
}

// SetContextSize changes how many earlier entries are sent to the oracle.
func (e *Engine) SetContextSize(n int) {
	if n < 0 {
		n = 0
	}
	e.contextSize = n
}

// History returns the engine's audit history.
func (e *Engine) History() *history.History {
	return e.history
}

// Process handles a user request from input to recorded outcome. Calls are
// serialized. The error is non-nil only for an empty instruction; every
// other failure is reported through the outcome.
func (e *Engine) Process(ctx context.Context, instruction string) (*Outcome, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, fmt.Errorf("empty instruction")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	e.logger.Info("processing instruction", "instruction", instruction)

	// Step 1: Ask the oracle
	proposal := e.propose(ctx, instruction)
	e.logger.Info("action proposed", "action", proposal.Action, "raw_action", proposal.RawAction)

	// Step 2: Check and execute
	result := e.router.Execute(ctx, proposal)
	elapsed := time.Since(start)

	// Step 3: Record and persist
	entry := history.NewEntry(proposal.Action, proposal.Parameters, result, proposal.Reasoning, elapsed)
	e.history.Record(entry)
	if e.store != nil {
		if err := e.history.Persist(e.store); err != nil {
			e.logger.Error("failed to persist history", "error", err)
		}
	}

	if result.Success {
		e.logger.Info("action succeeded", "action", proposal.Action, "duration", elapsed)
	} else {
		e.logger.Warn("action failed", "action", proposal.Action, "failure", result.Failure, "error", result.Error)
	}

	return &Outcome{
		Instruction:   instruction,
		Reasoning:     proposal.Reasoning,
		Action:        proposal.Action,
		RawAction:     proposal.RawAction,
		Parameters:    entry.Parameters,
		SafetyCheck:   proposal.SafetyCheck,
		Result:        result,
		ExecutionTime: entry.ExecutionTime,
		Status:        entry.Status,
	}, nil
}

// propose calls the oracle, substituting the fallback on any failure.
func (e *Engine) propose(ctx context.Context, instruction string) *ai.Proposal {
	if e.proposer == nil {
		return ai.Fallback("no oracle configured")
	}

	p, err := e.proposer.Propose(ctx, instruction, e.recentTurns())
	if err != nil {
		e.logger.Error("oracle call failed", "error", err)
		return ai.Fallback(fmt.Sprintf("oracle error: %v", err))
	}
	if p == nil {
		return ai.Fallback("oracle returned no proposal")
	}
	if p.Parameters == nil {
		p.Parameters = action.Params{}
	}
	return p
}

// recentTurns converts the last entries into oracle context.
func (e *Engine) recentTurns() []ai.Turn {
	if e.contextSize == 0 {
		return nil
	}

	recent := e.history.Recent(e.contextSize)
	turns := make([]ai.Turn, 0, len(recent))
	for _, entry := range recent {
		turns = append(turns, ai.Turn{
			Action:        entry.Action,
			Status:        entry.Status,
			ExecutionTime: entry.ExecutionTime,
			Content:       entry.Result.Content,
			Message:       entry.Result.Message,
			Error:         entry.Result.Error,
		})
	}
	return turns
}
