package core

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
	"github.com/Lin-Jiong-HDU/gate/internal/ai"
	"github.com/Lin-Jiong-HDU/gate/internal/core/security"
	"github.com/Lin-Jiong-HDU/gate/internal/logging"
)

// Router dispatches a proposal to its operation after the matching
// security check. No error or panic escapes Execute.
type Router struct {
	security *security.SecurityController
	sandbox  *Sandbox
	executor *Executor
	logger   *slog.Logger
}

// NewRouter creates a new router.
func NewRouter(sc *security.SecurityController, sandbox *Sandbox, executor *Executor, logger *slog.Logger) *Router {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Router{
		security: sc,
		sandbox:  sandbox,
		executor: executor,
		logger:   logger,
	}
}

// Execute checks and runs p.
func (r *Router) Execute(ctx context.Context, p *ai.Proposal) (res action.Result) {
	if p == nil {
		return action.Fail(action.FailureOracle, "no action proposed")
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("operation panicked", "action", p.Action, "panic", rec)
			res = action.Fail(action.FailureOperation, "execution error: %v", rec)
		}
	}()

	params := p.Parameters
	r.logger.Debug("executing action", "action", p.Action, "parameters", params)

	switch p.Action {
	case action.ReadFile:
		path := params.String("path", "")
		return r.guardPath(p.Action, path, func() (action.Result, error) { return r.sandbox.Read(path) })

	case action.CreateFile:
		path := params.String("path", "")
		content := params.String("content", "")
		return r.guardPath(p.Action, path, func() (action.Result, error) { return r.sandbox.Create(path, content) })

	case action.EditFile:
		path := params.String("path", "")
		content := params.String("content", "")
		return r.guardPath(p.Action, path, func() (action.Result, error) { return r.sandbox.Edit(path, content) })

	case action.DeleteFile:
		path := params.String("path", "")
		if v := r.security.CheckDelete(ctx, path); !v.Allowed {
			return action.Fail(action.FailurePolicy, "%s", v.Reason)
		}
		return r.run(p.Action, func() (action.Result, error) { return r.sandbox.Delete(path) })

	case action.ListFiles:
		path := params.String("path", ".")
		return r.guardPath(p.Action, path, func() (action.Result, error) { return r.sandbox.List(path) })

	case action.GetFileInfo:
		path := params.String("path", "")
		return r.guardPath(p.Action, path, func() (action.Result, error) { return r.sandbox.Info(path) })

	case action.ExecuteCommand:
		command := params.String("command", "")
		if v := r.security.CheckCommand(command); !v.Allowed {
			return action.Fail(action.FailurePolicy, "%s", v.Reason)
		}
		return r.run(p.Action, func() (action.Result, error) { return r.executor.Execute(ctx, command) })

	case action.GetWorkingDirectory:
		return r.sandbox.WorkingDirectory()

	case action.Error:
		return action.Fail(action.FailureOracle, "the assistant could not process the request")

	case action.Unknown:
		name := p.RawAction
		if name == "" {
			name = string(p.Action)
		}
		r.logger.Warn("unknown action", "action", name)
		return action.Fail(action.FailureUnknown, "unknown action: %s", name)

	default:
		r.logger.Warn("unknown action", "action", p.Action)
		return action.Fail(action.FailureUnknown, "unknown action: %s", p.Action)
	}
}

// guardPath runs op only if path passes the confinement check.
func (r *Router) guardPath(kind action.Kind, path string, op func() (action.Result, error)) action.Result {
	if v := r.security.CheckPath(path); !v.Allowed {
		return action.Fail(action.FailurePolicy, "%s", v.Reason)
	}
	return r.run(kind, op)
}

func (r *Router) run(kind action.Kind, op func() (action.Result, error)) action.Result {
	res, err := op()
	if err != nil {
		r.logger.Warn("operation failed", "action", kind, "error", err)
		return action.Fail(failureKind(err), "%s", err.Error())
	}
	return res
}

// failureKind classifies an operation error.
func failureKind(err error) action.FailureKind {
	switch {
	case errors.Is(err, ErrTimeout):
		return action.FailureTimeout
	case errors.Is(err, ErrOutsideRoot), errors.Is(err, ErrCommandNotAllowed):
		return action.FailurePolicy
	default:
		return action.FailureOperation
	}
}
