package security

import (
	"context"
	"log/slog"

	"github.com/Lin-Jiong-HDU/gate/internal/logging"
)

// SecurityController coordinates all security checks.
type SecurityController struct {
	policy   *SecurityPolicy
	paths    *PathChecker
	commands *CommandChecker
	deletes  *DeleteGate
	logger   *slog.Logger
}

// NewSecurityController creates a security controller confined to root.
func NewSecurityController(root string, policy *SecurityPolicy, confirmer Confirmer, logger *slog.Logger) (*SecurityController, error) {
	policy = policy.withDefaults()
	if logger == nil {
		logger = logging.Discard()
	}

	paths, err := NewPathChecker(root, policy)
	if err != nil {
		return nil, err
	}

	return &SecurityController{
		policy:   policy,
		paths:    paths,
		commands: NewCommandChecker(policy),
		deletes:  NewDeleteGate(paths, confirmer),
		logger:   logger,
	}, nil
}

// CheckPath checks if a path can be accessed.
func (sc *SecurityController) CheckPath(path string) Verdict {
	return sc.log("path", path, sc.paths.Check(path))
}

// CheckCommand checks if a command can be executed.
func (sc *SecurityController) CheckCommand(cmd string) Verdict {
	return sc.log("command", cmd, sc.commands.Check(cmd))
}

// CheckDelete checks a deletion, prompting for confirmation.
func (sc *SecurityController) CheckDelete(ctx context.Context, path string) Verdict {
	return sc.log("delete", path, sc.deletes.Check(ctx, path))
}

// Paths returns the path checker.
func (sc *SecurityController) Paths() *PathChecker {
	return sc.paths
}

// Commands returns the command checker.
func (sc *SecurityController) Commands() *CommandChecker {
	return sc.commands
}

// Policy returns the effective policy.
func (sc *SecurityController) Policy() *SecurityPolicy {
	return sc.policy
}

func (sc *SecurityController) log(check, subject string, v Verdict) Verdict {
	if v.Allowed {
		sc.logger.Debug("security check passed", "check", check, "subject", subject)
	} else {
		sc.logger.Warn("security check denied", "check", check, "subject", subject, "reason", v.Reason)
	}
	return v
}
