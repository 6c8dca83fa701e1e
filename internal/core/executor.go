package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
	"github.com/Lin-Jiong-HDU/gate/internal/core/security"
	"github.com/Lin-Jiong-HDU/gate/internal/logging"
)

// Executor runs allow-listed shell commands inside the working root.
type Executor struct {
	root      string
	commands  *security.CommandChecker
	timeout   time.Duration
	maxOutput int
	logger    *slog.Logger
}

// NewExecutor creates a new executor. maxOutput caps each captured stream;
// 0 means unbounded.
func NewExecutor(root string, commands *security.CommandChecker, timeout time.Duration, maxOutput int, logger *slog.Logger) *Executor {
	if timeout <= 0 {
		timeout = security.DefaultCommandTimeout * time.Second
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Executor{
		root:      root,
		commands:  commands,
		timeout:   timeout,
		maxOutput: maxOutput,
		logger:    logger,
	}
}

// Timeout returns the per-command wall-clock budget.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Execute runs command through the platform shell and returns its stdout.
func (e *Executor) Execute(ctx context.Context, command string) (action.Result, error) {
	// Re-check the base token even though the router already did
	if base, ok := e.commands.BaseAllowed(command); !ok {
		return action.Result{}, fmt.Errorf("%w: %s", ErrCommandNotAllowed, base)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := shellCommand(runCtx, command)
	cmd.Dir = e.root
	setupProcessGroup(cmd)

	stdout := &limitedBuffer{limit: e.maxOutput}
	stderr := &limitedBuffer{limit: e.maxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	e.logger.Debug("command finished", "command", command, "duration", time.Since(start), "error", err)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return action.Result{}, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
	if ctx.Err() != nil {
		return action.Result{}, fmt.Errorf("command cancelled: %w", ctx.Err())
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return action.Result{}, fmt.Errorf("failed to run command: %w", err)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = fmt.Sprintf("exit code %d", exitErr.ExitCode())
		}
		return action.Result{}, fmt.Errorf("%w: %s", ErrCommandFailed, msg)
	}

	return action.Result{
		Success:  true,
		Output:   stdout.String(),
		Command:  command,
		ExitCode: 0,
	}, nil
}

// shellCommand builds the platform shell invocation for command.
func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

// limitedBuffer keeps at most limit bytes and drops the rest.
type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (l *limitedBuffer) Write(p []byte) (int, error) {
	if l.limit <= 0 {
		return l.buf.Write(p)
	}
	remaining := l.limit - l.buf.Len()
	if remaining <= 0 {
		l.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		l.truncated = true
		_, _ = l.buf.Write(p[:remaining])
		return len(p), nil
	}
	return l.buf.Write(p)
}

func (l *limitedBuffer) String() string {
	if l.truncated {
		return l.buf.String() + "\n[output truncated]"
	}
	return l.buf.String()
}
