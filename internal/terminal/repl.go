package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/Lin-Jiong-HDU/gate/internal/core"
	"github.com/Lin-Jiong-HDU/gate/internal/history"
	"github.com/Lin-Jiong-HDU/gate/internal/render"
)

// ErrUserExit means the user asked to leave the REPL.
var ErrUserExit = errors.New("user requested exit")

// DefaultPrompt is the REPL input prompt.
const DefaultPrompt = "gate> "

// Processor turns one instruction into an outcome.
type Processor interface {
	Process(ctx context.Context, instruction string) (*core.Outcome, error)
}

// NewReadline creates a readline instance for the REPL. historyFile may be
// empty.
func NewReadline(historyFile string) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          DefaultPrompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
}

// REPL is the interactive instruction loop.
type REPL struct {
	processor Processor
	history   *history.History
	renderer  *render.Renderer
	out       io.Writer
	workDir   string
	prompt    string
	onClear   func() error
}

// NewREPL creates a REPL. out defaults to stdout.
func NewREPL(processor Processor, hist *history.History, out io.Writer) *REPL {
	if out == nil {
		out = os.Stdout
	}
	return &REPL{
		processor: processor,
		history:   hist,
		renderer:  render.New(render.Options{}),
		out:       out,
		prompt:    DefaultPrompt,
	}
}

// SetRenderer sets the renderer used for outcomes and history.
func (r *REPL) SetRenderer(renderer *render.Renderer) {
	r.renderer = renderer
}

// SetWorkDir sets the directory reported by /pwd.
func (r *REPL) SetWorkDir(dir string) {
	r.workDir = dir
}

// OnClear registers a hook run after /clear empties the history, typically
// to persist the empty history.
func (r *REPL) OnClear(fn func() error) {
	r.onClear = fn
}

// Run reads lines until exit, EOF or interrupt.
func (r *REPL) Run(ctx context.Context, lines LineReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		lines.SetPrompt(r.prompt)
		line, err := lines.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if strings.TrimSpace(line) != "" {
					continue
				}
				fmt.Fprintln(r.out, "Interrupted")
				return nil
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "Bye!")
				return nil
			}
			return err
		}

		if err := r.ProcessInput(ctx, line); err != nil {
			if errors.Is(err, ErrUserExit) {
				return nil
			}
			fmt.Fprintf(r.out, "Error: %v\n", err)
		}
	}
}

// ProcessInput handles one line: a REPL command or an instruction.
func (r *REPL) ProcessInput(ctx context.Context, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	if isCommand(input) {
		shouldExit, err := r.HandleCommand(input)
		if err != nil {
			return err
		}
		if shouldExit {
			return ErrUserExit
		}
		return nil
	}

	fmt.Fprintln(r.out, "Processing...")
	outcome, err := r.processor.Process(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, r.renderer.Outcome(outcome))
	return nil
}

// isCommand reports whether input is a REPL command. The bare words are
// accepted without the slash.
func isCommand(input string) bool {
	if strings.HasPrefix(input, "/") {
		return true
	}
	switch strings.ToLower(input) {
	case "exit", "quit", "q", "help", "history", "clear", "pwd":
		return true
	}
	return false
}

// HandleCommand runs a REPL command and reports whether the REPL should exit.
func (r *REPL) HandleCommand(cmd string) (bool, error) {
	parts := strings.Fields(strings.ToLower(cmd))
	if len(parts) == 0 {
		return false, nil
	}

	switch strings.TrimPrefix(parts[0], "/") {
	case "exit", "quit", "q":
		fmt.Fprintln(r.out, "Bye!")
		return true, nil

	case "help":
		r.DisplayHelp()
		return false, nil

	case "history":
		fmt.Fprint(r.out, r.renderer.History(r.history.Summary(), r.history.Recent(render.MaxHistoryRows)))
		return false, nil

	case "clear":
		r.history.Clear()
		if r.onClear != nil {
			if err := r.onClear(); err != nil {
				return false, fmt.Errorf("failed to save cleared history: %w", err)
			}
		}
		fmt.Fprintln(r.out, "✓ History cleared")
		return false, nil

	case "pwd":
		fmt.Fprintf(r.out, "Working directory: %s\n", r.workDir)
		return false, nil

	default:
		fmt.Fprintf(r.out, "Unknown command: %s\n", parts[0])
		return false, nil
	}
}

// DisplayHelp shows the REPL commands.
func (r *REPL) DisplayHelp() {
	fmt.Fprint(r.out, `
Commands:
  /help              Show this help
  /history           Show the action history
  /clear             Clear the action history
  /pwd               Show the working directory
  /exit, /quit       Leave interactive mode

Anything else is an instruction, for example:
  read README.md
  create test.txt containing hello
  list the files
`)
}

// DisplayBanner shows the welcome banner.
func (r *REPL) DisplayBanner() {
	fmt.Fprintln(r.out, "gate interactive mode")
	if r.workDir != "" {
		fmt.Fprintf(r.out, "Working directory: %s\n", r.workDir)
	}
	fmt.Fprintln(r.out, "Type /help for commands, /exit to leave.")
}
