package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// ErrNonInteractive is returned when there is no terminal to ask.
var ErrNonInteractive = errors.New("no interactive terminal for confirmation")

// confirmPrompt is shown where the answer is typed.
const confirmPrompt = "Proceed? [y/N] "

// LineReader reads one line at a time under a prompt, like a readline
// instance.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// Confirmer asks the user to approve a destructive action. Only an explicit
// yes approves; any other answer, EOF or a missing terminal refuses.
type Confirmer struct {
	mu    sync.Mutex
	in    *bufio.Reader
	file  *os.File
	lines LineReader
	out   io.Writer
}

// NewConfirmer creates a confirmer reading answers from in. An in that is an
// *os.File must be a terminal.
func NewConfirmer(in io.Reader, out io.Writer) *Confirmer {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	c := &Confirmer{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok {
		c.file = f
	}
	return c
}

// NewLineConfirmer creates a confirmer sharing a line reader that already
// owns the terminal, as in interactive mode.
func NewLineConfirmer(lines LineReader, out io.Writer) *Confirmer {
	if out == nil {
		out = os.Stdout
	}
	return &Confirmer{lines: lines, out: out}
}

// Confirm shows the pending action and waits for one answer.
func (c *Confirmer) Confirm(ctx context.Context, action, description string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lines != nil {
		showPending(c.out, action, description)
		c.lines.SetPrompt(confirmPrompt)
		answer, err := c.lines.Readline()
		if err != nil {
			return false, err
		}
		return report(c.out, answer), nil
	}

	if c.file != nil && !isTerminal(c.file) {
		return false, ErrNonInteractive
	}
	return confirm(c.in, c.out, action, description)
}

// ConfirmWithIO prompts once on output and reads the answer from input.
func ConfirmWithIO(action, description string, input io.Reader, output io.Writer) (bool, error) {
	if input == nil {
		input = os.Stdin
	}
	if output == nil {
		output = os.Stdout
	}
	return confirm(bufio.NewReader(input), output, action, description)
}

func confirm(in *bufio.Reader, out io.Writer, action, description string) (bool, error) {
	showPending(out, action, description)
	fmt.Fprint(out, confirmPrompt)

	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		fmt.Fprintln(out)
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return report(out, line), nil
}

func showPending(out io.Writer, action, description string) {
	fmt.Fprintf(out, "\n⚠️  Confirmation required\n\n")
	fmt.Fprintf(out, "Action: %s\n", action)
	if description != "" {
		fmt.Fprintf(out, "%s\n", description)
	}
	fmt.Fprintln(out)
}

func report(out io.Writer, answer string) bool {
	if Approves(answer) {
		fmt.Fprintln(out, "✓ Confirmed")
		return true
	}
	fmt.Fprintln(out, "✗ Cancelled")
	return false
}

// Approves reports whether answer is an explicit yes.
func Approves(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "o", "oui":
		return true
	default:
		return false
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
