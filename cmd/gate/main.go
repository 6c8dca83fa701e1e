package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
	"github.com/Lin-Jiong-HDU/gate/internal/render"
	"github.com/Lin-Jiong-HDU/gate/internal/terminal"
)

// exitInterrupted is the conventional exit code after SIGINT.
const exitInterrupted = 130

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// options holds the flags shared by every command.
type options struct {
	workingDir   string
	debug        bool
	historyFile  string
	showHistory  bool
	clearHistory bool
	configFile   string
}

// streams are the process standard streams, swapped out in tests.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func newRootCommand(std streams) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "gate [instruction]",
		Short: "Policy-gated file and command assistant",
		Long: `gate turns a natural-language instruction into one file or command action
inside a confined working directory. Every proposed action is checked against
the security policy before it runs and is recorded in the action history.`,
		Example: `  gate "create notes/todo.txt containing buy milk"
  gate --working-dir ./data "list the files"
  gate history --limit 20
  gate interactive`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstruction(cmd, opts, std, strings.Join(args, " "))
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.workingDir, "working-dir", "w", ".", "Working directory the actions are confined to")
	flags.BoolVar(&opts.debug, "debug", false, "Log at debug level to stderr")
	flags.StringVar(&opts.historyFile, "history-file", "", "File to persist the action history to")
	flags.StringVar(&opts.configFile, "config", "", "Config file (default ~/.gate/config.yaml)")
	cmd.Flags().BoolVar(&opts.showHistory, "show-history", false, "Show the action history before running")
	cmd.Flags().BoolVar(&opts.clearHistory, "clear-history", false, "Clear the action history before running")

	cmd.AddCommand(newHistoryCommand(opts, std))
	cmd.AddCommand(newInteractiveCommand(opts, std))

	return cmd
}

// runInstruction processes one instruction and maps an error outcome to
// exit code 1.
func runInstruction(cmd *cobra.Command, opts *options, std streams, instruction string) error {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" && !opts.showHistory && !opts.clearHistory {
		return cmd.Help()
	}

	confirmer := terminal.NewConfirmer(std.in, std.out)
	a, err := newApp(opts, confirmer, std.err, instruction != "")
	if err != nil {
		return err
	}
	defer a.Close()

	if opts.clearHistory {
		if err := a.clearHistory(); err != nil {
			return err
		}
		fmt.Fprintln(std.out, "✓ History cleared")
	}
	if opts.showHistory {
		fmt.Fprint(std.out, a.renderer.History(a.history.Summary(), a.history.Recent(render.MaxHistoryRows)))
	}
	if instruction == "" {
		return nil
	}

	ctx := cmd.Context()
	outcome, err := a.engine.Process(ctx, instruction)
	if err != nil {
		return err
	}
	fmt.Fprintln(std.out, a.renderer.Outcome(outcome))

	if ctx.Err() != nil {
		return &exitError{code: exitInterrupted, err: errors.New("interrupted")}
	}
	if outcome.Status == action.StatusError {
		return &exitError{code: 1}
	}
	return nil
}

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string, std streams) int {
	root := newRootCommand(std)
	root.SetArgs(args)
	root.SetIn(std.in)
	root.SetOut(std.out)
	root.SetErr(std.err)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintf(std.err, "Error: %v\n", exit.err)
		}
		return exit.code
	}
	fmt.Fprintf(std.err, "Error: %v\n", err)
	if ctx.Err() != nil {
		return exitInterrupted
	}
	return 1
}

func main() {
	// A missing .env is fine
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
	stop()
	os.Exit(code)
}
