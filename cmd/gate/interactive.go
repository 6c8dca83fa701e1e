package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Lin-Jiong-HDU/gate/internal/storage"
	"github.com/Lin-Jiong-HDU/gate/internal/terminal"
)

// defaultInteractiveDir is the working directory of interactive mode when
// --working-dir is not given.
const defaultInteractiveDir = "creations_ia"

func newInteractiveCommand(opts *options, std streams) *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"repl", "i"},
		Short:   "Run instructions in a conversation loop",
		Long: `Start an interactive session. Every line is an instruction; /help lists the
session commands. Without --working-dir the session works in ./creations_ia,
which is created when missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f := cmd.Flag("working-dir"); f == nil || !f.Changed {
				opts.workingDir = defaultInteractiveDir
			}
			if err := ensureDir(opts.workingDir, std); err != nil {
				return err
			}

			rl, err := terminal.NewReadline(replHistoryFile())
			if err != nil {
				return fmt.Errorf("failed to start line editor: %w", err)
			}
			defer rl.Close()

			confirmer := terminal.NewLineConfirmer(rl, rl.Stdout())
			a, err := newApp(opts, confirmer, std.err, true)
			if err != nil {
				return err
			}
			defer a.Close()

			repl := terminal.NewREPL(a.engine, a.history, rl.Stdout())
			repl.SetRenderer(a.renderer)
			repl.SetWorkDir(a.workDir)
			repl.OnClear(func() error {
				if a.store == nil {
					return nil
				}
				return a.history.Persist(a.store)
			})

			repl.DisplayBanner()
			return repl.Run(cmd.Context(), rl)
		},
	}
}

// ensureDir creates dir when it does not exist yet.
func ensureDir(dir string, std streams) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create working directory %s: %w", dir, err)
	}
	fmt.Fprintf(std.out, "Created working directory: %s\n", dir)
	return nil
}

// replHistoryFile keeps typed lines across sessions; empty disables it.
func replHistoryFile() string {
	dir, err := storage.GetConfigDir()
	if err != nil {
		return ""
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}
