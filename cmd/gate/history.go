package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lin-Jiong-HDU/gate/internal/tui"
)

func newHistoryCommand(opts *options, std streams) *cobra.Command {
	var (
		clearAll bool
		browse   bool
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the action history",
		Long: `Show the summary and the most recent entries of the action history.

The history is read from --history-file, or from history.file in the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, nil, std.err, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.store == nil {
				fmt.Fprintln(std.err, "No history file configured; showing this session only.")
			}

			if clearAll {
				if err := a.clearHistory(); err != nil {
					return err
				}
				fmt.Fprintln(std.out, "✓ History cleared")
				return nil
			}

			if browse {
				return tui.Run(a.history.Entries())
			}

			fmt.Fprint(std.out, a.renderer.History(a.history.Summary(), a.history.Recent(limit)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearAll, "clear", false, "Clear the history")
	cmd.Flags().BoolVarP(&browse, "browse", "b", false, "Browse the history interactively")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of recent entries to show")

	return cmd
}
