package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"lookahead/internal/journal"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the decision journal",
	}

	journalCmd.AddCommand(newJournalSessionsCommand(ctx))
	journalCmd.AddCommand(newJournalShowCommand(ctx))
	journalCmd.AddCommand(newJournalRemoveCommand(ctx))

	return journalCmd
}

// withJournal opens the configured journal for the duration of fn.
func (c *commandContext) withJournal(fn func(*journal.Store) error) (err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(cfg.Journal.Path); errors.Is(statErr, os.ErrNotExist) {
		return fmt.Errorf("no journal at %s (enable [journal] and run a session first)", cfg.Journal.Path)
	}
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()
	return fn(store)
}

func newJournalSessionsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List journaled sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(store *journal.Store) error {
				sessions, err := store.Sessions(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, sessions)
				}
				printSessions(cmd, sessions)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newJournalShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session>",
		Short: "Show the recorded runs of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(store *journal.Store) error {
				summary, err := store.Session(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				runs, err := store.Runs(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Session: %s\n", summary.ID)
				fmt.Fprintf(out, "Started: %s\n", summary.StartedAt.Local().Format(time.DateTime))
				fmt.Fprintf(out, "Mode: %s (sync_lookahead=%d reorder_delay=%d keyint_max=%d decision_window=%d)\n",
					summary.Settings.Mode, summary.Settings.SyncLookahead, summary.Settings.ReorderDelay,
					summary.Settings.KeyintMax, summary.Settings.DecisionWindow)
				if summary.Settings.ReplayOf != "" {
					fmt.Fprintf(out, "Replay of: %s\n", summary.Settings.ReplayOf)
				}
				printRuns(cmd, runs)
				return nil
			})
		},
	}
}

func newJournalRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <session>...",
		Short: "Delete sessions and their runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(store *journal.Store) error {
				out := cmd.OutOrStdout()
				for _, id := range args {
					removed, err := store.RemoveSession(cmd.Context(), id)
					if err != nil {
						return err
					}
					if removed {
						fmt.Fprintf(out, "Removed session %s\n", id)
					} else {
						fmt.Fprintf(out, "Session %s not found\n", id)
					}
				}
				return nil
			})
		},
	}
}

func printSessions(cmd *cobra.Command, sessions []journal.SessionSummary) {
	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded")
		return
	}
	if !isTerminal(out) {
		for _, s := range sessions {
			fmt.Fprintf(out, "%s mode=%s runs=%d frames=%d keyframes=%d finished=%s\n",
				s.ID, s.Settings.Mode, s.Runs, s.Frames, s.Keyframes, yesNo(s.FinishedAt != nil))
		}
		return
	}
	rows := make([][]string, len(sessions))
	for i, s := range sessions {
		rows[i] = []string{
			s.ID,
			s.StartedAt.Local().Format(time.DateTime),
			titleLabel(s.Settings.Mode),
			fmt.Sprint(s.Runs),
			fmt.Sprint(s.Frames),
			fmt.Sprint(s.Keyframes),
			s.Settings.ReplayOf,
			yesNo(s.FinishedAt != nil),
		}
	}
	fmt.Fprintln(out, renderTable([]column{
		{title: "Session"},
		{title: "Started"},
		{title: "Mode"},
		{title: "Runs", right: true},
		{title: "Frames", right: true},
		{title: "Keyframes", right: true},
		{title: "Replay Of"},
		{title: "Finished"},
	}, rows))
}
