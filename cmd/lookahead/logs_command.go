package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lookahead/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines     int
		follow    bool
		sessionID string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show lines from the configured log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.Logging.File
			if path == "" {
				return errors.New("logging.file is not set; logs only go to stderr")
			}

			result, err := logs.Tail(path, logs.TailOptions{Limit: lines, SessionID: sessionID})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			err = logs.Follow(cmd.Context(), path, result.Offset, sessionID, 250*time.Millisecond, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, cmd.Context().Err()) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show (0 = all)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().StringVar(&sessionID, "session", "", "Only show lines for this session id")
	return cmd
}
