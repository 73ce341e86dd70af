package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lookahead/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run preflight checks against the configured paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cfg)
			out := cmd.OutOrStdout()
			if isTerminal(out) {
				rows := make([][]string, len(results))
				for i, r := range results {
					rows[i] = []string{r.Name, statusLabel(r.Passed), r.Detail}
				}
				fmt.Fprintln(out, renderTable([]column{{title: "Check"}, {title: "Status"}, {title: "Detail"}}, rows))
			} else {
				for _, r := range results {
					fmt.Fprintf(out, "%s: %s (%s)\n", r.Name, statusLabel(r.Passed), r.Detail)
				}
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d preflight check(s) failed", len(failed))
			}
			return nil
		},
	}
}

func statusLabel(passed bool) string {
	if passed {
		return "ok"
	}
	return "failed"
}
