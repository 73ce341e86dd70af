package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"lookahead/internal/journal"
	"lookahead/internal/preflight"
	"lookahead/internal/session"
	"lookahead/internal/slicetype"
)

type runOptions struct {
	frames        int
	sceneCuts     []int64
	bframes       int
	pattern       string
	replay        string
	syncLookahead int
	json          bool
}

type runJSON struct {
	Seq           int   `json:"seq"`
	Head          int64 `json:"head"`
	RunLength     int   `json:"run_length"`
	Keyframe      bool  `json:"keyframe"`
	SceneCut      bool  `json:"scene_cut"`
	PropagateCost int64 `json:"propagate_cost"`
}

type summaryJSON struct {
	SessionID         string               `json:"session_id"`
	Mode              string               `json:"mode"`
	ReplayOf          string               `json:"replay_of,omitempty"`
	Frames            int                  `json:"frames"`
	Keyframes         int                  `json:"keyframes"`
	PropagationPasses uint64               `json:"propagation_passes"`
	ReadyStalls       uint64               `json:"ready_stalls"`
	InputWaits        uint64               `json:"input_waits"`
	Replay            *journal.ReplayStats `json:"replay,omitempty"`
	ElapsedMS         int64                `json:"elapsed_ms"`
	Runs              []runJSON            `json:"runs"`
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	opts := runOptions{bframes: -1, syncLookahead: -1}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Schedule a synthetic frame sequence and print the decided runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, ctx, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.frames, "frames", "n", 250, "Number of frames to generate")
	cmd.Flags().Int64SliceVar(&opts.sceneCuts, "scenecut", nil, "Frame numbers that start a new scene")
	cmd.Flags().IntVar(&opts.bframes, "bframes", opts.bframes, "Dependent frames per run (default: reorder_delay)")
	cmd.Flags().StringVar(&opts.pattern, "pattern", "", "Comma-separated run lengths to apply in order")
	cmd.Flags().StringVar(&opts.replay, "replay", "", "Replay the decisions of a journaled session")
	cmd.Flags().IntVar(&opts.syncLookahead, "sync-lookahead", opts.syncLookahead, "Override lookahead.sync_lookahead (0 = inline)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output as JSON")
	return cmd
}

func runSession(cmd *cobra.Command, ctx *commandContext, opts runOptions) (err error) {
	if opts.frames < 0 {
		return errors.New("--frames must be >= 0")
	}
	if opts.pattern != "" && opts.bframes >= 0 {
		return errors.New("--pattern and --bframes are mutually exclusive")
	}

	cfg, err := ctx.sessionConfig()
	if err != nil {
		return err
	}
	if opts.syncLookahead >= 0 {
		cfg.Lookahead.SyncLookahead = opts.syncLookahead
	}
	if opts.replay != "" {
		cfg.Journal.Enabled = true
		cfg.Lookahead.StatRead = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if opts.bframes > cfg.Lookahead.ReorderDelay {
		return fmt.Errorf("--bframes %d exceeds lookahead.reorder_delay %d", opts.bframes, cfg.Lookahead.ReorderDelay)
	}

	if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
		details := make([]string, len(failed))
		for i, r := range failed {
			details[i] = r.Name + ": " + r.Detail
		}
		return fmt.Errorf("preflight failed: %s", strings.Join(details, "; "))
	}

	logger, err := ctx.logger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	sessionOpts := []session.Option{session.WithLogger(logger)}
	switch {
	case opts.pattern != "":
		script, err := slicetype.ParseScript(opts.pattern)
		if err != nil {
			return err
		}
		sessionOpts = append(sessionOpts, session.WithClassifier(script))
	case opts.bframes >= 0:
		sessionOpts = append(sessionOpts, session.WithClassifier(slicetype.Pattern{BFrames: opts.bframes}))
	}
	if opts.replay != "" {
		sessionOpts = append(sessionOpts, session.WithReplayOf(opts.replay))
	}

	s, err := session.Open(cmd.Context(), cfg, sessionOpts...)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, s.Close())
	}()

	summary, err := s.Run(cmd.Context(), &session.SyntheticSource{Frames: opts.frames, SceneCuts: opts.sceneCuts})
	if err != nil {
		return err
	}

	if opts.json {
		return writeJSON(cmd, toSummaryJSON(summary))
	}
	printSummary(cmd, summary)
	return nil
}

func toSummaryJSON(summary session.Summary) summaryJSON {
	out := summaryJSON{
		SessionID:         summary.SessionID,
		Mode:              summary.Mode.String(),
		ReplayOf:          summary.ReplayOf,
		Frames:            summary.Frames,
		Keyframes:         summary.Keyframes,
		PropagationPasses: summary.Stats.PropagationPasses,
		ReadyStalls:       summary.Stats.ReadyStalls,
		InputWaits:        summary.Stats.InputWaits,
		Replay:            summary.Replay,
		ElapsedMS:         summary.Elapsed.Milliseconds(),
		Runs:              make([]runJSON, len(summary.Runs)),
	}
	for i, r := range summary.Runs {
		out.Runs[i] = runJSON{
			Seq:           r.Seq,
			Head:          r.HeadFrame,
			RunLength:     r.RunLength,
			Keyframe:      r.Keyframe,
			SceneCut:      r.SceneCut,
			PropagateCost: r.PropagateCost,
		}
	}
	return out
}

func runTypeLabel(r journal.RunRecord) string {
	if r.Keyframe {
		return "keyframe"
	}
	return "reference"
}

func printRuns(cmd *cobra.Command, runs []journal.RunRecord) {
	out := cmd.OutOrStdout()
	if !isTerminal(out) {
		for _, r := range runs {
			fmt.Fprintf(out, "run %d head=%d type=%s run_length=%d frames=%d-%d propagate_cost=%d\n",
				r.Seq, r.HeadFrame, runTypeLabel(r), r.RunLength, r.HeadFrame, r.HeadFrame+int64(r.RunLength), r.PropagateCost)
		}
		return
	}
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			fmt.Sprint(r.Seq),
			fmt.Sprint(r.HeadFrame),
			titleLabel(runTypeLabel(r)),
			fmt.Sprint(r.RunLength),
			fmt.Sprintf("%d-%d", r.HeadFrame, r.HeadFrame+int64(r.RunLength)),
			yesNo(r.SceneCut),
			fmt.Sprint(r.PropagateCost),
		}
	}
	fmt.Fprintln(out, renderTable([]column{
		{title: "#", right: true},
		{title: "Head", right: true},
		{title: "Type"},
		{title: "Run", right: true},
		{title: "Frames"},
		{title: "Scene Cut"},
		{title: "Propagate", right: true},
	}, rows))
}

func printSummary(cmd *cobra.Command, summary session.Summary) {
	printRuns(cmd, summary.Runs)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session %s (%s): %d frames in %d runs, %d keyframes, %d propagation passes, %d ready stalls\n",
		summary.SessionID, summary.Mode, summary.Frames, len(summary.Runs), summary.Keyframes,
		summary.Stats.PropagationPasses, summary.Stats.ReadyStalls)
	if summary.Replay != nil {
		fmt.Fprintf(out, "Replayed %s: %d hits, %d misses, %d clamped\n",
			summary.ReplayOf, summary.Replay.Hits, summary.Replay.Misses, summary.Replay.Clamped)
	}
}
