package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"lookahead/internal/config"
	"lookahead/internal/frame"
	"lookahead/internal/journal"
	"lookahead/internal/logging"
	"lookahead/internal/lookahead"
	"lookahead/internal/slicetype"
)

// ErrAlreadyRun is returned when Run is called more than once.
var ErrAlreadyRun = errors.New("session already ran")

// Session owns one lookahead and its supporting resources.
type Session struct {
	id         string
	cfg        *config.Config
	logger     *slog.Logger
	pool       *frame.Pool
	state      *lookahead.State
	store      *journal.Store
	replay     *journal.Replay
	propagator *slicetype.CostPropagator
	settings   journal.Settings

	ran atomic.Bool
}

// Summary describes a completed run.
type Summary struct {
	SessionID string
	Mode      lookahead.Mode
	ReplayOf  string
	Runs      []journal.RunRecord
	Frames    int
	Keyframes int
	Stats     lookahead.Stats
	Replay    *journal.ReplayStats
	Elapsed   time.Duration
}

// Open builds the lookahead described by cfg and, when enabled, opens the
// journal and registers the session in it.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("session: config is required")
	}
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	base := logging.WithContext(logging.ContextWithSessionID(ctx, id), o.logger)
	logger := logging.NewComponentLogger(base, "session")

	s := &Session{
		id:         id,
		cfg:        cfg,
		logger:     logger,
		propagator: &slicetype.CostPropagator{},
	}

	classifier := o.classifier
	if classifier == nil {
		classifier = slicetype.Pattern{BFrames: cfg.Lookahead.ReorderDelay}
	}

	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		s.store = store
	}

	if cfg.Lookahead.StatRead {
		replay, replayOf, err := s.loadReplay(ctx, o.replayOf, classifier)
		if err != nil {
			return nil, multierr.Append(err, s.closeStore())
		}
		s.replay = replay
		s.settings.ReplayOf = replayOf
		classifier = replay
	}

	lopts := LookaheadOptions(cfg)
	lopts.Logger = base
	state, err := lookahead.New(lopts, lookahead.Hooks{
		Classifier:            classifier,
		Propagator:            s.propagator,
		AllocateWorkerContext: o.workerContext,
	})
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("start lookahead: %w", err), s.closeStore())
	}
	s.state = state
	_, stagingCap, readyCap := state.Capacities()
	s.pool = frame.NewPool(frame.WithFreeListLimit(stagingCap + readyCap))

	s.settings.Mode = state.Mode().String()
	s.settings.SyncLookahead = lopts.SyncLookahead
	s.settings.ReorderDelay = lopts.ReorderDelay
	s.settings.KeyintMax = lopts.KeyintMax
	s.settings.DecisionWindow = lopts.DecisionWindow
	s.settings.AnalyzeKeyframes = lopts.AnalyzeKeyframes

	if s.store != nil {
		if err := s.store.BeginSession(ctx, id, s.settings, time.Now()); err != nil {
			return nil, multierr.Combine(err, state.Shutdown(), s.closeStore())
		}
	}

	logger.Info("session opened",
		logging.String(logging.FieldMode, s.settings.Mode),
		logging.Bool("journal", s.store != nil),
		logging.String("replay_of", s.settings.ReplayOf),
	)
	return s, nil
}

func (s *Session) loadReplay(ctx context.Context, replayOf string, fallback lookahead.Classifier) (*journal.Replay, string, error) {
	if s.store == nil {
		return nil, "", errors.New("stat_read requires the journal")
	}
	if replayOf == "" {
		sessions, err := s.store.Sessions(ctx)
		if err != nil {
			return nil, "", err
		}
		for _, candidate := range sessions {
			if candidate.Runs > 0 {
				replayOf = candidate.ID
				break
			}
		}
		if replayOf == "" {
			return nil, "", errors.New("stat_read: journal has no recorded sessions")
		}
	}
	runs, err := s.store.Runs(ctx, replayOf)
	if err != nil {
		return nil, "", err
	}
	if len(runs) == 0 {
		return nil, "", fmt.Errorf("stat_read: session %s has no recorded runs", replayOf)
	}
	s.logger.Info("replaying journaled decisions",
		logging.String("replay_of", replayOf),
		logging.Int("runs", len(runs)),
	)
	return journal.NewReplay(runs, fallback), replayOf, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Pool returns the frame pool sources acquire from.
func (s *Session) Pool() *frame.Pool { return s.pool }

// Run feeds src through the lookahead until end of stream and consumes every
// decided run. Cancelling ctx stops submission; frames already submitted are
// still decided and delivered.
func (s *Session) Run(ctx context.Context, src Source) (Summary, error) {
	if !s.ran.CompareAndSwap(false, true) {
		return Summary{}, ErrAlreadyRun
	}
	start := time.Now()
	c := &consumer{session: s, ctx: ctx}

	var err error
	if s.state.Mode() == lookahead.ModeThreaded {
		err = s.runThreaded(ctx, src, c)
	} else {
		err = s.runInline(ctx, src, c)
	}
	err = multierr.Append(err, c.err)

	summary := Summary{
		SessionID: s.id,
		Mode:      s.state.Mode(),
		ReplayOf:  s.settings.ReplayOf,
		Runs:      c.runs,
		Frames:    c.frames,
		Keyframes: c.keyframes,
		Stats:     s.state.Stats(),
		Elapsed:   time.Since(start),
	}
	if s.replay != nil {
		stats := s.replay.Stats()
		summary.Replay = &stats
	}
	if s.store != nil {
		err = multierr.Append(err, s.store.FinishSession(context.WithoutCancel(ctx), s.id, time.Now()))
	}

	s.logger.Info("session finished",
		logging.Int("runs", len(summary.Runs)),
		logging.Int("frames", summary.Frames),
		logging.Int("keyframes", summary.Keyframes),
		logging.Uint64("propagation_passes", summary.Stats.PropagationPasses),
		logging.Uint64("ready_stalls", summary.Stats.ReadyStalls),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, err
}

func (s *Session) runThreaded(ctx context.Context, src Source, c *consumer) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer s.state.Flush()
		return s.produce(gctx, src, nil)
	})
	g.Go(func() error {
		// Retrieval continues after a producer failure so a blocked Submit
		// always makes progress.
		for {
			run := s.state.RetrieveReadyRun()
			if len(run) == 0 {
				return nil
			}
			c.handle(run)
		}
	})
	return g.Wait()
}

func (s *Session) runInline(ctx context.Context, src Source, c *consumer) error {
	limit := s.cfg.Lookahead.ReorderDelay + 1
	inFlight := 0
	err := s.produce(ctx, src, func() {
		inFlight++
		if inFlight < limit {
			return
		}
		if run := s.state.RetrieveReadyRun(); len(run) > 0 {
			inFlight -= len(run)
			c.handle(run)
		}
	})
	s.state.Flush()
	for {
		run := s.state.RetrieveReadyRun()
		if len(run) == 0 {
			return err
		}
		c.handle(run)
	}
}

// produce submits frames until src is exhausted. afterSubmit runs after
// each submission.
func (s *Session) produce(ctx context.Context, src Source, afterSubmit func()) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := src.Next(ctx, s.pool)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}
		s.state.Submit(f)
		if afterSubmit != nil {
			afterSubmit()
		}
	}
}

// Close shuts down the lookahead and closes the journal.
func (s *Session) Close() error {
	var err error
	if s.state != nil {
		err = s.state.Shutdown()
	}
	err = multierr.Append(err, s.closeStore())
	if s.pool != nil {
		stats := s.pool.Stats()
		s.logger.Debug("frame pool released",
			logging.Uint64("acquired", stats.Acquired),
			logging.Uint64("reused", stats.Reused),
			logging.Int64("live", stats.Live),
		)
	}
	return err
}

func (s *Session) closeStore() error {
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}
