package lookahead

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"

	"lookahead/internal/frame"
	"lookahead/internal/framequeue"
	"lookahead/internal/logging"
)

// State is the lookahead owned by one encoding session.
type State struct {
	mode       Mode
	logger     *slog.Logger
	classifier Classifier
	propagator Propagator

	intake  *framequeue.Queue
	staging *framequeue.Queue
	ready   *framequeue.Queue

	keyintMax        int
	windowThreshold  int
	analyzeKeyframes bool

	// Written by the deciding goroutine while holding the staging lock.
	lastReference *frame.Frame
	// Only touched by the deciding goroutine.
	lastKeyframe int64

	// Guarded by the intake lock.
	exitRequested bool
	// Guarded by the ready lock.
	workerActive bool

	workerCtx WorkerContext
	done      chan struct{}

	shutdownOnce sync.Once
	shutdownErr  error

	stats counters
}

type counters struct {
	runs        atomic.Uint64
	frames      atomic.Uint64
	propagation atomic.Uint64
	readyStalls atomic.Uint64
	inputWaits  atomic.Uint64
	anchorSwaps atomic.Uint64
}

// Stats is a snapshot of lookahead activity.
type Stats struct {
	RunsEmitted       uint64
	FramesEmitted     uint64
	PropagationPasses uint64
	ReadyStalls       uint64
	InputWaits        uint64
	AnchorSwaps       uint64
}

// New sizes the queues and, in threaded mode, allocates the worker context
// and starts the worker. On failure everything built so far is released and
// an *InitError is returned.
func New(opts Options, hooks Hooks) (*State, error) {
	if hooks.Classifier == nil {
		panic("lookahead: classifier is required")
	}
	if opts.AnalyzeKeyframes && hooks.Propagator == nil {
		panic("lookahead: keyframe analysis requires a propagator")
	}

	logger := logging.NewComponentLogger(opts.Logger, "lookahead")
	s := &State{
		mode:             opts.Mode(),
		logger:           logger,
		classifier:       hooks.Classifier,
		propagator:       hooks.Propagator,
		keyintMax:        opts.KeyintMax,
		analyzeKeyframes: opts.AnalyzeKeyframes,
		lastKeyframe:     -int64(opts.KeyintMax),
	}

	intakeCap, stagingCap, readyCap := opts.intakeCapacity(), opts.stagingCapacity(), opts.readyCapacity()
	s.intake = framequeue.New("intake", intakeCap)
	s.staging = framequeue.New("staging", stagingCap)
	s.ready = framequeue.New("ready", readyCap)

	s.windowThreshold = max(opts.DecisionWindow, 0)
	if s.windowThreshold >= stagingCap {
		logger.Warn("decision window exceeds staging capacity; clamping",
			logging.Int("decision_window", s.windowThreshold),
			logging.Int("staging_capacity", stagingCap),
			logging.String(logging.FieldEventType, "decision_window_clamped"),
			logging.String(logging.FieldImpact, "decisions start with a shallower window"),
		)
		s.windowThreshold = stagingCap - 1
	}

	if s.mode == ModeInline {
		logger.Debug("lookahead initialized",
			logging.String(logging.FieldMode, s.mode.String()),
			logging.Int("staging_capacity", stagingCap),
			logging.Int("ready_capacity", readyCap),
		)
		return s, nil
	}

	if err := s.startWorker(hooks.AllocateWorkerContext); err != nil {
		logger.Error("lookahead worker startup failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "lookahead_init_failed"),
			logging.String(logging.FieldErrorHint, "check worker context allocation"),
		)
		return nil, err
	}
	logger.Info("lookahead worker started",
		logging.String(logging.FieldMode, s.mode.String()),
		logging.Int("intake_capacity", intakeCap),
		logging.Int("staging_capacity", stagingCap),
		logging.Int("ready_capacity", readyCap),
		logging.Int("decision_window", s.windowThreshold),
	)
	return s, nil
}

func (s *State) startWorker(alloc ContextAllocator) error {
	if alloc != nil {
		wctx, err := alloc()
		if err != nil {
			return &InitError{Kind: AllocationFailed, Err: err}
		}
		if wctx == nil {
			return &InitError{Kind: AllocationFailed, Err: fmt.Errorf("allocator returned no context")}
		}
		s.workerCtx = wctx
	}

	started := make(chan error, 1)
	s.done = make(chan struct{})
	s.workerActive = true
	go s.runWorker(started)

	if err := <-started; err != nil {
		<-s.done
		initErr := &InitError{Kind: ThreadSpawnFailed, Err: err}
		if s.workerCtx != nil {
			initErr.Err = multierr.Append(err, s.workerCtx.Free())
			s.workerCtx = nil
		}
		return initErr
	}
	return nil
}

// Mode reports whether a worker drives the decisions.
func (s *State) Mode() Mode { return s.mode }

// Submit hands a frame, and the caller's share of it, to the lookahead.
// In threaded mode it blocks while intake is full. In inline mode staging
// must have room; the caller bounds in-flight frames to the reorder delay.
func (s *State) Submit(f *frame.Frame) {
	s.intake.Lock()
	closed := s.exitRequested
	s.intake.Unlock()
	if closed {
		panic(fmt.Sprintf("lookahead: submit of frame %d after flush", f.Number))
	}

	if s.mode == ModeThreaded {
		s.intake.PushWait(f)
		return
	}
	s.staging.Lock()
	s.staging.Push(f)
	s.staging.Unlock()
}

// RetrieveReadyRun returns the next decided run: a head frame followed by
// its RunLength dependents. Ownership of one share per frame moves to the
// caller. In threaded mode it blocks until a run is ready or the worker has
// terminated; an empty result means the worker is gone and ready is
// exhausted. In inline mode an empty result means nothing is queued.
func (s *State) RetrieveReadyRun() []*frame.Frame {
	if s.mode == ModeInline {
		if s.ready.IsEmpty() && !s.staging.IsEmpty() {
			s.decide()
		}
	}

	s.ready.Lock()
	defer s.ready.Unlock()
	if s.mode == ModeThreaded {
		for s.ready.LenLocked() == 0 && s.workerActive {
			s.ready.WaitNonEmpty()
		}
	}
	head := s.ready.Head()
	if head == nil {
		return nil
	}
	return s.ready.PopFront(head.RunLength + 1)
}

// IsDrained reports whether every queue is empty, that is, whether every
// submitted frame has been retrieved.
func (s *State) IsDrained() bool {
	s.ready.Lock()
	defer s.ready.Unlock()
	s.intake.Lock()
	defer s.intake.Unlock()
	s.staging.Lock()
	defer s.staging.Unlock()
	return s.intake.LenLocked() == 0 && s.staging.LenLocked() == 0 && s.ready.LenLocked() == 0
}

// Flush marks end of stream. The worker decides every queued frame and then
// terminates; further submissions panic.
func (s *State) Flush() {
	s.intake.Lock()
	defer s.intake.Unlock()
	if s.exitRequested {
		return
	}
	s.exitRequested = true
	s.intake.BroadcastNonEmpty()
}

// Shutdown flushes, joins the worker, frees its context, and releases every
// frame still held by the queues along with the anchor share. Runs the
// caller never retrieved are released rather than delivered.
func (s *State) Shutdown() error {
	s.shutdownOnce.Do(func() {
		s.Flush()

		discarded := 0
		if s.mode == ModeThreaded {
			// Keep ready moving so a worker blocked on capacity can finish.
			for {
				run := s.RetrieveReadyRun()
				if len(run) == 0 {
					break
				}
				discarded += len(run)
				frame.ReleaseAll(run)
			}
			<-s.done
			if s.workerCtx != nil {
				s.shutdownErr = multierr.Append(s.shutdownErr, s.workerCtx.Free())
				s.workerCtx = nil
			}
		}

		for _, q := range []*framequeue.Queue{s.intake, s.staging, s.ready} {
			leftover := q.Drain()
			discarded += len(leftover)
			frame.ReleaseAll(leftover)
		}
		s.setAnchor(nil)

		if discarded > 0 {
			logging.WarnWithContext(s.logger, "lookahead shut down with undelivered frames", "lookahead_discard",
				logging.Int("frames", discarded),
				logging.String(logging.FieldImpact, "frames released without reaching the encoder"),
				logging.String(logging.FieldErrorHint, "retrieve until an empty run before shutting down"),
			)
		}
		s.logger.Info("lookahead stopped", logging.String(logging.FieldMode, s.mode.String()))
	})
	return s.shutdownErr
}

// Anchor reports the number of the frame holding the last_reference share.
func (s *State) Anchor() (int64, bool) {
	s.staging.Lock()
	defer s.staging.Unlock()
	if s.lastReference == nil {
		return 0, false
	}
	return s.lastReference.Number, true
}

// Stats returns a snapshot of the lookahead counters.
func (s *State) Stats() Stats {
	return Stats{
		RunsEmitted:       s.stats.runs.Load(),
		FramesEmitted:     s.stats.frames.Load(),
		PropagationPasses: s.stats.propagation.Load(),
		ReadyStalls:       s.stats.readyStalls.Load(),
		InputWaits:        s.stats.inputWaits.Load(),
		AnchorSwaps:       s.stats.anchorSwaps.Load(),
	}
}

// Capacities returns the intake, staging, and ready capacities.
func (s *State) Capacities() (intake, staging, ready int) {
	return s.intake.Cap(), s.staging.Cap(), s.ready.Cap()
}
